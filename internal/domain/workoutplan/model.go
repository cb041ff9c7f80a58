package workoutplan

import (
	"errors"
	"slices"
	"strings"
	"time"

	"coachdesk/internal/domain/fieldvalue"
)

// Exercise categories
const (
	CategoryStrength = "strength"
	CategoryCardio   = "cardio"
	CategoryMobility = "mobility"
	CategoryRecovery = "recovery"
)

// Categories lists the valid categories in display order.
var Categories = []string{CategoryStrength, CategoryCardio, CategoryMobility, CategoryRecovery}

// Max length constants for user-editable fields.
const (
	MaxExerciseNameLength = 120
	MaxNoteLength         = 1000
	MaxVideoURLLength     = 500
)

// Domain errors
var (
	ErrEmptyUserID       = errors.New("user ID is required")
	ErrInvalidDayNumber  = errors.New("day number must be at least 1")
	ErrEmptyExerciseName = errors.New("exercise name cannot be empty")
	ErrInvalidCategory   = errors.New("category must be one of: strength, cardio, mobility, recovery")
	ErrNegativeValue     = errors.New("sets, reps and duration cannot be negative")
	ErrInvalidVideoURL   = errors.New("video URL must start with http:// or https://")
	ErrUnknownField      = errors.New("unknown workout field")
)

// Entry is one exercise in a customer's plan for a given day and checkpoint.
type Entry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	DayNumber        int       `json:"dayNumber"`
	CheckpointNumber int       `json:"checkpointNumber"`
	ExerciseName     string    `json:"exerciseName"`
	Sets             int       `json:"sets"`
	Reps             int       `json:"reps"`
	DurationMinutes  int       `json:"durationMinutes"`
	Category         string    `json:"category"`
	Note             string    `json:"note"`
	VideoURL         string    `json:"videoUrl"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.UserID == "" {
		return ErrEmptyUserID
	}
	if e.DayNumber < 1 {
		return ErrInvalidDayNumber
	}
	if strings.TrimSpace(e.ExerciseName) == "" {
		return ErrEmptyExerciseName
	}
	if len(e.ExerciseName) > MaxExerciseNameLength {
		return errors.New("exercise name cannot exceed 120 characters")
	}
	if !slices.Contains(Categories, e.Category) {
		return ErrInvalidCategory
	}
	if e.Sets < 0 || e.Reps < 0 || e.DurationMinutes < 0 {
		return ErrNegativeValue
	}
	if len(e.Note) > MaxNoteLength {
		return errors.New("note cannot exceed 1000 characters")
	}
	if e.VideoURL != "" {
		if len(e.VideoURL) > MaxVideoURLLength {
			return errors.New("video URL cannot exceed 500 characters")
		}
		if !strings.HasPrefix(e.VideoURL, "http://") && !strings.HasPrefix(e.VideoURL, "https://") {
			return ErrInvalidVideoURL
		}
	}
	return nil
}

// Day returns the day number; used as the grouping key.
func Day(e Entry) int {
	return e.DayNumber
}

// Clone returns a copy of e. Entry holds no reference fields, so a value copy is deep.
func Clone(e Entry) Entry {
	return e
}

// IsTimed reports whether the exercise is prescribed by duration rather than sets and reps.
func (e Entry) IsTimed() bool {
	return e.DurationMinutes > 0 && e.Sets == 0
}

// SetField returns a copy of e with one field replaced by the parsed raw value.
// Numeric fields fall back to 0 on unparsable input.
// POST: e is never modified
func SetField(e Entry, field, raw string) (Entry, error) {
	switch field {
	case "exerciseName":
		e.ExerciseName = raw
	case "sets":
		e.Sets = fieldvalue.Int(raw)
	case "reps":
		e.Reps = fieldvalue.Int(raw)
	case "durationMinutes":
		e.DurationMinutes = fieldvalue.Int(raw)
	case "category":
		e.Category = strings.ToLower(strings.TrimSpace(raw))
	case "note":
		e.Note = raw
	case "videoUrl":
		e.VideoURL = strings.TrimSpace(raw)
	default:
		return e, ErrUnknownField
	}
	return e, nil
}

// NewEntry returns a blank exercise for a day, used when an advisor adds an exercise row.
func NewEntry(userID string, day, checkpoint int) Entry {
	return Entry{
		UserID:           userID,
		DayNumber:        day,
		CheckpointNumber: checkpoint,
		Category:         CategoryStrength,
	}
}
