package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"coachdesk/internal/domain/feedback"
)

// Kind tags a feedback submission once, at this boundary. Downstream code
// switches on Kind and never inspects the raw payload again.
type Kind string

const (
	KindWorkout Kind = "workout"
	KindMeal    Kind = "meal"
	KindUnknown Kind = "unknown"
)

// WorkoutFeedback is the workout arm of Submission.
type WorkoutFeedback struct {
	WorkoutLogID string `json:"workoutLogId"`
	ExerciseName string `json:"exerciseName"`
	Completed    bool   `json:"completed"`
	Difficulty   int    `json:"difficulty"`
	DayNumber    int    `json:"dayNumber"`
}

// MealFeedback is the meal arm of Submission.
type MealFeedback struct {
	MealLogID string `json:"mealLogId"`
	MealType  string `json:"mealType"`
	Calories  int    `json:"calories"`
	PhotoURL  string `json:"photoUrl"`
	DayNumber int    `json:"dayNumber"`
}

// Submission is the normalized feedback view. Exactly one of Workout and
// Meal is non-nil unless Kind is KindUnknown.
type Submission struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customerId"`
	Kind       Kind             `json:"kind"`
	Rating     int              `json:"rating"`
	Comment    string           `json:"comment"`
	ReceivedAt time.Time        `json:"receivedAt"`
	Status     string           `json:"status"`
	Reply      string           `json:"reply"`
	Workout    *WorkoutFeedback `json:"workout,omitempty"`
	Meal       *MealFeedback    `json:"meal,omitempty"`
}

// Title is a one-line label for lists.
func (s Submission) Title() string {
	switch {
	case s.Kind == KindWorkout && s.Workout != nil:
		return "Workout: " + orDefault(s.Workout.ExerciseName, "session")
	case s.Kind == KindMeal && s.Meal != nil:
		return "Meal: " + orDefault(titleCase(s.Meal.MealType), "entry")
	default:
		return "Feedback"
	}
}

// Feedback normalizes a stored submission.
func Feedback(sub feedback.Submission) Submission {
	out := Submission{
		ID:         sub.ID,
		CustomerID: sub.CustomerID,
		Kind:       KindUnknown,
		ReceivedAt: sub.ReceivedAt,
		Status:     orDefault(sub.Status, feedback.StatusNew),
		Reply:      sub.AdvisorComment,
	}
	var m map[string]any
	if err := json.Unmarshal(sub.Payload, &m); err != nil || m == nil {
		return out
	}
	out.Rating = clampRating(num(m, "rating", "score", "stars"))
	out.Comment = str(m, "comment", "notes", "feedback", "text")

	if id := str(m, "workoutLogId", "workout_log_id"); id != "" {
		out.Kind = KindWorkout
		out.Workout = &WorkoutFeedback{
			WorkoutLogID: id,
			ExerciseName: str(m, "exerciseName", "exercise", "workoutName"),
			Completed:    boolean(m, "completed", "done"),
			Difficulty:   int(num(m, "difficulty", "rpe")),
			DayNumber:    int(num(m, "dayNumber", "day")),
		}
		return out
	}
	if id := str(m, "mealLogId", "meal_log_id"); id != "" {
		out.Kind = KindMeal
		out.Meal = &MealFeedback{
			MealLogID: id,
			MealType:  strings.ToLower(str(m, "mealType", "meal")),
			Calories:  int(num(m, "calories", "kcal")),
			PhotoURL:  str(m, "photoUrl", "photo", "imageUrl"),
			DayNumber: int(num(m, "dayNumber", "day")),
		}
	}
	return out
}

func clampRating(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	}
	return int(math.Round(v))
}

// str returns the first key that holds a string or number, as text.
func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// num returns the first key that holds a number or numeric string, else 0.
func num(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return finite(v)
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return finite(f)
			}
		}
	}
	return 0
}

func boolean(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := m[k].(type) {
		case bool:
			return v
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			return err == nil && b
		case float64:
			return v != 0
		}
	}
	return false
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return f
}
