// Package export shapes one checkpoint of a customer's plan for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"coachdesk/internal/domain/customer"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// Format constants for export file format.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Version is bumped whenever the exported layout changes.
const Version = "1"

// ErrInvalidFormat is returned for anything other than json or csv.
var ErrInvalidFormat = errors.New("invalid format: must be 'json' or 'csv'")

// Data is one exported plan: the customer card plus every meal and exercise
// of a single checkpoint.
type Data struct {
	Customer       CustomerData        `json:"customer"`
	Checkpoint     int                 `json:"checkpoint"`
	Meals          []mealplan.Entry    `json:"meals"`
	Workouts       []workoutplan.Entry `json:"workouts"`
	ExportMetadata Metadata            `json:"export_metadata"`
}

// CustomerData is the part of the customer record that travels with a plan.
type CustomerData struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Goal          string  `json:"goal,omitempty"`
	ActivityLevel string  `json:"activity_level,omitempty"`
	HeightCm      float64 `json:"height_cm,omitempty"`
	WeightKg      float64 `json:"weight_kg,omitempty"`
}

// Metadata contains information about the export itself.
type Metadata struct {
	ExportDate  time.Time `json:"export_date"`
	Format      string    `json:"format"`
	Version     string    `json:"version"`
	RecordCount int       `json:"record_count"`
}

// ParseFormat normalises a requested format; empty means JSON.
func ParseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", ErrInvalidFormat
}

// New assembles an export. Nil slices become empty so JSON shows [].
// POST: RecordCount == len(Meals) + len(Workouts)
func New(c customer.Customer, checkpoint int, meals []mealplan.Entry, workouts []workoutplan.Entry, format string, now time.Time) Data {
	if meals == nil {
		meals = []mealplan.Entry{}
	}
	if workouts == nil {
		workouts = []workoutplan.Entry{}
	}
	return Data{
		Customer: CustomerData{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			Goal:          c.Goal,
			ActivityLevel: c.ActivityLevel,
			HeightCm:      c.HeightCm,
			WeightKg:      c.WeightKg,
		},
		Checkpoint: checkpoint,
		Meals:      meals,
		Workouts:   workouts,
		ExportMetadata: Metadata{
			ExportDate:  now.UTC(),
			Format:      format,
			Version:     Version,
			RecordCount: len(meals) + len(workouts),
		},
	}
}

// Filename is the suggested download name, e.g. plan-c1-checkpoint-2.csv.
func (d *Data) Filename() string {
	return fmt.Sprintf("plan-%s-checkpoint-%d.%s", d.Customer.ID, d.Checkpoint, d.ExportMetadata.Format)
}

// ToJSON serializes the Data to JSON format.
func (d *Data) ToJSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// csvHeader covers both record kinds; columns that do not apply stay empty.
var csvHeader = []string{
	"kind", "day", "name", "calories", "protein_g", "carbs_g", "fat_g", "foods",
	"sets", "reps", "duration_minutes", "category", "note",
}

// ToCSV writes meals then exercises as one table, ordered by day within each kind.
// Foods are flattened to "name (quantity)" joined with "; ".
func (d *Data) ToCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, m := range d.Meals {
		foods := make([]string, 0, len(m.Foods))
		for _, f := range m.Foods {
			if f.Quantity != "" {
				foods = append(foods, f.Name+" ("+f.Quantity+")")
			} else {
				foods = append(foods, f.Name)
			}
		}
		if err := w.Write([]string{
			"meal", strconv.Itoa(m.DayNumber), m.MealType, strconv.Itoa(m.Calories),
			formatGrams(m.Macros.Protein), formatGrams(m.Macros.Carbs), formatGrams(m.Macros.Fat),
			strings.Join(foods, "; "), "", "", "", "", "",
		}); err != nil {
			return nil, err
		}
	}
	for _, e := range d.Workouts {
		if err := w.Write([]string{
			"exercise", strconv.Itoa(e.DayNumber), e.ExerciseName, "", "", "", "", "",
			strconv.Itoa(e.Sets), strconv.Itoa(e.Reps), strconv.Itoa(e.DurationMinutes), e.Category, e.Note,
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatGrams(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
