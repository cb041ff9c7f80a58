package workoutplan_test

import (
	"errors"
	"testing"

	"coachdesk/internal/domain/workoutplan"
)

func squat() workoutplan.Entry {
	return workoutplan.Entry{
		ID:           "w1",
		UserID:       "u1",
		DayNumber:    1,
		ExerciseName: "Back squat",
		Sets:         4,
		Reps:         8,
		Category:     workoutplan.CategoryStrength,
		VideoURL:     "https://videos.example.com/squat",
	}
}

// TestEntry_Validate tests validation of workout entries.
func TestEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *workoutplan.Entry)
		wantErr error
	}{
		{name: "valid", mutate: func(e *workoutplan.Entry) {}},
		{name: "no user", mutate: func(e *workoutplan.Entry) { e.UserID = "" }, wantErr: workoutplan.ErrEmptyUserID},
		{name: "negative day", mutate: func(e *workoutplan.Entry) { e.DayNumber = -2 }, wantErr: workoutplan.ErrInvalidDayNumber},
		{name: "blank name", mutate: func(e *workoutplan.Entry) { e.ExerciseName = " " }, wantErr: workoutplan.ErrEmptyExerciseName},
		{name: "unknown category", mutate: func(e *workoutplan.Entry) { e.Category = "yoga" }, wantErr: workoutplan.ErrInvalidCategory},
		{name: "negative reps", mutate: func(e *workoutplan.Entry) { e.Reps = -1 }, wantErr: workoutplan.ErrNegativeValue},
		{name: "bad video scheme", mutate: func(e *workoutplan.Entry) { e.VideoURL = "ftp://x" }, wantErr: workoutplan.ErrInvalidVideoURL},
		{name: "empty video ok", mutate: func(e *workoutplan.Entry) { e.VideoURL = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := squat()
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSetField covers every editable field and numeric fallback.
func TestSetField(t *testing.T) {
	src := squat()
	tests := []struct {
		field, raw string
		check      func(e workoutplan.Entry) bool
	}{
		{"exerciseName", "Front squat", func(e workoutplan.Entry) bool { return e.ExerciseName == "Front squat" }},
		{"sets", "5", func(e workoutplan.Entry) bool { return e.Sets == 5 }},
		{"reps", "ten", func(e workoutplan.Entry) bool { return e.Reps == 0 }},
		{"durationMinutes", "12.9", func(e workoutplan.Entry) bool { return e.DurationMinutes == 12 }},
		{"category", "Cardio", func(e workoutplan.Entry) bool { return e.Category == workoutplan.CategoryCardio }},
		{"note", "Slow eccentric", func(e workoutplan.Entry) bool { return e.Note == "Slow eccentric" }},
		{"videoUrl", " https://v/1 ", func(e workoutplan.Entry) bool { return e.VideoURL == "https://v/1" }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := workoutplan.SetField(src, tt.field, tt.raw)
			if err != nil {
				t.Fatalf("SetField: %v", err)
			}
			if !tt.check(got) {
				t.Fatalf("unexpected result: %+v", got)
			}
		})
	}
	if src != squat() {
		t.Fatal("SetField mutated its input")
	}
	if _, err := workoutplan.SetField(src, "weight", "100"); !errors.Is(err, workoutplan.ErrUnknownField) {
		t.Fatalf("unknown field err = %v", err)
	}
}

// TestEntry_IsTimed distinguishes timed and rep-based exercises.
func TestEntry_IsTimed(t *testing.T) {
	run := workoutplan.Entry{DurationMinutes: 30}
	if !run.IsTimed() {
		t.Error("duration-only exercise should be timed")
	}
	if squat().IsTimed() {
		t.Error("set-based exercise should not be timed")
	}
}
