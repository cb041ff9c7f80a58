package projections

import (
	"context"
	"testing"
	"time"

	"coachdesk/internal/domain/export"
	domainMeal "coachdesk/internal/domain/mealplan"
	domainWorkout "coachdesk/internal/domain/workoutplan"
)

// TestQueryGetPlanExport_SameCheckpoint verifies meals and workouts come from one checkpoint.
func TestQueryGetPlanExport_SameCheckpoint(t *testing.T) {
	days, meals, workouts := planDaysDeps(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	deps := GetPlanExportDeps{
		CustomerStore: days.CustomerStore,
		MealStore:     days.MealStore,
		WorkoutStore:  days.WorkoutStore,
		Now:           func() time.Time { return now },
	}

	if err := meals.ReplaceDay(ctx, "c1", 1, 1, []domainMeal.Entry{{MealType: "lunch", Calories: 500}}); err != nil {
		t.Fatal(err)
	}
	if err := workouts.ReplaceDay(ctx, "c1", 1, 1, []domainWorkout.Entry{{ExerciseName: "Row", Sets: 3, Reps: 10, Category: "strength"}}); err != nil {
		t.Fatal(err)
	}
	if err := workouts.ReplaceDay(ctx, "c1", 2, 1, []domainWorkout.Entry{{ExerciseName: "Run", DurationMinutes: 30, Category: "cardio"}}); err != nil {
		t.Fatal(err)
	}

	data, err := QueryGetPlanExport(ctx, GetPlanExportQuery{CustomerID: "c1", Format: export.FormatCSV}, deps)
	if err != nil {
		t.Fatalf("QueryGetPlanExport: %v", err)
	}
	if data.Checkpoint != 1 || len(data.Meals) != 1 || len(data.Workouts) != 1 || data.Workouts[0].ExerciseName != "Row" {
		t.Errorf("export = checkpoint %d meals %+v workouts %+v", data.Checkpoint, data.Meals, data.Workouts)
	}
	if !data.ExportMetadata.ExportDate.Equal(now) || data.ExportMetadata.Format != export.FormatCSV {
		t.Errorf("metadata = %+v", data.ExportMetadata)
	}

	data, err = QueryGetPlanExport(ctx, GetPlanExportQuery{CustomerID: "c1", Checkpoint: 2, Format: export.FormatJSON}, deps)
	if err != nil {
		t.Fatalf("QueryGetPlanExport(checkpoint 2): %v", err)
	}
	if data.Checkpoint != 2 || len(data.Meals) != 0 || len(data.Workouts) != 1 {
		t.Errorf("checkpoint 2 export = %+v", data)
	}
}
