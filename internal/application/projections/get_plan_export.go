package projections

import (
	"context"
	"time"

	"coachdesk/internal/domain/export"
)

// GetPlanExportQuery carries query parameters.
type GetPlanExportQuery struct {
	CustomerID string
	Checkpoint int // 0 resolves the same way as the meal plan view
	Format     string
}

// GetPlanExportDeps holds dependencies for GetPlanExport.
type GetPlanExportDeps struct {
	CustomerStore CustomerStore
	MealStore     MealStore
	WorkoutStore  WorkoutStore
	Now           func() time.Time
}

// QueryGetPlanExport gathers one checkpoint of meals and workouts for download.
// PRE: Format was checked with export.ParseFormat
// POST: Meals and workouts belong to the same checkpoint
func QueryGetPlanExport(ctx context.Context, query GetPlanExportQuery, deps GetPlanExportDeps) (export.Data, error) {
	c, err := deps.CustomerStore.GetByID(ctx, query.CustomerID)
	if err != nil {
		return export.Data{}, err
	}
	days := GetPlanDaysDeps{CustomerStore: deps.CustomerStore, MealStore: deps.MealStore, WorkoutStore: deps.WorkoutStore}

	meals, err := QueryGetMealPlan(ctx, GetPlanDaysQuery{CustomerID: c.ID, Checkpoint: query.Checkpoint}, days)
	if err != nil {
		return export.Data{}, err
	}
	// With no meals anywhere meals.Checkpoint is 0 and the workouts pick their own.
	workouts, err := QueryGetWorkoutPlan(ctx, GetPlanDaysQuery{CustomerID: c.ID, Checkpoint: meals.Checkpoint}, days)
	if err != nil {
		return export.Data{}, err
	}

	checkpoint := max(meals.Checkpoint, workouts.Checkpoint)
	return export.New(c, checkpoint, meals.Entries, workouts.Entries, query.Format, deps.Now()), nil
}
