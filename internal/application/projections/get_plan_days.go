package projections

import (
	"context"
	"fmt"
	"slices"

	"coachdesk/internal/application/dayeditor"
	"coachdesk/internal/application/normalize"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// GetPlanDaysQuery carries query parameters.
type GetPlanDaysQuery struct {
	CustomerID string
	Checkpoint int // 0 picks the customer's current checkpoint
}

// GetPlanDaysDeps holds dependencies for the meal and workout day views.
type GetPlanDaysDeps struct {
	CustomerStore CustomerStore
	MealStore     MealStore
	WorkoutStore  WorkoutStore
}

// MealPlanView is a customer's meal plan for one checkpoint.
type MealPlanView struct {
	CustomerID   string                     `json:"customerId"`
	CustomerName string                     `json:"customerName"`
	Checkpoint   int                        `json:"checkpoint"`
	Checkpoints  []int                      `json:"checkpoints"`
	Days         []int                      `json:"days"`
	Entries      []mealplan.Entry           `json:"entries"`
	Summaries    []normalize.MealDaySummary `json:"summaries"`
}

// WorkoutPlanView is a customer's workout plan for one checkpoint.
type WorkoutPlanView struct {
	CustomerID   string                        `json:"customerId"`
	CustomerName string                        `json:"customerName"`
	Checkpoint   int                           `json:"checkpoint"`
	Checkpoints  []int                         `json:"checkpoints"`
	Days         []int                         `json:"days"`
	Entries      []workoutplan.Entry           `json:"entries"`
	Summaries    []normalize.WorkoutDaySummary `json:"summaries"`
}

// QueryGetMealPlan retrieves the day-tagged meal entries of one checkpoint.
// PRE: CustomerID is non-empty
// POST: Days are the distinct day numbers of Entries, ascending; one summary per day
func QueryGetMealPlan(ctx context.Context, query GetPlanDaysQuery, deps GetPlanDaysDeps) (MealPlanView, error) {
	c, err := deps.CustomerStore.GetByID(ctx, query.CustomerID)
	if err != nil {
		return MealPlanView{}, err
	}
	checkpoints, err := deps.MealStore.Checkpoints(ctx, c.ID)
	if err != nil {
		return MealPlanView{}, fmt.Errorf("meal checkpoints: %w", err)
	}
	view := MealPlanView{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		Checkpoint:   resolveCheckpoint(query.Checkpoint, c.CurrentCheckpoint, checkpoints),
		Checkpoints:  checkpoints,
		Days:         []int{},
		Entries:      []mealplan.Entry{},
		Summaries:    []normalize.MealDaySummary{},
	}
	if view.Checkpoint == 0 {
		return view, nil
	}

	entries, err := deps.MealStore.ListByUser(ctx, c.ID, view.Checkpoint)
	if err != nil {
		return MealPlanView{}, fmt.Errorf("meal entries: %w", err)
	}
	ix := dayeditor.GroupByDay(entries, mealplan.Day)
	view.Entries = entries
	view.Days = ix.Days()
	for _, d := range view.Days {
		group, _ := ix.Group(d)
		view.Summaries = append(view.Summaries, normalize.MealDay(group))
	}
	return view, nil
}

// QueryGetWorkoutPlan retrieves the day-tagged workout entries of one checkpoint.
// PRE: CustomerID is non-empty
// POST: Days are the distinct day numbers of Entries, ascending; one summary per day
func QueryGetWorkoutPlan(ctx context.Context, query GetPlanDaysQuery, deps GetPlanDaysDeps) (WorkoutPlanView, error) {
	c, err := deps.CustomerStore.GetByID(ctx, query.CustomerID)
	if err != nil {
		return WorkoutPlanView{}, err
	}
	checkpoints, err := deps.WorkoutStore.Checkpoints(ctx, c.ID)
	if err != nil {
		return WorkoutPlanView{}, fmt.Errorf("workout checkpoints: %w", err)
	}
	view := WorkoutPlanView{
		CustomerID:   c.ID,
		CustomerName: c.Name,
		Checkpoint:   resolveCheckpoint(query.Checkpoint, c.CurrentCheckpoint, checkpoints),
		Checkpoints:  checkpoints,
		Days:         []int{},
		Entries:      []workoutplan.Entry{},
		Summaries:    []normalize.WorkoutDaySummary{},
	}
	if view.Checkpoint == 0 {
		return view, nil
	}

	entries, err := deps.WorkoutStore.ListByUser(ctx, c.ID, view.Checkpoint)
	if err != nil {
		return WorkoutPlanView{}, fmt.Errorf("workout entries: %w", err)
	}
	ix := dayeditor.GroupByDay(entries, workoutplan.Day)
	view.Entries = entries
	view.Days = ix.Days()
	for _, d := range view.Days {
		group, _ := ix.Group(d)
		view.Summaries = append(view.Summaries, normalize.WorkoutDay(group))
	}
	return view, nil
}

// resolveCheckpoint picks the checkpoint to show. An explicit request always
// wins, even when it has no data yet; otherwise the customer's current
// checkpoint is used when it has data, then the latest checkpoint with data.
func resolveCheckpoint(requested, current int, available []int) int {
	if requested > 0 {
		return requested
	}
	if current > 0 && slices.Contains(available, current) {
		return current
	}
	if len(available) == 0 {
		return current
	}
	return slices.Max(available)
}
