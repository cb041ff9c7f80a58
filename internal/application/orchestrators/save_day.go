package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/customer"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// Save-day errors
var (
	ErrEmptyDay      = errors.New("a day must keep at least one entry")
	ErrInvalidTarget = errors.New("day and checkpoint must be at least 1")
)

// CustomerLookup loads a customer by ID.
type CustomerLookup interface {
	GetByID(ctx context.Context, id string) (customer.Customer, error)
}

// MealDayStore replaces one day of meals atomically.
type MealDayStore interface {
	ReplaceDay(ctx context.Context, userID string, checkpoint, day int, entries []mealplan.Entry) error
}

// WorkoutDayStore replaces one day of exercises atomically.
type WorkoutDayStore interface {
	ReplaceDay(ctx context.Context, userID string, checkpoint, day int, entries []workoutplan.Entry) error
}

// SaveDayInput carries the whole edited day. Entries replace the stored day.
type SaveDayInput[R any] struct {
	CustomerID string
	Checkpoint int
	Day        int
	Entries    []R
	Actor      Actor
}

// SaveMealDayDeps holds dependencies for SaveMealDay.
type SaveMealDayDeps struct {
	MealStore     MealDayStore
	CustomerStore CustomerLookup
	AuditStore    AuditRecorder
	Now           func() time.Time
}

// SaveWorkoutDayDeps holds dependencies for SaveWorkoutDay.
type SaveWorkoutDayDeps struct {
	WorkoutStore  WorkoutDayStore
	CustomerStore CustomerLookup
	AuditStore    AuditRecorder
	Now           func() time.Time
}

// ExecuteSaveMealDay validates and stores a full day of meals.
// PRE: the customer exists
// POST: the stored day equals input.Entries in order, or nothing changed
// INVARIANT: every entry is tagged with the target customer, day and checkpoint
func ExecuteSaveMealDay(ctx context.Context, input SaveDayInput[mealplan.Entry], deps SaveMealDayDeps) error {
	entries, err := prepareDay(ctx, input, deps.CustomerStore, func(e mealplan.Entry) (mealplan.Entry, error) {
		e = mealplan.Clone(e)
		e.UserID, e.DayNumber, e.CheckpointNumber = input.CustomerID, input.Day, input.Checkpoint
		return e, e.Validate()
	})
	if err != nil {
		return err
	}
	if err := deps.MealStore.ReplaceDay(ctx, input.CustomerID, input.Checkpoint, input.Day, entries); err != nil {
		return fmt.Errorf("replace meal day: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryCustomer, audit.ActionUpdate, "meal_day", input.CustomerID,
		fmt.Sprintf("checkpoint %d day %d: %d meals", input.Checkpoint, input.Day, len(entries)), deps.Now())
	slog.Info("plan_event", "event", "meal_day_saved", "customer_id", input.CustomerID,
		"checkpoint", input.Checkpoint, "day", input.Day, "entries", len(entries))
	return nil
}

// ExecuteSaveWorkoutDay validates and stores a full day of exercises.
// PRE: the customer exists
// POST: the stored day equals input.Entries in order, or nothing changed
func ExecuteSaveWorkoutDay(ctx context.Context, input SaveDayInput[workoutplan.Entry], deps SaveWorkoutDayDeps) error {
	entries, err := prepareDay(ctx, input, deps.CustomerStore, func(e workoutplan.Entry) (workoutplan.Entry, error) {
		e.UserID, e.DayNumber, e.CheckpointNumber = input.CustomerID, input.Day, input.Checkpoint
		return e, e.Validate()
	})
	if err != nil {
		return err
	}
	if err := deps.WorkoutStore.ReplaceDay(ctx, input.CustomerID, input.Checkpoint, input.Day, entries); err != nil {
		return fmt.Errorf("replace workout day: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryCustomer, audit.ActionUpdate, "workout_day", input.CustomerID,
		fmt.Sprintf("checkpoint %d day %d: %d exercises", input.Checkpoint, input.Day, len(entries)), deps.Now())
	slog.Info("plan_event", "event", "workout_day_saved", "customer_id", input.CustomerID,
		"checkpoint", input.Checkpoint, "day", input.Day, "entries", len(entries))
	return nil
}

// prepareDay checks the target and runs prepare over every entry, stopping at the first invalid one.
func prepareDay[R any](ctx context.Context, input SaveDayInput[R], customers CustomerLookup, prepare func(R) (R, error)) ([]R, error) {
	if input.Day < 1 || input.Checkpoint < 1 {
		return nil, invalid(ErrInvalidTarget)
	}
	if len(input.Entries) == 0 {
		return nil, invalid(ErrEmptyDay)
	}
	if _, err := customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}
	out := make([]R, len(input.Entries))
	for i, e := range input.Entries {
		p, err := prepare(e)
		if err != nil {
			return nil, invalid(fmt.Errorf("row %d: %w", i+1, err))
		}
		out[i] = p
	}
	return out, nil
}
