package projections

import (
	"context"
	"time"

	"coachdesk/internal/adapters/storage/plan"
	"coachdesk/internal/application/normalize"
	domainPlan "coachdesk/internal/domain/plan"
)

// GetCustomerProfileQuery carries query parameters.
type GetCustomerProfileQuery struct {
	CustomerID string
}

// GetCustomerProfileResult carries the query result.
type GetCustomerProfileResult struct {
	Profile            normalize.CustomerProfile `json:"profile"`
	Plans              []domainPlan.Plan         `json:"plans"`
	MealCheckpoints    []int                     `json:"mealCheckpoints"`
	WorkoutCheckpoints []int                     `json:"workoutCheckpoints"`
}

// GetCustomerProfileDeps holds dependencies for GetCustomerProfile.
type GetCustomerProfileDeps struct {
	CustomerStore CustomerStore
	PlanStore     PlanStore
	MealStore     MealStore
	WorkoutStore  WorkoutStore
	Now           func() time.Time
}

// QueryGetCustomerProfile retrieves a customer's normalized profile with the
// plans generated for them and the checkpoints that have day data.
// PRE: CustomerID is non-empty
// POST: Returns the customer's store error unchanged when the lookup fails
func QueryGetCustomerProfile(ctx context.Context, query GetCustomerProfileQuery, deps GetCustomerProfileDeps) (GetCustomerProfileResult, error) {
	c, err := deps.CustomerStore.GetByID(ctx, query.CustomerID)
	if err != nil {
		return GetCustomerProfileResult{}, err
	}

	plans, err := deps.PlanStore.List(ctx, plan.ListFilter{CustomerID: c.ID})
	if err != nil {
		return GetCustomerProfileResult{}, err
	}
	meals, err := deps.MealStore.Checkpoints(ctx, c.ID)
	if err != nil {
		return GetCustomerProfileResult{}, err
	}
	workouts, err := deps.WorkoutStore.Checkpoints(ctx, c.ID)
	if err != nil {
		return GetCustomerProfileResult{}, err
	}

	return GetCustomerProfileResult{
		Profile:            normalize.Customer(c, deps.Now()),
		Plans:              plans,
		MealCheckpoints:    meals,
		WorkoutCheckpoints: workouts,
	}, nil
}
