package projections

import (
	"context"
	"fmt"
	"math"
	"time"

	domainCustomer "coachdesk/internal/domain/customer"
	domainFeedback "coachdesk/internal/domain/feedback"
)

// ApprovalWindow is how far back the dashboard counts approvals.
const ApprovalWindow = 7 * 24 * time.Hour

// DashboardCustomerStore defines the customer aggregate needed by the dashboard projection.
type DashboardCustomerStore interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// DashboardPlanStore defines the plan aggregates needed by the dashboard projection.
type DashboardPlanStore interface {
	CountPendingByKind(ctx context.Context) (map[string]int, error)
	CountApprovedSince(ctx context.Context, since time.Time) (int, error)
}

// DashboardFeedbackStore defines the feedback aggregate needed by the dashboard projection.
type DashboardFeedbackStore interface {
	CountByStatus(ctx context.Context, status string) (int, error)
}

// DashboardMealStore defines the meal aggregate needed by the dashboard projection.
type DashboardMealStore interface {
	DailyCalories(ctx context.Context) ([]int, error)
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	CustomerStore DashboardCustomerStore
	PlanStore     DashboardPlanStore
	FeedbackStore DashboardFeedbackStore
	MealStore     DashboardMealStore
	Now           func() time.Time
}

// DashboardResult carries the analytics widgets.
type DashboardResult struct {
	CustomersByStatus   map[string]int `json:"customersByStatus"`
	ActiveCustomers     int            `json:"activeCustomers"`
	PendingPlansByKind  map[string]int `json:"pendingPlansByKind"`
	PendingPlans        int            `json:"pendingPlans"`
	FeedbackAwaiting    int            `json:"feedbackAwaiting"`
	ApprovedLast7Days   int            `json:"approvedLast7Days"`
	AvgDailyCalories    int            `json:"avgDailyCalories"`
	PlannedDaysMeasured int            `json:"plannedDaysMeasured"`
}

// QueryGetDashboard computes the dashboard analytics.
// POST: every count is >= 0; AvgDailyCalories is 0 when no active customer has a planned day
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	byStatus, err := deps.CustomerStore.CountByStatus(ctx)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("customers by status: %w", err)
	}
	pending, err := deps.PlanStore.CountPendingByKind(ctx)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("pending plans: %w", err)
	}
	approved, err := deps.PlanStore.CountApprovedSince(ctx, deps.Now().Add(-ApprovalWindow))
	if err != nil {
		return DashboardResult{}, fmt.Errorf("approved plans: %w", err)
	}
	awaiting, err := deps.FeedbackStore.CountByStatus(ctx, domainFeedback.StatusNew)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("feedback awaiting review: %w", err)
	}
	daily, err := deps.MealStore.DailyCalories(ctx)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("daily calories: %w", err)
	}

	result := DashboardResult{
		CustomersByStatus:   byStatus,
		ActiveCustomers:     byStatus[domainCustomer.StatusActive],
		PendingPlansByKind:  pending,
		FeedbackAwaiting:    awaiting,
		ApprovedLast7Days:   approved,
		AvgDailyCalories:    averageInt(daily),
		PlannedDaysMeasured: len(daily),
	}
	for _, n := range pending {
		result.PendingPlans += n
	}
	return result, nil
}

// averageInt returns the rounded mean of values, or 0 for none.
func averageInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}
