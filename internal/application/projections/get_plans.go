package projections

import (
	"context"
	"fmt"
	"time"

	"coachdesk/internal/adapters/storage/plan"
	domainPlan "coachdesk/internal/domain/plan"
)

// GetPlansQuery carries query parameters.
type GetPlansQuery struct {
	Status string // defaults to pending
	Kind   string
}

// PlanRow is one line of the plan review queue.
type PlanRow struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customerId"`
	CustomerName     string    `json:"customerName"`
	Kind             string    `json:"kind"`
	CheckpointNumber int       `json:"checkpointNumber"`
	Status           string    `json:"status"`
	GeneratedAt      time.Time `json:"generatedAt"`
	ReviewComment    string    `json:"reviewComment,omitempty"`
}

// GetPlansResult carries the query result.
type GetPlansResult struct {
	Status string    `json:"status"`
	Plans  []PlanRow `json:"plans"`
}

// GetPlansDeps holds dependencies for GetPlans.
type GetPlansDeps struct {
	PlanStore     PlanStore
	CustomerStore CustomerStore
}

// QueryGetPlans lists plans in one status, newest first, with customer names.
// PRE: Status is empty or a known plan status
// POST: Plans is non-nil
func QueryGetPlans(ctx context.Context, query GetPlansQuery, deps GetPlansDeps) (GetPlansResult, error) {
	status := query.Status
	if status == "" {
		status = domainPlan.StatusPending
	}
	plans, err := deps.PlanStore.List(ctx, plan.ListFilter{Status: status, Kind: query.Kind})
	if err != nil {
		return GetPlansResult{}, fmt.Errorf("list plans: %w", err)
	}

	names := newCustomerNames(deps.CustomerStore)
	rows := make([]PlanRow, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, PlanRow{
			ID:               p.ID,
			CustomerID:       p.CustomerID,
			CustomerName:     names.name(ctx, p.CustomerID),
			Kind:             p.Kind,
			CheckpointNumber: p.CheckpointNumber,
			Status:           p.Status,
			GeneratedAt:      p.GeneratedAt,
			ReviewComment:    p.ReviewComment,
		})
	}
	return GetPlansResult{Status: status, Plans: rows}, nil
}
