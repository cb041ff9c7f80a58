package projections

import (
	"context"

	"coachdesk/internal/adapters/storage/customer"
	"coachdesk/internal/adapters/storage/plan"
	domainAdvisor "coachdesk/internal/domain/advisor"
	domainCustomer "coachdesk/internal/domain/customer"
	domainFeedback "coachdesk/internal/domain/feedback"
	"coachdesk/internal/domain/mealplan"
	domainPlan "coachdesk/internal/domain/plan"
	domainPolicy "coachdesk/internal/domain/policy"
	"coachdesk/internal/domain/workoutplan"
)

// CustomerStore interface for customer queries.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (domainCustomer.Customer, error)
	List(ctx context.Context, filter customer.ListFilter) ([]domainCustomer.Customer, error)
	Count(ctx context.Context, filter customer.ListFilter) (int, error)
}

// PlanStore interface for plan queries.
type PlanStore interface {
	List(ctx context.Context, filter plan.ListFilter) ([]domainPlan.Plan, error)
}

// FeedbackStore interface for feedback queries.
type FeedbackStore interface {
	List(ctx context.Context, status string, limit int) ([]domainFeedback.Submission, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}

// PolicyStore interface for policy queries.
type PolicyStore interface {
	List(ctx context.Context, activeOnly bool) ([]domainPolicy.Policy, error)
}

// AdvisorStore interface for advisor profile and settings queries.
type AdvisorStore interface {
	GetProfile(ctx context.Context, accountID string) (domainAdvisor.Profile, error)
	GetSettings(ctx context.Context, accountID string) (domainAdvisor.Settings, error)
}

// MealStore interface for meal plan queries.
type MealStore interface {
	ListByUser(ctx context.Context, userID string, checkpoint int) ([]mealplan.Entry, error)
	Checkpoints(ctx context.Context, userID string) ([]int, error)
}

// WorkoutStore interface for workout plan queries.
type WorkoutStore interface {
	ListByUser(ctx context.Context, userID string, checkpoint int) ([]workoutplan.Entry, error)
	Checkpoints(ctx context.Context, userID string) ([]int, error)
}

// customerNames resolves customer display names, looking each id up once.
// Unknown ids fall back to the id itself.
type customerNames struct {
	store CustomerStore
	cache map[string]string
}

func newCustomerNames(store CustomerStore) *customerNames {
	return &customerNames{store: store, cache: map[string]string{}}
}

func (n *customerNames) name(ctx context.Context, id string) string {
	if name, ok := n.cache[id]; ok {
		return name
	}
	name := id
	if c, err := n.store.GetByID(ctx, id); err == nil && c.Name != "" {
		name = c.Name
	}
	n.cache[id] = name
	return name
}
