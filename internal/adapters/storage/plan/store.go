package plan

import (
	"context"
	"errors"
	"time"

	domain "coachdesk/internal/domain/plan"
)

// ErrNotFound is returned when no plan matches.
var ErrNotFound = errors.New("plan not found")

// Store persists generated plans and their review outcome.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Plan, error)
	Save(ctx context.Context, p domain.Plan) error

	// List returns plans matching filter, newest generated first.
	List(ctx context.Context, filter ListFilter) ([]domain.Plan, error)

	// CountPendingByKind returns pending plan counts keyed by kind.
	CountPendingByKind(ctx context.Context) (map[string]int, error)

	// CountApprovedSince returns how many plans were approved at or after since.
	CountApprovedSince(ctx context.Context, since time.Time) (int, error)
}

// ListFilter narrows List. Zero-value fields are ignored.
type ListFilter struct {
	Status     string
	Kind       string
	CustomerID string
}
