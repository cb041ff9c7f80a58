package policy

import (
	"context"
	"errors"

	domain "coachdesk/internal/domain/policy"
)

// ErrNotFound is returned when no policy matches.
var ErrNotFound = errors.New("policy not found")

// Store persists coaching policies.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Policy, error)
	Save(ctx context.Context, p domain.Policy) error

	// Delete removes a policy.
	// POST: Returns ErrNotFound when nothing was deleted
	Delete(ctx context.Context, id string) error

	// List returns policies ordered by category then title.
	List(ctx context.Context, activeOnly bool) ([]domain.Policy, error)
}
