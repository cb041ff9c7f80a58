package customer

import (
	"context"
	"errors"

	domain "coachdesk/internal/domain/customer"
)

// ErrNotFound is returned when no customer matches.
var ErrNotFound = errors.New("customer not found")

// Store persists customers.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Customer, error)
	Save(ctx context.Context, c domain.Customer) error

	// List returns customers matching filter ordered by filter.Sort, then by name.
	// POST: Returns an empty slice when nothing matches
	List(ctx context.Context, filter ListFilter) ([]domain.Customer, error)

	// Count returns the number of customers matching filter, ignoring Limit and Offset.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// CountByStatus returns the number of customers per status.
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// Sort columns accepted by List.
const (
	SortName       = "name"
	SortStatus     = "status"
	SortCheckpoint = "checkpoint"
	SortCreated    = "created"
)

// SortColumns lists every accepted ListFilter.Sort value.
var SortColumns = []string{SortName, SortStatus, SortCheckpoint, SortCreated}

// ListFilter carries filtering parameters for List operations.
// Limit <= 0 means no limit. An unknown Sort falls back to name order.
type ListFilter struct {
	Status    string
	AdvisorID string
	Search    string
	Sort      string
	Desc      bool
	Limit     int
	Offset    int
}
