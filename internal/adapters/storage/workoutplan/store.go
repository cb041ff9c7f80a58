package workoutplan

import (
	"context"

	domain "coachdesk/internal/domain/workoutplan"
)

// AllCheckpoints passed as checkpoint lists entries of every checkpoint.
const AllCheckpoints = 0

// Store persists day-tagged workout entries.
type Store interface {
	// ListByUser returns a customer's exercises ordered by day then position.
	// PRE: userID is non-empty; checkpoint >= 0
	// POST: Returns an empty slice when the customer has no entries
	ListByUser(ctx context.Context, userID string, checkpoint int) ([]domain.Entry, error)

	// ReplaceDay swaps the whole day for entries in one transaction.
	// PRE: entries have been validated
	// POST: Exactly entries exist for (userID, checkpoint, day); row order is kept
	ReplaceDay(ctx context.Context, userID string, checkpoint, day int, entries []domain.Entry) error

	// Checkpoints returns the distinct checkpoint numbers a customer has entries for, ascending.
	Checkpoints(ctx context.Context, userID string) ([]int, error)
}
