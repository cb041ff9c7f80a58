package mealplan

import (
	"context"

	domain "coachdesk/internal/domain/mealplan"
)

// AllCheckpoints passed as checkpoint lists entries of every checkpoint.
const AllCheckpoints = 0

// Store persists day-tagged meal entries.
type Store interface {
	// ListByUser returns a customer's entries ordered by day then position.
	// PRE: userID is non-empty; checkpoint >= 0 (AllCheckpoints for every checkpoint)
	// POST: Returns an empty slice when the customer has no entries
	ListByUser(ctx context.Context, userID string, checkpoint int) ([]domain.Entry, error)

	// ReplaceDay swaps the whole day for entries in one transaction.
	// PRE: entries have been validated
	// POST: Exactly entries exist for (userID, checkpoint, day); row order is kept
	ReplaceDay(ctx context.Context, userID string, checkpoint, day int, entries []domain.Entry) error

	// Checkpoints returns the distinct checkpoint numbers a customer has entries for, ascending.
	Checkpoints(ctx context.Context, userID string) ([]int, error)

	// DailyCalories returns the planned calories of each (customer, checkpoint, day) for active customers.
	DailyCalories(ctx context.Context) ([]int, error)
}
