package feedback

import (
	"context"
	"errors"

	domain "coachdesk/internal/domain/feedback"
)

// ErrNotFound is returned when no submission matches.
var ErrNotFound = errors.New("feedback not found")

// Store persists customer feedback submissions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Submission, error)
	Save(ctx context.Context, s domain.Submission) error

	// List returns submissions with the given status ("" for all), newest first.
	// PRE: limit > 0
	List(ctx context.Context, status string, limit int) ([]domain.Submission, error)

	// CountByStatus returns how many submissions have status.
	CountByStatus(ctx context.Context, status string) (int, error)
}
