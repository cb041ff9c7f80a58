package audit

import (
	"context"

	domain "coachdesk/internal/domain/audit"
)

// Store defines the interface for audit event persistence.
type Store interface {
	// Save persists an audit event.
	// PRE: event has an ID and timestamp
	Save(ctx context.Context, event domain.Event) error

	// List returns audit events matching filter, newest first.
	// PRE: limit > 0
	List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error)
}

// Filter narrows List. Zero-value fields are ignored.
type Filter struct {
	Category   domain.Category
	ActorID    string
	ResourceID string
}

var _ Store = (*SQLiteStore)(nil)
