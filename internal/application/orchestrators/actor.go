package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"coachdesk/internal/domain/audit"
)

// Actor identifies the staff member issuing a command.
type Actor struct {
	ID    string
	Email string
	Role  string
	IP    string
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Save(ctx context.Context, e audit.Event) error
}

// record writes an audit event for the actor. A failed write is logged but
// never fails the command that produced it.
func (a Actor) record(ctx context.Context, store AuditRecorder, category audit.Category, action audit.Action,
	resourceType, resourceID, description string, now time.Time) {
	if store == nil {
		return
	}
	e := audit.NewEvent(a.ID, a.Email, a.Role, category, action, now).
		WithResource(resourceType, resourceID).
		WithDescription(description).
		WithIP(a.IP)
	if err := store.Save(ctx, e); err != nil {
		slog.Error("audit_save_failed", "category", category, "action", action, "error", err)
	}
}
