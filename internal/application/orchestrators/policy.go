package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/policy"
)

// PolicyStoreForOrchestrator defines the store interface needed by policy orchestrators.
type PolicyStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (policy.Policy, error)
	Save(ctx context.Context, p policy.Policy) error
	Delete(ctx context.Context, id string) error
}

// PolicyInput carries the editable fields of a policy.
type PolicyInput struct {
	ID       string // empty on create
	Title    string
	Body     string
	Category string
	Active   bool
	Actor    Actor
}

// PolicyDeps holds dependencies for the policy orchestrators.
type PolicyDeps struct {
	PolicyStore PolicyStoreForOrchestrator
	AuditStore  AuditRecorder
	GenerateID  func() string
	Now         func() time.Time
}

// ExecuteCreatePolicy creates a policy.
// PRE: Title and Body are non-empty
// POST: policy persisted with a new ID and CreatedAt == UpdatedAt
func ExecuteCreatePolicy(ctx context.Context, input PolicyInput, deps PolicyDeps) (policy.Policy, error) {
	now := deps.Now()
	p := policy.Policy{
		ID:        deps.GenerateID(),
		Title:     strings.TrimSpace(input.Title),
		Body:      input.Body,
		Category:  strings.TrimSpace(input.Category),
		Active:    input.Active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return policy.Policy{}, invalid(err)
	}
	if err := deps.PolicyStore.Save(ctx, p); err != nil {
		return policy.Policy{}, fmt.Errorf("save policy: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryPolicy, audit.ActionCreate, "policy", p.ID, p.Title, now)
	slog.Info("policy_event", "event", "policy_created", "policy_id", p.ID)
	return p, nil
}

// ExecuteUpdatePolicy replaces the editable fields of an existing policy.
// PRE: input.ID names an existing policy
// POST: CreatedAt is preserved, UpdatedAt is now
func ExecuteUpdatePolicy(ctx context.Context, input PolicyInput, deps PolicyDeps) (policy.Policy, error) {
	p, err := deps.PolicyStore.GetByID(ctx, input.ID)
	if err != nil {
		return policy.Policy{}, err
	}
	now := deps.Now()
	p.Title = strings.TrimSpace(input.Title)
	p.Body = input.Body
	p.Category = strings.TrimSpace(input.Category)
	p.Active = input.Active
	p.UpdatedAt = now
	if err := p.Validate(); err != nil {
		return policy.Policy{}, invalid(err)
	}
	if err := deps.PolicyStore.Save(ctx, p); err != nil {
		return policy.Policy{}, fmt.Errorf("save policy: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryPolicy, audit.ActionUpdate, "policy", p.ID, p.Title, now)
	slog.Info("policy_event", "event", "policy_updated", "policy_id", p.ID)
	return p, nil
}

// ExecuteDeletePolicy removes a policy.
// POST: the policy no longer exists
func ExecuteDeletePolicy(ctx context.Context, id string, actor Actor, deps PolicyDeps) error {
	if err := deps.PolicyStore.Delete(ctx, id); err != nil {
		return err
	}
	actor.record(ctx, deps.AuditStore, audit.CategoryPolicy, audit.ActionDelete, "policy", id, "", deps.Now())
	slog.Info("policy_event", "event", "policy_deleted", "policy_id", id)
	return nil
}
