package orchestrators

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/outbox"
	"coachdesk/internal/domain/plan"
)

// Plan decisions
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
)

// ErrInvalidDecision is returned for a decision other than approve or reject.
var ErrInvalidDecision = errors.New("decision must be approve or reject")

// PlanStoreForReview defines the store interface needed by ReviewPlan.
type PlanStoreForReview interface {
	GetByID(ctx context.Context, id string) (plan.Plan, error)
	Save(ctx context.Context, p plan.Plan) error
}

// OutboxEnqueuer persists outbox entries for the background worker.
type OutboxEnqueuer interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// ReviewPlanInput carries input for the review orchestrator.
type ReviewPlanInput struct {
	PlanID   string
	Decision string
	Comment  string
	Actor    Actor
}

// ReviewPlanDeps holds dependencies for ReviewPlan.
type ReviewPlanDeps struct {
	PlanStore     PlanStoreForReview
	CustomerStore CustomerLookup
	AuditStore    AuditRecorder
	Outbox        OutboxEnqueuer
	GenerateID    func() string
	Now           func() time.Time
}

// ExecuteReviewPlan approves or rejects a pending plan and queues a
// notification email to the customer.
// PRE: the plan is pending; comment is non-empty
// POST: plan is decided and saved; an audit event and an outbox email exist
// INVARIANT: a decided plan is never decided again
func ExecuteReviewPlan(ctx context.Context, input ReviewPlanInput, deps ReviewPlanDeps) (plan.Plan, error) {
	p, err := deps.PlanStore.GetByID(ctx, input.PlanID)
	if err != nil {
		return plan.Plan{}, err
	}

	now := deps.Now()
	var action audit.Action
	switch input.Decision {
	case DecisionApprove:
		err = p.Approve(input.Actor.ID, input.Comment, now)
		action = audit.ActionApprove
	case DecisionReject:
		err = p.Reject(input.Actor.ID, input.Comment, now)
		action = audit.ActionReject
	default:
		return plan.Plan{}, invalid(ErrInvalidDecision)
	}
	if err != nil {
		return plan.Plan{}, invalid(err)
	}

	if err := deps.PlanStore.Save(ctx, p); err != nil {
		return plan.Plan{}, fmt.Errorf("save plan: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryPlan, action, "plan", p.ID,
		fmt.Sprintf("%s plan checkpoint %d", p.Kind, p.CheckpointNumber), now)
	slog.Info("plan_event", "event", "plan_"+p.Status, "plan_id", p.ID, "kind", p.Kind, "reviewer", input.Actor.ID)

	if err := enqueuePlanEmail(ctx, p, deps, now); err != nil {
		// The decision stands; the customer just misses the email.
		slog.Error("plan_notification_failed", "plan_id", p.ID, "error", err)
	}
	return p, nil
}

var planEmailTmpl = template.Must(template.New("plan").Parse(
	`<p>Hi {{.Name}},</p>
<p>Your coach has {{if .Approved}}approved{{else}}asked for changes to{{end}} your {{.Kind}} plan for checkpoint {{.Checkpoint}}.</p>
<blockquote>{{.Comment}}</blockquote>
<p>Open the app to see the details.</p>`))

func enqueuePlanEmail(ctx context.Context, p plan.Plan, deps ReviewPlanDeps, now time.Time) error {
	if deps.Outbox == nil || deps.CustomerStore == nil {
		return nil
	}
	c, err := deps.CustomerStore.GetByID(ctx, p.CustomerID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}

	var body bytes.Buffer
	err = planEmailTmpl.Execute(&body, map[string]any{
		"Name":       c.Name,
		"Approved":   p.Status == plan.StatusApproved,
		"Kind":       p.Kind,
		"Checkpoint": p.CheckpointNumber,
		"Comment":    p.ReviewComment,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Your %s plan is ready", p.Kind)
	if p.Status == plan.StatusRejected {
		subject = fmt.Sprintf("Your %s plan is being revised", p.Kind)
	}
	entry, err := outbox.NewEmail(deps.GenerateID(), outbox.EmailPayload{
		To:      c.Email,
		Subject: subject,
		HTML:    body.String(),
	}, now)
	if err != nil {
		return err
	}
	return deps.Outbox.Save(ctx, entry)
}
