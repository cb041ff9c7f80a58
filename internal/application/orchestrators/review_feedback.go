package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/feedback"
)

// FeedbackStoreForReview defines the store interface needed by ReviewFeedback.
type FeedbackStoreForReview interface {
	GetByID(ctx context.Context, id string) (feedback.Submission, error)
	Save(ctx context.Context, s feedback.Submission) error
}

// ReviewFeedbackInput carries input for the orchestrator.
type ReviewFeedbackInput struct {
	SubmissionID string
	Comment      string
	Actor        Actor
}

// ReviewFeedbackDeps holds dependencies for ReviewFeedback.
type ReviewFeedbackDeps struct {
	FeedbackStore FeedbackStoreForReview
	AuditStore    AuditRecorder
	Now           func() time.Time
}

// ExecuteReviewFeedback marks a submission reviewed with the advisor's reply.
// PRE: submission status is new; comment is non-empty
// POST: submission is reviewed; the raw payload is untouched
func ExecuteReviewFeedback(ctx context.Context, input ReviewFeedbackInput, deps ReviewFeedbackDeps) (feedback.Submission, error) {
	sub, err := deps.FeedbackStore.GetByID(ctx, input.SubmissionID)
	if err != nil {
		return feedback.Submission{}, err
	}
	now := deps.Now()
	if err := sub.MarkReviewed(input.Actor.ID, input.Comment, now); err != nil {
		return feedback.Submission{}, invalid(err)
	}
	if err := deps.FeedbackStore.Save(ctx, sub); err != nil {
		return feedback.Submission{}, fmt.Errorf("save feedback: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryFeedback, audit.ActionReview, "feedback", sub.ID, "", now)
	slog.Info("feedback_event", "event", "feedback_reviewed", "feedback_id", sub.ID, "reviewer", input.Actor.ID)
	return sub, nil
}
