package plan

import (
	"errors"
	"strings"
	"time"
)

// Plan kinds
const (
	KindMeal    = "meal"
	KindWorkout = "workout"
)

// Plan statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxCommentLength bounds the review comment.
const MaxCommentLength = 2000

// Domain errors
var (
	ErrEmptyCustomerID = errors.New("customer ID is required")
	ErrInvalidKind     = errors.New("plan kind must be one of: meal, workout")
	ErrInvalidStatus   = errors.New("plan status must be one of: pending, approved, rejected")
	ErrAlreadyDecided  = errors.New("plan has already been reviewed")
	ErrEmptyReviewer   = errors.New("reviewer is required")
	ErrEmptyComment    = errors.New("a review comment is required")
	ErrCommentTooLong  = errors.New("review comment cannot exceed 2000 characters")
)

// Plan is an AI-generated meal or workout plan for one checkpoint of a
// customer, awaiting or past advisor review.
type Plan struct {
	ID               string    `json:"id"`
	CustomerID       string    `json:"customerId"`
	Kind             string    `json:"kind"`
	CheckpointNumber int       `json:"checkpointNumber"`
	Status           string    `json:"status"`
	GeneratedAt      time.Time `json:"generatedAt"`
	ReviewedBy       string    `json:"reviewedBy,omitempty"`
	ReviewComment    string    `json:"reviewComment,omitempty"`
	ReviewedAt       time.Time `json:"reviewedAt"`
}

// Validate checks if the Plan has valid data.
// PRE: Plan struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Plan) Validate() error {
	if p.CustomerID == "" {
		return ErrEmptyCustomerID
	}
	if p.Kind != KindMeal && p.Kind != KindWorkout {
		return ErrInvalidKind
	}
	if p.Status != StatusPending && p.Status != StatusApproved && p.Status != StatusRejected {
		return ErrInvalidStatus
	}
	if p.CheckpointNumber < 0 {
		return errors.New("checkpoint number cannot be negative")
	}
	return nil
}

// IsPending returns true if the plan is awaiting review.
// INVARIANT: Status field is not mutated
func (p *Plan) IsPending() bool {
	return p.Status == StatusPending
}

// Approve moves the plan to approved.
// PRE: Plan is pending; reviewerID and comment are non-empty
// POST: Status is approved; ReviewedBy, ReviewComment and ReviewedAt are set
func (p *Plan) Approve(reviewerID, comment string, now time.Time) error {
	return p.decide(StatusApproved, reviewerID, comment, now)
}

// Reject moves the plan to rejected.
// PRE: Plan is pending; reviewerID and comment are non-empty
// POST: Status is rejected; ReviewedBy, ReviewComment and ReviewedAt are set
func (p *Plan) Reject(reviewerID, comment string, now time.Time) error {
	return p.decide(StatusRejected, reviewerID, comment, now)
}

func (p *Plan) decide(status, reviewerID, comment string, now time.Time) error {
	if !p.IsPending() {
		return ErrAlreadyDecided
	}
	if reviewerID == "" {
		return ErrEmptyReviewer
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrEmptyComment
	}
	if len(comment) > MaxCommentLength {
		return ErrCommentTooLong
	}
	p.Status = status
	p.ReviewedBy = reviewerID
	p.ReviewComment = comment
	p.ReviewedAt = now
	return nil
}
