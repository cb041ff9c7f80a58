package feedback

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Submission statuses
const (
	StatusNew      = "new"
	StatusReviewed = "reviewed"
)

// MaxCommentLength bounds the advisor's reply.
const MaxCommentLength = 2000

// Domain errors
var (
	ErrEmptyCustomerID = errors.New("customer ID is required")
	ErrInvalidPayload  = errors.New("feedback payload must be a JSON object")
	ErrAlreadyReviewed = errors.New("feedback has already been reviewed")
	ErrEmptyReviewer   = errors.New("reviewer is required")
	ErrEmptyComment    = errors.New("a review comment is required")
	ErrCommentTooLong  = errors.New("review comment cannot exceed 2000 characters")
	ErrInvalidStatus   = errors.New("feedback status must be one of: new, reviewed")
)

// Submission is a customer's feedback on a logged workout or meal, stored
// exactly as received. Payload shape varies by app version, so it is kept as
// raw JSON and interpreted at the normalization boundary.
type Submission struct {
	ID             string          `json:"id"`
	CustomerID     string          `json:"customerId"`
	Payload        json.RawMessage `json:"payload"`
	ReceivedAt     time.Time       `json:"receivedAt"`
	Status         string          `json:"status"`
	AdvisorComment string          `json:"advisorComment,omitempty"`
	ReviewedBy     string          `json:"reviewedBy,omitempty"`
	ReviewedAt     time.Time       `json:"reviewedAt"`
}

// Validate checks if the Submission has valid data.
// PRE: Submission struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Submission) Validate() error {
	if s.CustomerID == "" {
		return ErrEmptyCustomerID
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(s.Payload, &obj); err != nil || obj == nil {
		return ErrInvalidPayload
	}
	if s.Status != StatusNew && s.Status != StatusReviewed {
		return ErrInvalidStatus
	}
	return nil
}

// IsReviewed returns true once an advisor has replied.
// INVARIANT: Status field is not mutated
func (s *Submission) IsReviewed() bool {
	return s.Status == StatusReviewed
}

// MarkReviewed records the advisor's reply.
// PRE: Submission is new; reviewerID and comment are non-empty
// POST: Status is reviewed; AdvisorComment, ReviewedBy and ReviewedAt are set
func (s *Submission) MarkReviewed(reviewerID, comment string, now time.Time) error {
	if s.IsReviewed() {
		return ErrAlreadyReviewed
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
	s.Status = StatusReviewed
	s.AdvisorComment = comment
	s.ReviewedBy = reviewerID
	s.ReviewedAt = now
	return nil
}
