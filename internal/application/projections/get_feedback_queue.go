package projections

import (
	"context"
	"fmt"

	"coachdesk/internal/application/normalize"
	domainFeedback "coachdesk/internal/domain/feedback"
)

// DefaultFeedbackLimit caps the queue when no limit is given.
const DefaultFeedbackLimit = 50

// GetFeedbackQueueQuery carries query parameters.
type GetFeedbackQueueQuery struct {
	Status string // defaults to new
	Limit  int
}

// FeedbackItem is a normalized submission with its customer's name.
type FeedbackItem struct {
	normalize.Submission
	CustomerName string `json:"customerName"`
}

// GetFeedbackQueueResult carries the query result.
type GetFeedbackQueueResult struct {
	Status   string         `json:"status"`
	Items    []FeedbackItem `json:"items"`
	NewCount int            `json:"newCount"`
}

// GetFeedbackQueueDeps holds dependencies for GetFeedbackQueue.
type GetFeedbackQueueDeps struct {
	FeedbackStore FeedbackStore
	CustomerStore CustomerStore
}

// QueryGetFeedbackQueue lists feedback submissions, normalized into workout or
// meal feedback.
// POST: every item has Kind set exactly once; Items is non-nil
func QueryGetFeedbackQueue(ctx context.Context, query GetFeedbackQueueQuery, deps GetFeedbackQueueDeps) (GetFeedbackQueueResult, error) {
	status := query.Status
	if status == "" {
		status = domainFeedback.StatusNew
	}
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultFeedbackLimit
	}

	subs, err := deps.FeedbackStore.List(ctx, status, limit)
	if err != nil {
		return GetFeedbackQueueResult{}, fmt.Errorf("list feedback: %w", err)
	}
	newCount, err := deps.FeedbackStore.CountByStatus(ctx, domainFeedback.StatusNew)
	if err != nil {
		return GetFeedbackQueueResult{}, fmt.Errorf("count feedback: %w", err)
	}

	names := newCustomerNames(deps.CustomerStore)
	items := make([]FeedbackItem, 0, len(subs))
	for _, s := range subs {
		items = append(items, FeedbackItem{
			Submission:   normalize.Feedback(s),
			CustomerName: names.name(ctx, s.CustomerID),
		})
	}
	return GetFeedbackQueueResult{Status: status, Items: items, NewCount: newCount}, nil
}
