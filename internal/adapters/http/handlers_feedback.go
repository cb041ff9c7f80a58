package web

import (
	"net/http"
	"strconv"

	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
	domainFeedback "coachdesk/internal/domain/feedback"
)

func feedbackQueueDeps() projections.GetFeedbackQueueDeps {
	return projections.GetFeedbackQueueDeps{FeedbackStore: stores.FeedbackStore, CustomerStore: stores.CustomerStore}
}

func reviewFeedbackDeps() orchestrators.ReviewFeedbackDeps {
	return orchestrators.ReviewFeedbackDeps{
		FeedbackStore: stores.FeedbackStore,
		AuditStore:    stores.AuditStore,
		Now:           timeNow,
	}
}

func feedbackQuery(r *http.Request) projections.GetFeedbackQueueQuery {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return projections.GetFeedbackQueueQuery{Status: r.URL.Query().Get("status"), Limit: limit}
}

// handleAPIFeedback lists normalized feedback (GET /api/feedback?status=&limit=).
func handleAPIFeedback(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetFeedbackQueue(r.Context(), feedbackQuery(r), feedbackQueueDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAPIReviewFeedback replies to a submission (POST /api/feedback/{id}/review).
func handleAPIReviewFeedback(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Comment string `json:"comment"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub, err := orchestrators.ExecuteReviewFeedback(r.Context(), orchestrators.ReviewFeedbackInput{
		SubmissionID: r.PathValue("id"),
		Comment:      body.Comment,
		Actor:        actorFrom(r),
	}, reviewFeedbackDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleFeedback renders the feedback queue (GET /feedback).
func handleFeedback(w http.ResponseWriter, r *http.Request) {
	renderFeedback(w, r, http.StatusOK, "", "")
}

func renderFeedback(w http.ResponseWriter, r *http.Request, status int, formError, errorID string) {
	result, err := projections.QueryGetFeedbackQueue(r.Context(), feedbackQuery(r), feedbackQueueDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplateStatus(w, r, status, "feedback.html", map[string]any{
		"Status":   result.Status,
		"Items":    result.Items,
		"NewCount": result.NewCount,
		"Statuses": []string{domainFeedback.StatusNew, domainFeedback.StatusReviewed},
		"Error":    formError,
		"ErrorID":  errorID,
	})
}

// handleReviewFeedback applies the reply form of one submission (POST /feedback/{id}/review).
func handleReviewFeedback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	_, err := orchestrators.ExecuteReviewFeedback(r.Context(), orchestrators.ReviewFeedbackInput{
		SubmissionID: id,
		Comment:      r.FormValue("comment"),
		Actor:        actorFrom(r),
	}, reviewFeedbackDeps())
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		renderFeedback(w, r, status, err.Error(), id)
		return
	}
	http.Redirect(w, r, "/feedback", http.StatusSeeOther)
}
