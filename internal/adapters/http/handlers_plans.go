package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
	"coachdesk/internal/domain/export"
	"coachdesk/internal/domain/mealplan"
	domainPlan "coachdesk/internal/domain/plan"
	"coachdesk/internal/domain/workoutplan"
)

const (
	reviewApprove = orchestrators.DecisionApprove
	reviewReject  = orchestrators.DecisionReject
)

func planDaysDeps() projections.GetPlanDaysDeps {
	return projections.GetPlanDaysDeps{
		CustomerStore: stores.CustomerStore,
		MealStore:     stores.MealStore,
		WorkoutStore:  stores.WorkoutStore,
	}
}

func planDaysQuery(r *http.Request) projections.GetPlanDaysQuery {
	checkpoint, _ := strconv.Atoi(r.URL.Query().Get("checkpoint"))
	return projections.GetPlanDaysQuery{CustomerID: r.PathValue("id"), Checkpoint: max(checkpoint, 0)}
}

// handleAPIMealPlan returns a customer's meal days for one checkpoint (GET /api/customers/{id}/meals).
func handleAPIMealPlan(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetMealPlan(r.Context(), planDaysQuery(r), planDaysDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAPIWorkoutPlan returns a customer's workout days for one checkpoint (GET /api/customers/{id}/workouts).
func handleAPIWorkoutPlan(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetWorkoutPlan(r.Context(), planDaysQuery(r), planDaysDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// dayBody is the payload of a whole-day replace.
type dayBody[R any] struct {
	CheckpointNumber int `json:"checkpointNumber"`
	Entries          []R `json:"entries"`
}

func parseDay(r *http.Request) (int, bool) {
	day, err := strconv.Atoi(r.PathValue("day"))
	return day, err == nil
}

// handleAPISaveMealDay replaces one day of meals (PUT /api/customers/{id}/meals/days/{day}).
// POST: the stored day equals the body's entries, and the refreshed checkpoint is returned
func handleAPISaveMealDay(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(r)
	var body dayBody[mealplan.Entry]
	if !ok || strictDecode(r, &body) != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customerID := r.PathValue("id")
	err := orchestrators.ExecuteSaveMealDay(r.Context(), orchestrators.SaveDayInput[mealplan.Entry]{
		CustomerID: customerID,
		Checkpoint: body.CheckpointNumber,
		Day:        day,
		Entries:    body.Entries,
		Actor:      actorFrom(r),
	}, mealSaveDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := projections.QueryGetMealPlan(r.Context(), projections.GetPlanDaysQuery{
		CustomerID: customerID, Checkpoint: body.CheckpointNumber,
	}, planDaysDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAPISaveWorkoutDay replaces one day of exercises (PUT /api/customers/{id}/workouts/days/{day}).
func handleAPISaveWorkoutDay(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(r)
	var body dayBody[workoutplan.Entry]
	if !ok || strictDecode(r, &body) != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	customerID := r.PathValue("id")
	err := orchestrators.ExecuteSaveWorkoutDay(r.Context(), orchestrators.SaveDayInput[workoutplan.Entry]{
		CustomerID: customerID,
		Checkpoint: body.CheckpointNumber,
		Day:        day,
		Entries:    body.Entries,
		Actor:      actorFrom(r),
	}, workoutSaveDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	view, err := projections.QueryGetWorkoutPlan(r.Context(), projections.GetPlanDaysQuery{
		CustomerID: customerID, Checkpoint: body.CheckpointNumber,
	}, planDaysDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func mealSaveDeps() orchestrators.SaveMealDayDeps {
	return orchestrators.SaveMealDayDeps{
		MealStore:     stores.MealStore,
		CustomerStore: stores.CustomerStore,
		AuditStore:    stores.AuditStore,
		Now:           timeNow,
	}
}

func workoutSaveDeps() orchestrators.SaveWorkoutDayDeps {
	return orchestrators.SaveWorkoutDayDeps{
		WorkoutStore:  stores.WorkoutStore,
		CustomerStore: stores.CustomerStore,
		AuditStore:    stores.AuditStore,
		Now:           timeNow,
	}
}

func plansDeps() projections.GetPlansDeps {
	return projections.GetPlansDeps{PlanStore: stores.PlanStore, CustomerStore: stores.CustomerStore}
}

func reviewPlanDeps() orchestrators.ReviewPlanDeps {
	return orchestrators.ReviewPlanDeps{
		PlanStore:     stores.PlanStore,
		CustomerStore: stores.CustomerStore,
		AuditStore:    stores.AuditStore,
		Outbox:        stores.OutboxStore,
		GenerateID:    generateID,
		Now:           timeNow,
	}
}

// handleAPIPlans lists plans in one status (GET /api/plans?status=&kind=).
func handleAPIPlans(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetPlans(r.Context(), projections.GetPlansQuery{
		Status: r.URL.Query().Get("status"),
		Kind:   r.URL.Query().Get("kind"),
	}, plansDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAPIReviewPlan approves or rejects a pending plan with a comment
// (POST /api/plans/{id}/approve, POST /api/plans/{id}/reject).
func handleAPIReviewPlan(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Comment string `json:"comment"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := orchestrators.ExecuteReviewPlan(r.Context(), orchestrators.ReviewPlanInput{
			PlanID:   r.PathValue("id"),
			Decision: decision,
			Comment:  body.Comment,
			Actor:    actorFrom(r),
		}, reviewPlanDeps())
		if err != nil {
			respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// handlePlans renders the plan review queue (GET /plans).
func handlePlans(w http.ResponseWriter, r *http.Request) {
	renderPlans(w, r, http.StatusOK, "", "")
}

func renderPlans(w http.ResponseWriter, r *http.Request, status int, formError, errorPlanID string) {
	result, err := projections.QueryGetPlans(r.Context(), projections.GetPlansQuery{
		Status: r.URL.Query().Get("status"),
		Kind:   r.URL.Query().Get("kind"),
	}, plansDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplateStatus(w, r, status, "plans.html", map[string]any{
		"Status":      result.Status,
		"Plans":       result.Plans,
		"Statuses":    []string{domainPlan.StatusPending, domainPlan.StatusApproved, domainPlan.StatusRejected},
		"Error":       formError,
		"ErrorPlanID": errorPlanID,
	})
}

// handleReviewPlan applies the review form of one plan (POST /plans/{id}/review).
// A missing comment re-renders the queue with the message next to the plan.
func handleReviewPlan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	_, err := orchestrators.ExecuteReviewPlan(r.Context(), orchestrators.ReviewPlanInput{
		PlanID:   id,
		Decision: r.FormValue("decision"),
		Comment:  r.FormValue("comment"),
		Actor:    actorFrom(r),
	}, reviewPlanDeps())
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			internalError(w, err)
			return
		}
		renderPlans(w, r, status, err.Error(), id)
		return
	}
	http.Redirect(w, r, "/plans", http.StatusSeeOther)
}

// handleAPIPlanExport downloads one checkpoint of a customer's plan
// (GET /api/customers/{id}/export?format=json|csv&checkpoint=N).
func handleAPIPlanExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	days := planDaysQuery(r)
	data, err := projections.QueryGetPlanExport(r.Context(), projections.GetPlanExportQuery{
		CustomerID: days.CustomerID,
		Checkpoint: days.Checkpoint,
		Format:     format,
	}, projections.GetPlanExportDeps{
		CustomerStore: stores.CustomerStore,
		MealStore:     stores.MealStore,
		WorkoutStore:  stores.WorkoutStore,
		Now:           timeNow,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	var body []byte
	contentType := "application/json"
	if format == export.FormatCSV {
		body, err = data.ToCSV()
		contentType = "text/csv; charset=utf-8"
	} else {
		body, err = data.ToJSON()
	}
	if err != nil {
		internalError(w, err)
		return
	}
	slog.Info("export_event", "event", "plan_exported", "customer_id", days.CustomerID,
		"checkpoint", data.Checkpoint, "format", format, "records", data.ExportMetadata.RecordCount)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+data.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
