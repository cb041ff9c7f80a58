package web

import (
	"net/http"

	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
)

func policyDeps() orchestrators.PolicyDeps {
	return orchestrators.PolicyDeps{
		PolicyStore: stores.PolicyStore,
		AuditStore:  stores.AuditStore,
		GenerateID:  generateID,
		Now:         timeNow,
	}
}

func policiesDeps() projections.GetPoliciesDeps {
	return projections.GetPoliciesDeps{PolicyStore: stores.PolicyStore}
}

// policyBody is the JSON shape of an editable policy.
type policyBody struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	Category string `json:"category"`
	Active   *bool  `json:"active"`
}

func (b policyBody) input(id string, actor orchestrators.Actor) orchestrators.PolicyInput {
	active := true
	if b.Active != nil {
		active = *b.Active
	}
	return orchestrators.PolicyInput{
		ID:       id,
		Title:    b.Title,
		Body:     b.Body,
		Category: b.Category,
		Active:   active,
		Actor:    actor,
	}
}

// handleAPIPolicies lists policies (GET /api/policies?active=1).
func handleAPIPolicies(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetPolicies(r.Context(), projections.GetPoliciesQuery{
		ActiveOnly: r.URL.Query().Get("active") == "1",
	}, policiesDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAPICreatePolicy creates a policy (POST /api/policies).
func handleAPICreatePolicy(w http.ResponseWriter, r *http.Request) {
	var body policyBody
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := orchestrators.ExecuteCreatePolicy(r.Context(), body.input("", actorFrom(r)), policyDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleAPIUpdatePolicy replaces a policy's fields (PUT /api/policies/{id}).
func handleAPIUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var body policyBody
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := orchestrators.ExecuteUpdatePolicy(r.Context(), body.input(r.PathValue("id"), actorFrom(r)), policyDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleAPIDeletePolicy removes a policy (DELETE /api/policies/{id}).
func handleAPIDeletePolicy(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeletePolicy(r.Context(), r.PathValue("id"), actorFrom(r), policyDeps()); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePolicies renders the policy list and editor (GET /policies).
func handlePolicies(w http.ResponseWriter, r *http.Request) {
	renderPolicies(w, r, http.StatusOK, "", "", nil)
}

func renderPolicies(w http.ResponseWriter, r *http.Request, status int, formError, errorID string, form map[string]string) {
	result, err := projections.QueryGetPolicies(r.Context(), projections.GetPoliciesQuery{}, policiesDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplateStatus(w, r, status, "policies.html", map[string]any{
		"Groups":  result.Groups,
		"Count":   len(result.Policies),
		"Error":   formError,
		"ErrorID": errorID,
		"Form":    form,
	})
}

func policyForm(r *http.Request, id string) orchestrators.PolicyInput {
	return orchestrators.PolicyInput{
		ID:       id,
		Title:    r.FormValue("title"),
		Body:     r.FormValue("body"),
		Category: r.FormValue("category"),
		Active:   r.FormValue("active") == "on",
		Actor:    actorFrom(r),
	}
}

// handleCreatePolicy adds a policy from the new-policy form (POST /policies).
func handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := policyForm(r, "")
	if _, err := orchestrators.ExecuteCreatePolicy(r.Context(), in, policyDeps()); err != nil {
		policyFormError(w, r, err, "", in)
		return
	}
	http.Redirect(w, r, "/policies", http.StatusSeeOther)
}

// handleUpdatePolicy saves the edit form of one policy (POST /policies/{id}).
func handleUpdatePolicy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	in := policyForm(r, id)
	if _, err := orchestrators.ExecuteUpdatePolicy(r.Context(), in, policyDeps()); err != nil {
		policyFormError(w, r, err, id, in)
		return
	}
	http.Redirect(w, r, "/policies", http.StatusSeeOther)
}

// handleDeletePolicy removes one policy (POST /policies/{id}/delete).
func handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := orchestrators.ExecuteDeletePolicy(r.Context(), id, actorFrom(r), policyDeps()); err != nil {
		policyFormError(w, r, err, id, orchestrators.PolicyInput{})
		return
	}
	http.Redirect(w, r, "/policies", http.StatusSeeOther)
}

func policyFormError(w http.ResponseWriter, r *http.Request, err error, id string, in orchestrators.PolicyInput) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	renderPolicies(w, r, status, err.Error(), id, map[string]string{
		"Title":    in.Title,
		"Body":     in.Body,
		"Category": in.Category,
	})
}
