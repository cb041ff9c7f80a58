package web

import (
	"net/http"
	"strconv"
	"strings"

	"coachdesk/internal/adapters/http/middleware"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
	domainAccount "coachdesk/internal/domain/account"
	domainAdvisor "coachdesk/internal/domain/advisor"
)

func advisorDeps() projections.GetAdvisorDeps {
	return projections.GetAdvisorDeps{AdvisorStore: stores.AdvisorStore}
}

func advisorWriteDeps() orchestrators.AdvisorDeps {
	return orchestrators.AdvisorDeps{
		AdvisorStore: stores.AdvisorStore,
		AuditStore:   stores.AuditStore,
		Now:          timeNow,
	}
}

func accountID(r *http.Request) string {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return sess.AccountID
}

// handleAPIAdvisorProfile returns the caller's profile (GET /api/advisor/profile).
func handleAPIAdvisorProfile(w http.ResponseWriter, r *http.Request) {
	p, err := projections.QueryGetAdvisorProfile(r.Context(), accountID(r), advisorDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleAPIUpdateAdvisorProfile saves the caller's profile (PUT /api/advisor/profile).
// Specialties arrive as a list and are stored through the same parser as the form.
func handleAPIUpdateAdvisorProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DisplayName string   `json:"displayName"`
		Bio         string   `json:"bio"`
		Specialties []string `json:"specialties"`
		Phone       string   `json:"phone"`
		AvatarURL   string   `json:"avatarUrl"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		DisplayName: body.DisplayName,
		Bio:         body.Bio,
		Specialties: strings.Join(body.Specialties, ","),
		Phone:       body.Phone,
		AvatarURL:   body.AvatarURL,
		Actor:       actorFrom(r),
	}, advisorWriteDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleAPIAdvisorSettings returns the caller's settings (GET /api/advisor/settings).
func handleAPIAdvisorSettings(w http.ResponseWriter, r *http.Request) {
	s, err := projections.QueryGetAdvisorSettings(r.Context(), accountID(r), advisorDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleAPIUpdateAdvisorSettings saves the caller's settings (PUT /api/advisor/settings).
func handleAPIUpdateAdvisorSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NotifyNewFeedback bool   `json:"notifyNewFeedback"`
		NotifyPlanReady   bool   `json:"notifyPlanReady"`
		Timezone          string `json:"timezone"`
		ItemsPerPage      int    `json:"itemsPerPage"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := orchestrators.ExecuteUpdateSettings(r.Context(), orchestrators.UpdateSettingsInput{
		NotifyNewFeedback: body.NotifyNewFeedback,
		NotifyPlanReady:   body.NotifyPlanReady,
		Timezone:          body.Timezone,
		ItemsPerPage:      body.ItemsPerPage,
		Actor:             actorFrom(r),
	}, advisorWriteDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleSettings renders the profile and preferences forms (GET /settings).
func handleSettings(w http.ResponseWriter, r *http.Request) {
	renderSettings(w, r, http.StatusOK, "", "")
}

// Settings page forms, used to place an error next to the form that caused it.
const (
	formProfile     = "profile"
	formPreferences = "preferences"
	formPassword    = "password"
)

func renderSettings(w http.ResponseWriter, r *http.Request, status int, form, formError string) {
	ctx := r.Context()
	profile, err := projections.QueryGetAdvisorProfile(ctx, accountID(r), advisorDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	settings, err := projections.QueryGetAdvisorSettings(ctx, accountID(r), advisorDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplateStatus(w, r, status, "settings.html", map[string]any{
		"Profile":     profile,
		"Settings":    settings,
		"Form":        form,
		"Error":       formError,
		"Saved":       r.URL.Query().Get("saved") == "1",
		"MinPerPage":  domainAdvisor.MinItemsPerPage,
		"MaxPerPage":  domainAdvisor.MaxItemsPerPage,
		"MinPassword": domainAccount.MinPasswordLen,
	})
}

// handleUpdateProfile saves the profile form (POST /settings/profile).
func handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	_, err := orchestrators.ExecuteUpdateProfile(r.Context(), orchestrators.UpdateProfileInput{
		DisplayName: r.FormValue("display_name"),
		Bio:         r.FormValue("bio"),
		Specialties: r.FormValue("specialties"),
		Phone:       r.FormValue("phone"),
		AvatarURL:   r.FormValue("avatar_url"),
		Actor:       actorFrom(r),
	}, advisorWriteDeps())
	if err != nil {
		settingsFormError(w, r, err, formProfile)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// handleUpdateSettings saves the preferences form (POST /settings/preferences).
func handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	perPage, _ := strconv.Atoi(r.FormValue("items_per_page"))
	_, err := orchestrators.ExecuteUpdateSettings(r.Context(), orchestrators.UpdateSettingsInput{
		NotifyNewFeedback: r.FormValue("notify_new_feedback") == "on",
		NotifyPlanReady:   r.FormValue("notify_plan_ready") == "on",
		Timezone:          r.FormValue("timezone"),
		ItemsPerPage:      perPage,
		Actor:             actorFrom(r),
	}, advisorWriteDeps())
	if err != nil {
		settingsFormError(w, r, err, formPreferences)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// handleChangePassword replaces the caller's password (POST /settings/password).
func handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if r.FormValue("new_password") != r.FormValue("confirm_password") {
		renderSettings(w, r, http.StatusBadRequest, formPassword, "new passwords do not match")
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		CurrentPassword: r.FormValue("current_password"),
		NewPassword:     r.FormValue("new_password"),
		Actor:           actorFrom(r),
	}, changePasswordDeps())
	if err != nil {
		settingsFormError(w, r, err, formPassword)
		return
	}
	http.Redirect(w, r, "/settings?saved=1", http.StatusSeeOther)
}

// handleAPIChangePassword replaces the caller's password (PUT /api/advisor/password).
func handleAPIChangePassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	err := orchestrators.ExecuteChangePassword(r.Context(), orchestrators.ChangePasswordInput{
		CurrentPassword: body.CurrentPassword,
		NewPassword:     body.NewPassword,
		Actor:           actorFrom(r),
	}, changePasswordDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func changePasswordDeps() orchestrators.ChangePasswordDeps {
	return orchestrators.ChangePasswordDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Now:          timeNow,
	}
}

func settingsFormError(w http.ResponseWriter, r *http.Request, err error, form string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		internalError(w, err)
		return
	}
	renderSettings(w, r, status, form, err.Error())
}
