package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"coachdesk/internal/adapters/http/middleware"
	advisorStore "coachdesk/internal/adapters/storage/advisor"
	customerStore "coachdesk/internal/adapters/storage/customer"
	feedbackStore "coachdesk/internal/adapters/storage/feedback"
	planStore "coachdesk/internal/adapters/storage/plan"
	policyStore "coachdesk/internal/adapters/storage/policy"
	"coachdesk/internal/application/dayeditor"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/application/projections"
	domainAccount "coachdesk/internal/domain/account"
	domainFeedback "coachdesk/internal/domain/feedback"
	domainPlan "coachdesk/internal/domain/plan"
)

//go:embed templates/*.html
var templateFS embed.FS

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps an application error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, customerStore.ErrNotFound),
		errors.Is(err, planStore.ErrNotFound),
		errors.Is(err, feedbackStore.ErrNotFound),
		errors.Is(err, policyStore.ErrNotFound),
		errors.Is(err, advisorStore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrators.ErrTerminalEntry),
		errors.Is(err, dayeditor.ErrSaveInFlight),
		errors.Is(err, dayeditor.ErrAlreadyEditing),
		errors.Is(err, dayeditor.ErrNotEditing),
		errors.Is(err, dayeditor.ErrNoDays),
		errors.Is(err, domainPlan.ErrAlreadyDecided),
		errors.Is(err, domainFeedback.ErrAlreadyReviewed):
		return http.StatusConflict
	case errors.Is(err, dayeditor.ErrUnknownDay),
		errors.Is(err, dayeditor.ErrRowOutOfRange),
		errors.Is(err, dayeditor.ErrInvalidDirection),
		orchestrators.IsInputError(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as JSON with its mapped status. Server errors are
// logged and replaced by a generic message.
func respondError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("internal_error", "error", err.Error())
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// actorFrom builds the audit actor for the authenticated caller.
// PRE: the route requires a session
func actorFrom(r *http.Request) orchestrators.Actor {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	return orchestrators.Actor{ID: sess.AccountID, Email: sess.Email, Role: sess.Role, IP: middleware.ClientIP(r)}
}

// renderTemplate renders a page inside the shared layout.
func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	funcMap := template.FuncMap{
		"currentRole":  func() string { return sess.Role },
		"currentEmail": func() string { return sess.Email },
		"isLoggedIn":   func() bool { return ok },
		"isAdmin":      func() bool { return ok && sess.Role == domainAccount.RoleAdmin },
		"csrfToken":    func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 Jan 2006 15:04")
		},
		"join": strings.Join,
	}

	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+templateName)
	if err != nil {
		internalError(w, fmt.Errorf("parse template %s: %w", templateName, err))
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render template %s: %w", templateName, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderLoadError shows the fixed fetch-failure screen with a retry link.
func renderLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("page_load_failed", "path", r.URL.Path, "error", err.Error())
	}
	renderTemplateStatus(w, r, status, "error.html", map[string]any{
		"NotFound": status == http.StatusNotFound,
		"Retry":    r.URL.RequestURI(),
	})
}

// handleRoot sends signed-in staff to the dashboard and everyone else to login.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func loginDeps() orchestrators.LoginDeps {
	return orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Now:          timeNow,
	}
}

// handleLoginPage renders the login form (GET /login).
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{})
}

// handleLogin checks the submitted credentials and starts a cookie session (POST /login).
// POST: on success a session cookie is set and the browser is sent to the dashboard
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	email := r.FormValue("email")
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    email,
		Password: r.FormValue("password"),
		IP:       middleware.ClientIP(r),
	}, loginDeps())
	if err != nil {
		msg := "Invalid email or password."
		if errors.Is(err, orchestrators.ErrAccountLocked) {
			msg = "Too many failed attempts. Try again in a few minutes."
		} else if !errors.Is(err, orchestrators.ErrInvalidCredentials) {
			internalError(w, err)
			return
		}
		renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
			"Error": msg,
			"Email": email,
		})
		return
	}

	token, err := sessions.Create(result.AccountID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token, sessionTTL, secureCookies)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleAPILogin exchanges credentials for a bearer token (POST /api/login).
func handleAPILogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    body.Email,
		Password: body.Password,
		IP:       middleware.ClientIP(r),
	}, loginDeps())
	switch {
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, orchestrators.ErrAccountLocked):
		writeError(w, http.StatusTooManyRequests, err.Error())
		return
	case err != nil:
		respondError(w, err)
		return
	}

	token, expires, err := tokens.Issue(result.AccountID, result.Email, result.Role)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresAt": expires,
		"role":      result.Role,
	})
}

// handleLogout ends the cookie session and drops its open editors (POST /logout).
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := middleware.SessionCookie(r); ok {
		sessions.Delete(token)
		dropEditors(token)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "account_id", sess.AccountID)
	}
	middleware.ClearSessionCookie(w, secureCookies)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		CustomerStore: stores.CustomerStore,
		PlanStore:     stores.PlanStore,
		FeedbackStore: stores.FeedbackStore,
		MealStore:     stores.MealStore,
		Now:           timeNow,
	}
}

// handleDashboard renders the analytics widgets (GET /dashboard).
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(), dashboardDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Stats": result,
	})
}

// handleAPIAnalytics returns the dashboard widgets as JSON (GET /api/analytics).
func handleAPIAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(), dashboardDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
