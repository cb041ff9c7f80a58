package web

import (
	"net/http"

	"coachdesk/internal/adapters/http/middleware"
	domainAccount "coachdesk/internal/domain/account"
)

func registerRoutes(mux *http.ServeMux) {
	staff := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(domainAccount.RoleAdmin, domainAccount.RoleAdvisor)(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireRole(domainAccount.RoleAdmin)(h)
	}

	// JSON API
	mux.HandleFunc("POST /api/login", handleAPILogin)
	mux.Handle("GET /api/customers", staff(handleAPICustomers))
	mux.Handle("GET /api/customers/{id}", staff(handleAPICustomer))
	mux.Handle("GET /api/customers/{id}/meals", staff(handleAPIMealPlan))
	mux.Handle("PUT /api/customers/{id}/meals/days/{day}", staff(handleAPISaveMealDay))
	mux.Handle("GET /api/customers/{id}/workouts", staff(handleAPIWorkoutPlan))
	mux.Handle("PUT /api/customers/{id}/workouts/days/{day}", staff(handleAPISaveWorkoutDay))
	mux.Handle("GET /api/customers/{id}/export", staff(handleAPIPlanExport))
	mux.Handle("GET /api/plans", staff(handleAPIPlans))
	mux.Handle("POST /api/plans/{id}/approve", staff(handleAPIReviewPlan(reviewApprove)))
	mux.Handle("POST /api/plans/{id}/reject", staff(handleAPIReviewPlan(reviewReject)))
	mux.Handle("GET /api/policies", staff(handleAPIPolicies))
	mux.Handle("POST /api/policies", staff(handleAPICreatePolicy))
	mux.Handle("PUT /api/policies/{id}", staff(handleAPIUpdatePolicy))
	mux.Handle("DELETE /api/policies/{id}", staff(handleAPIDeletePolicy))
	mux.Handle("GET /api/feedback", staff(handleAPIFeedback))
	mux.Handle("POST /api/feedback/{id}/review", staff(handleAPIReviewFeedback))
	mux.Handle("GET /api/advisor/profile", staff(handleAPIAdvisorProfile))
	mux.Handle("PUT /api/advisor/profile", staff(handleAPIUpdateAdvisorProfile))
	mux.Handle("GET /api/advisor/settings", staff(handleAPIAdvisorSettings))
	mux.Handle("PUT /api/advisor/settings", staff(handleAPIUpdateAdvisorSettings))
	mux.Handle("PUT /api/advisor/password", staff(handleAPIChangePassword))
	mux.Handle("GET /api/analytics", staff(handleAPIAnalytics))

	// Editor API: one open screen per (login, kind, customer)
	mux.Handle("POST /api/editor/{kind}/{customerID}", staff(editorOp(opOpen)))
	mux.Handle("GET /api/editor/{kind}/{customerID}", staff(editorOp(opState)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/select", staff(editorOp(opSelect)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/step", staff(editorOp(opStep)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/edit", staff(editorOp(opEdit)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/field", staff(editorOp(opField)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/rows", staff(editorOp(opAppend)))
	mux.Handle("DELETE /api/editor/{kind}/{customerID}/rows/{index}", staff(editorOp(opRemove)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/rows/{index}/foods", staff(editorOp(opAddFood)))
	mux.Handle("DELETE /api/editor/{kind}/{customerID}/rows/{index}/foods/{food}", staff(editorOp(opRemoveFood)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/save", staff(editorOp(opSave)))
	mux.Handle("POST /api/editor/{kind}/{customerID}/cancel", staff(editorOp(opCancel)))

	// Admin
	mux.Handle("GET /api/admin/perf", admin(handleAdminPerf))
	mux.Handle("GET /api/admin/audit", admin(handleAdminAudit))
	mux.Handle("GET /api/admin/outbox", admin(handleAdminOutbox))
	mux.Handle("POST /api/admin/outbox/{id}/retry", admin(handleAdminOutboxRetry))

	// HTML screens
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)
	mux.Handle("GET /dashboard", staff(handleDashboard))
	mux.Handle("GET /customers", staff(handleCustomers))
	mux.Handle("GET /customers/{id}", staff(handleCustomerProfile))
	mux.Handle("GET /customers/{id}/meals", staff(handleMealScreen))
	mux.Handle("POST /customers/{id}/meals", staff(handleMealScreenAction))
	mux.Handle("GET /customers/{id}/workouts", staff(handleWorkoutScreen))
	mux.Handle("POST /customers/{id}/workouts", staff(handleWorkoutScreenAction))
	mux.Handle("GET /plans", staff(handlePlans))
	mux.Handle("POST /plans/{id}/review", staff(handleReviewPlan))
	mux.Handle("GET /feedback", staff(handleFeedback))
	mux.Handle("POST /feedback/{id}/review", staff(handleReviewFeedback))
	mux.Handle("GET /policies", staff(handlePolicies))
	mux.Handle("POST /policies", staff(handleCreatePolicy))
	mux.Handle("POST /policies/{id}", staff(handleUpdatePolicy))
	mux.Handle("POST /policies/{id}/delete", staff(handleDeletePolicy))
	mux.Handle("GET /settings", staff(handleSettings))
	mux.Handle("POST /settings/profile", staff(handleUpdateProfile))
	mux.Handle("POST /settings/preferences", staff(handleUpdateSettings))
	mux.Handle("POST /settings/password", staff(handleChangePassword))
}
