package web

import (
	"html/template"
	"net/http"

	"coachdesk/internal/adapters/http/middleware"
	customerStore "coachdesk/internal/adapters/storage/customer"
	"coachdesk/internal/application/listutil"
	"coachdesk/internal/application/projections"
	domainCustomer "coachdesk/internal/domain/customer"
)

// customerListQuery reads list parameters from the URL. Without a per_page
// the advisor's ItemsPerPage setting applies. The parsed parameters are
// returned too so links can carry them to other pages.
func customerListQuery(r *http.Request) (projections.GetCustomerListQuery, listutil.ListParams) {
	q := r.URL.Query()
	sess, _ := middleware.GetSessionFromContext(r.Context())
	fallback := listutil.DefaultPerPage
	if settings, err := projections.QueryGetAdvisorSettings(r.Context(), sess.AccountID, advisorDeps()); err == nil {
		fallback = settings.ItemsPerPage
	}

	lp := listutil.ParseListParams(q, fallback, customerStore.SortColumns, []string{"status", "mine"})
	query := projections.GetCustomerListQuery{
		Status:  lp.Filters["status"],
		Search:  lp.Search,
		Sort:    lp.Sort,
		Dir:     lp.Dir,
		Page:    lp.Page,
		PerPage: lp.PerPage,
	}
	if lp.Filters["mine"] == "1" {
		query.AdvisorID = sess.AccountID
	}
	return query, lp
}

func customerListDeps() projections.GetCustomerListDeps {
	return projections.GetCustomerListDeps{CustomerStore: stores.CustomerStore}
}

func customerProfileDeps() projections.GetCustomerProfileDeps {
	return projections.GetCustomerProfileDeps{
		CustomerStore: stores.CustomerStore,
		PlanStore:     stores.PlanStore,
		MealStore:     stores.MealStore,
		WorkoutStore:  stores.WorkoutStore,
		Now:           timeNow,
	}
}

// handleCustomers renders the paginated customer list (GET /customers).
func handleCustomers(w http.ResponseWriter, r *http.Request) {
	query, lp := customerListQuery(r)
	result, err := projections.QueryGetCustomerList(r.Context(), query, customerListDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	sortLinks := make(map[string]template.URL, len(customerStore.SortColumns))
	for _, col := range customerStore.SortColumns {
		sortLinks[col] = template.URL(lp.SortedBy(col).Encode(1))
	}
	renderTemplate(w, r, "customers.html", map[string]any{
		"Customers":  result.Customers,
		"PageInfo":   result.Page,
		"PrevQuery":  template.URL(lp.Encode(result.Page.Page - 1)),
		"NextQuery":  template.URL(lp.Encode(result.Page.Page + 1)),
		"SortLinks":  sortLinks,
		"Sort":       lp.Sort,
		"Dir":        lp.Dir,
		"Status":     query.Status,
		"Search":     query.Search,
		"Mine":       query.AdvisorID != "",
		"Statuses":   domainCustomer.Statuses,
		"HasFilters": query.Status != "" || query.Search != "" || query.AdvisorID != "",
	})
}

// handleAPICustomers returns one page of customers (GET /api/customers).
func handleAPICustomers(w http.ResponseWriter, r *http.Request) {
	query, _ := customerListQuery(r)
	result, err := projections.QueryGetCustomerList(r.Context(), query, customerListDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCustomerProfile renders one customer's normalized profile (GET /customers/{id}).
func handleCustomerProfile(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetCustomerProfile(r.Context(), projections.GetCustomerProfileQuery{
		CustomerID: r.PathValue("id"),
	}, customerProfileDeps())
	if err != nil {
		renderLoadError(w, r, err)
		return
	}
	renderTemplate(w, r, "customer_profile.html", map[string]any{
		"Profile":            result.Profile,
		"Plans":              result.Plans,
		"MealCheckpoints":    result.MealCheckpoints,
		"WorkoutCheckpoints": result.WorkoutCheckpoints,
	})
}

// handleAPICustomer returns one customer's normalized profile (GET /api/customers/{id}).
func handleAPICustomer(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetCustomerProfile(r.Context(), projections.GetCustomerProfileQuery{
		CustomerID: r.PathValue("id"),
	}, customerProfileDeps())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
