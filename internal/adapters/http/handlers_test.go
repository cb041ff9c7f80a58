package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"coachdesk/internal/adapters/http/perf"
	accountStore "coachdesk/internal/adapters/storage/account"
	advisorStore "coachdesk/internal/adapters/storage/advisor"
	auditStore "coachdesk/internal/adapters/storage/audit"
	customerStore "coachdesk/internal/adapters/storage/customer"
	feedbackStore "coachdesk/internal/adapters/storage/feedback"
	mealStore "coachdesk/internal/adapters/storage/mealplan"
	outboxStore "coachdesk/internal/adapters/storage/outbox"
	planStore "coachdesk/internal/adapters/storage/plan"
	policyStore "coachdesk/internal/adapters/storage/policy"
	"coachdesk/internal/adapters/storage/storagetest"
	workoutStore "coachdesk/internal/adapters/storage/workoutplan"
	"coachdesk/internal/application/orchestrators"
	domainAccount "coachdesk/internal/domain/account"
	"coachdesk/internal/domain/mealplan"
	domainPlan "coachdesk/internal/domain/plan"
)

const testPassword = "correct horse battery"

// setupServer wires every store onto a fresh in-memory database and returns the full handler chain.
func setupServer(t *testing.T) (http.Handler, *sql.DB) {
	t.Helper()
	db := storagetest.Open(t)
	s := &Stores{
		AccountStore:  accountStore.NewSQLiteStore(db),
		CustomerStore: customerStore.NewSQLiteStore(db),
		MealStore:     mealStore.NewSQLiteStore(db),
		WorkoutStore:  workoutStore.NewSQLiteStore(db),
		PlanStore:     planStore.NewSQLiteStore(db),
		FeedbackStore: feedbackStore.NewSQLiteStore(db),
		PolicyStore:   policyStore.NewSQLiteStore(db),
		AdvisorStore:  advisorStore.NewSQLiteStore(db),
		AuditStore:    auditStore.NewSQLiteStore(db),
		OutboxStore:   outboxStore.NewSQLiteStore(db),
	}
	h := NewMux(Options{
		CSRFKey:     bytes.Repeat([]byte("k"), 32),
		JWTKey:      []byte("test-signing-key-test-signing-key"),
		SessionTTL:  time.Hour,
		TokenTTL:    time.Hour,
		EditorIdle:  time.Hour,
		SlowRequest: time.Second,
		RateLimit:   10000,
	}, s, perf.NewCollector(256))
	t.Cleanup(func() { SetOutboxProcessor(nil) })
	return h, db
}

func createAccount(t *testing.T, email, role string) string {
	t.Helper()
	id, err := orchestrators.ExecuteCreateAccount(context.Background(), orchestrators.CreateAccountInput{
		Email:    email,
		Password: testPassword,
		Role:     role,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, GenerateID: generateID, Now: time.Now})
	if err != nil {
		t.Fatalf("create account %s: %v", email, err)
	}
	return id
}

// apiCall sends a JSON request through h, with a bearer token when token is non-empty.
func apiCall(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	rec := apiCall(t, h, "POST", "/api/login", "", map[string]string{"email": email, "password": testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	decode(t, rec, &out)
	if out.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return out.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d: %s", rec.Code, want, rec.Body.String())
	}
}

func seedMealDay(t *testing.T, customerID string, day int, calories ...int) {
	t.Helper()
	var entries []mealplan.Entry
	for _, c := range calories {
		entries = append(entries, mealplan.Entry{MealType: mealplan.MealLunch, Calories: c, Foods: []mealplan.Food{}})
	}
	if err := stores.MealStore.ReplaceDay(context.Background(), customerID, 1, day, entries); err != nil {
		t.Fatalf("seed meal day: %v", err)
	}
}

func TestAPILogin(t *testing.T) {
	h, _ := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)

	token := login(t, h, "coach@example.com")
	expectStatus(t, apiCall(t, h, "GET", "/api/customers", token, nil), http.StatusOK)
	expectStatus(t, apiCall(t, h, "GET", "/api/customers", "", nil), http.StatusUnauthorized)
	expectStatus(t, apiCall(t, h, "GET", "/api/customers", "not-a-token", nil), http.StatusUnauthorized)

	rec := apiCall(t, h, "POST", "/api/login", "", map[string]string{"email": "coach@example.com", "password": "wrong password!"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestAPICustomers(t *testing.T) {
	h, db := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")
	storagetest.InsertCustomer(t, db, "c1", "active")
	storagetest.InsertCustomer(t, db, "c2", "paused")

	rec := apiCall(t, h, "GET", "/api/customers?status=paused", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var list struct {
		Customers []struct {
			ID string `json:"id"`
		} `json:"customers"`
	}
	decode(t, rec, &list)
	if len(list.Customers) != 1 || list.Customers[0].ID != "c2" {
		t.Errorf("customers = %+v, want only c2", list.Customers)
	}

	rec = apiCall(t, h, "GET", "/api/customers/c1", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var profile struct {
		Profile struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"profile"`
	}
	decode(t, rec, &profile)
	if profile.Profile.ID != "c1" || profile.Profile.Name != "Customer c1" {
		t.Errorf("profile = %+v", profile.Profile)
	}

	expectStatus(t, apiCall(t, h, "GET", "/api/customers/missing", token, nil), http.StatusNotFound)
}

func TestAPISaveMealDay(t *testing.T) {
	h, db := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")
	storagetest.InsertCustomer(t, db, "c1", "active")
	seedMealDay(t, "c1", 1, 300, 500)

	day := map[string]any{
		"checkpointNumber": 1,
		"entries": []map[string]any{{
			"mealType": "breakfast",
			"calories": 420,
			"foods":    []map[string]any{{"name": "Oats", "quantity": "80g", "calories": 300}},
		}},
	}
	rec := apiCall(t, h, "PUT", "/api/customers/c1/meals/days/1", token, day)
	expectStatus(t, rec, http.StatusOK)
	var view struct {
		Days    []int            `json:"days"`
		Entries []mealplan.Entry `json:"entries"`
	}
	decode(t, rec, &view)
	if len(view.Entries) != 1 {
		t.Fatalf("entries = %d, want the day replaced by 1", len(view.Entries))
	}
	if got := view.Entries[0]; got.UserID != "c1" || got.DayNumber != 1 || got.Calories != 420 || len(got.Foods) != 1 {
		t.Errorf("stored entry = %+v", got)
	}

	t.Run("empty day is rejected", func(t *testing.T) {
		rec := apiCall(t, h, "PUT", "/api/customers/c1/meals/days/1", token, map[string]any{"checkpointNumber": 1, "entries": []any{}})
		expectStatus(t, rec, http.StatusBadRequest)
	})
	t.Run("invalid meal type is rejected", func(t *testing.T) {
		bad := map[string]any{"checkpointNumber": 1, "entries": []map[string]any{{"mealType": "brunch"}}}
		expectStatus(t, apiCall(t, h, "PUT", "/api/customers/c1/meals/days/1", token, bad), http.StatusBadRequest)
	})
	t.Run("entry ID copied from another day", func(t *testing.T) {
		copied := map[string]any{"checkpointNumber": 1, "entries": []map[string]any{{
			"id": view.Entries[0].ID, "mealType": "dinner", "calories": 600, "foods": []any{},
		}}}
		rec := apiCall(t, h, "PUT", "/api/customers/c1/meals/days/2", token, copied)
		expectStatus(t, rec, http.StatusOK)
		var after struct {
			Entries []mealplan.Entry `json:"entries"`
		}
		decode(t, rec, &after)
		if len(after.Entries) != 2 || after.Entries[0].ID != view.Entries[0].ID || after.Entries[1].ID == view.Entries[0].ID {
			t.Errorf("entries after copy = %+v", after.Entries)
		}
	})
	t.Run("unknown customer", func(t *testing.T) {
		expectStatus(t, apiCall(t, h, "PUT", "/api/customers/nobody/meals/days/1", token, day), http.StatusNotFound)
	})
	t.Run("unknown field in body", func(t *testing.T) {
		bad := map[string]any{"checkpointNumber": 1, "entries": []any{}, "extra": true}
		expectStatus(t, apiCall(t, h, "PUT", "/api/customers/c1/meals/days/1", token, bad), http.StatusBadRequest)
	})
}

func TestAPIReviewPlan(t *testing.T) {
	h, db := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")
	storagetest.InsertCustomer(t, db, "c1", "active")
	err := stores.PlanStore.Save(context.Background(), domainPlan.Plan{
		ID:               "p1",
		CustomerID:       "c1",
		Kind:             domainPlan.KindMeal,
		CheckpointNumber: 1,
		Status:           domainPlan.StatusPending,
		GeneratedAt:      time.Now().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("seed plan: %v", err)
	}

	expectStatus(t, apiCall(t, h, "POST", "/api/plans/p1/approve", token, map[string]string{"comment": "  "}), http.StatusBadRequest)

	rec := apiCall(t, h, "POST", "/api/plans/p1/approve", token, map[string]string{"comment": "Looks balanced"})
	expectStatus(t, rec, http.StatusOK)
	var p domainPlan.Plan
	decode(t, rec, &p)
	if p.Status != domainPlan.StatusApproved || p.ReviewComment != "Looks balanced" {
		t.Errorf("plan = %+v", p)
	}

	expectStatus(t, apiCall(t, h, "POST", "/api/plans/p1/reject", token, map[string]string{"comment": "Changed my mind"}), http.StatusConflict)
	expectStatus(t, apiCall(t, h, "POST", "/api/plans/nope/approve", token, map[string]string{"comment": "x"}), http.StatusNotFound)

	pending, err := stores.OutboxStore.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("outbox entries = %d, want 1 notification", len(pending))
	}
	events, err := stores.AuditStore.List(context.Background(), auditStore.Filter{ResourceID: "p1"}, 10)
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("audit events for p1 = %d, want 1", len(events))
	}
}

// editorReply mirrors the editor API response.
type editorReply struct {
	Checkpoint int `json:"checkpoint"`
	Editor     struct {
		State       string           `json:"state"`
		Days        []int            `json:"days"`
		SelectedDay int              `json:"selectedDay"`
		CanPrev     bool             `json:"canPrev"`
		CanNext     bool             `json:"canNext"`
		Rows        []mealplan.Entry `json:"rows"`
	} `json:"editor"`
}

func TestEditorAPI(t *testing.T) {
	h, db := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")
	storagetest.InsertCustomer(t, db, "c1", "active")
	seedMealDay(t, "c1", 1, 300)
	seedMealDay(t, "c1", 2, 450, 650)

	call := func(method, path string, body any, want int) editorReply {
		t.Helper()
		rec := apiCall(t, h, method, "/api/editor/meals/c1"+path, token, body)
		expectStatus(t, rec, want)
		var out editorReply
		if want == http.StatusOK {
			decode(t, rec, &out)
		}
		return out
	}

	// Actions before the screen is opened have nothing to act on.
	call("POST", "/edit", nil, http.StatusNotFound)

	got := call("POST", "", nil, http.StatusOK)
	if got.Editor.State != "viewing" || got.Editor.SelectedDay != 1 || len(got.Editor.Days) != 2 || got.Checkpoint != 1 {
		t.Fatalf("opened editor = %+v", got)
	}
	if got.Editor.CanPrev || !got.Editor.CanNext {
		t.Errorf("navigation at first day: canPrev=%v canNext=%v", got.Editor.CanPrev, got.Editor.CanNext)
	}

	call("POST", "/field", map[string]any{"row": 0, "field": "calories", "value": "1"}, http.StatusConflict)
	call("POST", "/step", map[string]string{"direction": "sideways"}, http.StatusBadRequest)
	call("POST", "/select", map[string]int{"day": 9}, http.StatusBadRequest)

	got = call("POST", "/step", map[string]string{"direction": "next"}, http.StatusOK)
	if got.Editor.SelectedDay != 2 || len(got.Editor.Rows) != 2 {
		t.Fatalf("after next: day %d with %d rows", got.Editor.SelectedDay, len(got.Editor.Rows))
	}
	// Stepping past the last day is a no-op.
	got = call("POST", "/step", map[string]string{"direction": "next"}, http.StatusOK)
	if got.Editor.SelectedDay != 2 {
		t.Errorf("selected day moved past the end: %d", got.Editor.SelectedDay)
	}

	got = call("POST", "/edit", nil, http.StatusOK)
	if got.Editor.State != "editing" {
		t.Fatalf("state = %s, want editing", got.Editor.State)
	}
	call("POST", "/edit", nil, http.StatusConflict)
	call("POST", "/field", map[string]any{"row": 0, "field": "calories", "value": "lots"}, http.StatusBadRequest)
	call("POST", "/field", map[string]any{"row": 7, "field": "calories", "value": "1"}, http.StatusBadRequest)

	got = call("POST", "/field", map[string]any{"row": 0, "field": "calories", "value": "480"}, http.StatusOK)
	if got.Editor.Rows[0].Calories != 480 {
		t.Errorf("row 0 calories = %d, want 480", got.Editor.Rows[0].Calories)
	}
	got = call("POST", "/rows/0/foods", nil, http.StatusOK)
	if len(got.Editor.Rows[0].Foods) != 1 {
		t.Errorf("foods after add = %d, want 1", len(got.Editor.Rows[0].Foods))
	}
	call("POST", "/field", map[string]any{"row": 0, "field": "foods.0.name", "value": "Rice"}, http.StatusOK)
	got = call("DELETE", "/rows/1", nil, http.StatusOK)
	if len(got.Editor.Rows) != 1 {
		t.Fatalf("rows after remove = %d, want 1", len(got.Editor.Rows))
	}

	got = call("POST", "/save", nil, http.StatusOK)
	if got.Editor.State != "viewing" || got.Editor.SelectedDay != 2 {
		t.Errorf("after save: state %s day %d", got.Editor.State, got.Editor.SelectedDay)
	}

	stored, err := stores.MealStore.ListByUser(context.Background(), "c1", 1)
	if err != nil {
		t.Fatalf("list meals: %v", err)
	}
	var day2 []mealplan.Entry
	for _, e := range stored {
		if e.DayNumber == 2 {
			day2 = append(day2, e)
		}
	}
	if len(day2) != 1 || day2[0].Calories != 480 || len(day2[0].Foods) != 1 || day2[0].Foods[0].Name != "Rice" {
		t.Errorf("stored day 2 = %+v", day2)
	}

	t.Run("workouts have no food lists", func(t *testing.T) {
		expectStatus(t, apiCall(t, h, "POST", "/api/editor/workouts/c1", token, nil), http.StatusOK)
		expectStatus(t, apiCall(t, h, "POST", "/api/editor/workouts/c1/rows/0/foods", token, nil), http.StatusNotFound)
	})
	t.Run("unknown kind", func(t *testing.T) {
		expectStatus(t, apiCall(t, h, "POST", "/api/editor/snacks/c1", token, nil), http.StatusNotFound)
	})
	t.Run("editors are per login", func(t *testing.T) {
		other := login(t, h, "coach@example.com")
		expectStatus(t, apiCall(t, h, "GET", "/api/editor/meals/c1", other, nil), http.StatusNotFound)
	})
}

func TestAPIPolicies(t *testing.T) {
	h, _ := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")

	rec := apiCall(t, h, "POST", "/api/policies", token, map[string]any{"title": "Refunds", "body": "**No** refunds", "category": "Billing"})
	expectStatus(t, rec, http.StatusCreated)
	var created struct {
		ID     string `json:"id"`
		Active bool   `json:"active"`
	}
	decode(t, rec, &created)
	if created.ID == "" || !created.Active {
		t.Fatalf("created = %+v", created)
	}

	expectStatus(t, apiCall(t, h, "POST", "/api/policies", token, map[string]any{"title": "", "body": "x"}), http.StatusBadRequest)

	rec = apiCall(t, h, "PUT", "/api/policies/"+created.ID, token, map[string]any{"title": "Refunds", "body": "Ask us", "active": false})
	expectStatus(t, rec, http.StatusOK)

	rec = apiCall(t, h, "GET", "/api/policies?active=1", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var list struct {
		Policies []struct {
			ID string `json:"id"`
		} `json:"policies"`
	}
	decode(t, rec, &list)
	if len(list.Policies) != 0 {
		t.Errorf("active policies = %d, want 0 after deactivation", len(list.Policies))
	}

	expectStatus(t, apiCall(t, h, "DELETE", "/api/policies/"+created.ID, token, nil), http.StatusNoContent)
	expectStatus(t, apiCall(t, h, "DELETE", "/api/policies/"+created.ID, token, nil), http.StatusNotFound)
	expectStatus(t, apiCall(t, h, "PUT", "/api/policies/"+created.ID, token, map[string]any{"title": "t", "body": "b"}), http.StatusNotFound)
}

func TestAPIAdvisorSettings(t *testing.T) {
	h, _ := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")

	rec := apiCall(t, h, "GET", "/api/advisor/settings", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var s struct {
		Timezone     string `json:"timezone"`
		ItemsPerPage int    `json:"itemsPerPage"`
	}
	decode(t, rec, &s)
	if s.Timezone != "UTC" || s.ItemsPerPage != 20 {
		t.Errorf("default settings = %+v", s)
	}

	bad := map[string]any{"timezone": "Mars/Olympus", "itemsPerPage": 20}
	expectStatus(t, apiCall(t, h, "PUT", "/api/advisor/settings", token, bad), http.StatusBadRequest)

	good := map[string]any{"timezone": "Pacific/Auckland", "itemsPerPage": 50, "notifyNewFeedback": true}
	expectStatus(t, apiCall(t, h, "PUT", "/api/advisor/settings", token, good), http.StatusOK)
	decode(t, apiCall(t, h, "GET", "/api/advisor/settings", token, nil), &s)
	if s.Timezone != "Pacific/Auckland" || s.ItemsPerPage != 50 {
		t.Errorf("saved settings = %+v", s)
	}

	profile := map[string]any{"displayName": "Sam", "specialties": []string{"strength", " mobility "}}
	rec = apiCall(t, h, "PUT", "/api/advisor/profile", token, profile)
	expectStatus(t, rec, http.StatusOK)
	var p struct {
		Specialties []string `json:"specialties"`
	}
	decode(t, rec, &p)
	if len(p.Specialties) != 2 || p.Specialties[1] != "mobility" {
		t.Errorf("specialties = %q", p.Specialties)
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h, _ := setupServer(t)
	createAccount(t, "admin@example.com", domainAccount.RoleAdmin)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	adminToken := login(t, h, "admin@example.com")
	coachToken := login(t, h, "coach@example.com")

	for _, path := range []string{"/api/admin/perf", "/api/admin/audit", "/api/admin/outbox"} {
		expectStatus(t, apiCall(t, h, "GET", path, coachToken, nil), http.StatusForbidden)
		expectStatus(t, apiCall(t, h, "GET", path, adminToken, nil), http.StatusOK)
	}

	// Without a running worker a manual retry cannot be served.
	expectStatus(t, apiCall(t, h, "POST", "/api/admin/outbox/x/retry", adminToken, nil), http.StatusServiceUnavailable)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing customer", customerStore.ErrNotFound, http.StatusNotFound},
		{"decided plan", orchestrators.InputError{Err: domainPlan.ErrAlreadyDecided}, http.StatusConflict},
		{"empty day", orchestrators.InputError{Err: orchestrators.ErrEmptyDay}, http.StatusBadRequest},
		{"store failure", sql.ErrConnDone, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAPIPlanExport(t *testing.T) {
	h, db := setupServer(t)
	createAccount(t, "coach@example.com", domainAccount.RoleAdvisor)
	token := login(t, h, "coach@example.com")
	storagetest.InsertCustomer(t, db, "c1", "active")
	seedMealDay(t, "c1", 1, 350, 700)

	rec := apiCall(t, h, "GET", "/api/customers/c1/export?format=csv", token, nil)
	expectStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "plan-c1-checkpoint-1.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if lines := strings.Count(strings.TrimSpace(rec.Body.String()), "\n"); lines != 2 {
		t.Errorf("csv has %d data rows, want 2", lines)
	}

	rec = apiCall(t, h, "GET", "/api/customers/c1/export", token, nil)
	expectStatus(t, rec, http.StatusOK)
	var body struct {
		Checkpoint int `json:"checkpoint"`
		Meals      []struct {
			Calories int `json:"calories"`
		} `json:"meals"`
	}
	decode(t, rec, &body)
	if body.Checkpoint != 1 || len(body.Meals) != 2 {
		t.Errorf("json export = %+v", body)
	}

	expectStatus(t, apiCall(t, h, "GET", "/api/customers/c1/export?format=xlsx", token, nil), http.StatusBadRequest)
	expectStatus(t, apiCall(t, h, "GET", "/api/customers/nobody/export", token, nil), http.StatusNotFound)
}
