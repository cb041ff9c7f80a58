package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "coachdesk/internal/adapters/http"
	"coachdesk/internal/adapters/http/perf"
	"coachdesk/internal/adapters/storage"
	accountStore "coachdesk/internal/adapters/storage/account"
	advisorStore "coachdesk/internal/adapters/storage/advisor"
	auditStore "coachdesk/internal/adapters/storage/audit"
	customerStore "coachdesk/internal/adapters/storage/customer"
	feedbackStore "coachdesk/internal/adapters/storage/feedback"
	mealStore "coachdesk/internal/adapters/storage/mealplan"
	outboxStore "coachdesk/internal/adapters/storage/outbox"
	planStore "coachdesk/internal/adapters/storage/plan"
	policyStore "coachdesk/internal/adapters/storage/policy"
	workoutStore "coachdesk/internal/adapters/storage/workoutplan"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/domain/account"
	"coachdesk/internal/domain/customer"
	"coachdesk/internal/domain/mealplan"
)

const (
	advisorEmail    = "advisor@test.com"
	advisorPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL   string
	DB        *sql.DB
	Server    *http.Server
	PW        *playwright.Playwright
	Browser   playwright.Browser
	Stores    *web.Stores
	AdvisorID string
}

// newTestApp creates a fully wired app on a temp SQLite DB and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := storage.MigrateDB(db, dbPath); err != nil {
		t.Fatalf("failed to migrate test DB: %v", err)
	}

	stores := &web.Stores{
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

	ctx := context.Background()
	advisorID, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		Email:    advisorEmail,
		Password: advisorPassword,
		Role:     account.RoleAdvisor,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, GenerateID: uuid.NewString, Now: time.Now})
	if err != nil {
		t.Fatalf("failed to create advisor: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	handler := web.NewMux(web.Options{
		CSRFKey:        []byte("browser-test-csrf-key-32-bytes!!"),
		JWTKey:         []byte("browser-test-jwt-key"),
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		SessionTTL:     time.Hour,
		TokenTTL:       time.Hour,
		EditorIdle:     time.Hour,
		SlowRequest:    time.Second,
		RateLimit:      1000,
	}, stores, perf.NewCollector(1024))
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: handler,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL:   baseURL,
		DB:        db,
		Server:    srv,
		PW:        pw,
		Browser:   browser,
		Stores:    stores,
		AdvisorID: advisorID,
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})
	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in as the seeded advisor and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(advisorEmail); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(advisorPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// seedCustomer stores an active customer with one meal per given calorie value on each listed day.
func (a *testApp) seedCustomer(t *testing.T, id string, days map[int][]int) {
	t.Helper()
	ctx := context.Background()
	if err := a.Stores.CustomerStore.Save(ctx, customer.Customer{
		ID: id, Name: "Customer " + id, Email: id + "@example.com",
		Status: customer.StatusActive, CurrentCheckpoint: 1, CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	for day, calories := range days {
		var entries []mealplan.Entry
		for _, kcal := range calories {
			e := mealplan.NewEntry(id, day, 1)
			e.MealType = mealplan.MealLunch
			e.Calories = kcal
			entries = append(entries, e)
		}
		if err := a.Stores.MealStore.ReplaceDay(ctx, id, 1, day, entries); err != nil {
			t.Fatalf("failed to seed day %d: %v", day, err)
		}
	}
}
