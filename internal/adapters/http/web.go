package web

import (
	"log/slog"
	"net/http"
	"time"

	"coachdesk/internal/adapters/http/middleware"
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
	workoutStore "coachdesk/internal/adapters/storage/workoutplan"
	"coachdesk/internal/application/dayeditor"
	"coachdesk/internal/application/orchestrators"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/workoutplan"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore  accountStore.Store
	CustomerStore customerStore.Store
	MealStore     mealStore.Store
	WorkoutStore  workoutStore.Store
	PlanStore     planStore.Store
	FeedbackStore feedbackStore.Store
	PolicyStore   policyStore.Store
	AdvisorStore  advisorStore.Store
	AuditStore    auditStore.Store
	OutboxStore   outboxStore.Store
}

// Options carries the server settings the handlers need.
type Options struct {
	StaticDir      string
	CSRFKey        []byte // 32 bytes
	JWTKey         []byte
	SecureCookies  bool
	TrustedOrigins []string
	SessionTTL     time.Duration
	TokenTTL       time.Duration
	EditorIdle     time.Duration
	SlowRequest    time.Duration
	RateLimit      int // requests per second per IP
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store and token issuer (set by NewMux)
var (
	sessions *middleware.SessionStore
	tokens   *middleware.TokenIssuer
)

// Global rate limiter (set by NewMux)
var limiter *middleware.RateLimiter

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Open editor screens, one registry per record type (set by NewMux)
var (
	mealEditors    *dayeditor.Registry[mealplan.Entry]
	workoutEditors *dayeditor.Registry[workoutplan.Entry]
)

// outboxProcessor backs the admin retry endpoint (set by SetOutboxProcessor)
var outboxProcessor *orchestrators.OutboxProcessor

var (
	secureCookies bool
	sessionTTL    time.Duration
)

// SetOutboxProcessor registers the processor used for manual outbox retries.
func SetOutboxProcessor(p *orchestrators.OutboxProcessor) {
	outboxProcessor = p
}

// NewMux wires HTTP handlers for the app.
// PRE: s has every store set; len(opts.CSRFKey) == 32
func NewMux(opts Options, s *Stores, collector *perf.Collector) http.Handler {
	stores = s
	perfCollector = collector
	secureCookies = opts.SecureCookies
	sessionTTL = opts.SessionTTL
	sessions = middleware.NewSessionStore(opts.SessionTTL)
	tokens = middleware.NewTokenIssuer(opts.JWTKey, opts.TokenTTL)
	limiter = middleware.NewRateLimiter(opts.RateLimit, time.Second)
	mealEditors = dayeditor.NewRegistry[mealplan.Entry](opts.EditorIdle)
	workoutEditors = dayeditor.NewRegistry[workoutplan.Entry](opts.EditorIdle)

	mux := http.NewServeMux()
	if opts.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}
	registerRoutes(mux)

	// Timing sits closest to the mux so it sees the matched route pattern.
	return middleware.Chain(mux,
		middleware.Timing(collector, opts.SlowRequest),
		middleware.Auth(sessions, tokens),
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.SecurityHeaders,
	)
}

// SweepIdle drops expired login sessions together with their open editors,
// idle editors and stale rate-limiter entries.
// PRE: NewMux has run
func SweepIdle() {
	expired := sessions.Sweep()
	for _, id := range expired {
		dropEditors(id)
	}
	meals := mealEditors.Sweep()
	workouts := workoutEditors.Sweep()
	visitors := limiter.Sweep()
	if len(expired)+meals+workouts+visitors > 0 {
		slog.Debug("sweep_event", "event", "idle_state_dropped",
			"sessions", len(expired), "editors", meals+workouts, "visitors", visitors)
	}
}

// StartSweeper runs SweepIdle every interval until stopCh is closed.
// POST: The returned channel is closed once the sweeper has exited
func StartSweeper(interval time.Duration, stopCh <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				SweepIdle()
			case <-stopCh:
				return
			}
		}
	}()
	return done
}

func dropEditors(owner string) {
	mealEditors.DropOwner(owner)
	workoutEditors.DropOwner(owner)
}
