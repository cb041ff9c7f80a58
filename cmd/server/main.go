package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	emailPkg "coachdesk/internal/adapters/email"
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
	"coachdesk/internal/config"
	"coachdesk/internal/domain/outbox"
	"coachdesk/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	configPath := flag.String("config", "coachdesk.yaml", "path to the YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	_, logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	if err := run(cfg); err != nil {
		slog.Error("server_failed", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// WAL mode, foreign keys and busy timeout on every connection
	dsn := cfg.Database.Path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxOpenConns)

	if err := db.Ping(); err != nil {
		return err
	}
	if err := storage.MigrateDB(db, cfg.Database.Path); err != nil {
		return err
	}

	collector := perf.NewCollector(cfg.Perf.RingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.Perf.SlowQuery)

	stores := &web.Stores{
		AccountStore:  accountStore.NewSQLiteStore(timedDB),
		CustomerStore: customerStore.NewSQLiteStore(timedDB),
		MealStore:     mealStore.NewSQLiteStore(timedDB),
		WorkoutStore:  workoutStore.NewSQLiteStore(timedDB),
		PlanStore:     planStore.NewSQLiteStore(timedDB),
		FeedbackStore: feedbackStore.NewSQLiteStore(timedDB),
		PolicyStore:   policyStore.NewSQLiteStore(timedDB),
		AdvisorStore:  advisorStore.NewSQLiteStore(timedDB),
		AuditStore:    auditStore.NewSQLiteStore(timedDB),
		OutboxStore:   outboxStore.NewSQLiteStore(timedDB),
	}

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   uuid.NewString,
		Now:          time.Now,
	}, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}
	if cfg.Server.SeedDemo && !cfg.IsProduction() {
		if err := orchestrators.ExecuteSeedDemo(ctx, orchestrators.DemoSeedDeps{
			CustomerStore: stores.CustomerStore,
			MealStore:     stores.MealStore,
			WorkoutStore:  stores.WorkoutStore,
			PlanStore:     stores.PlanStore,
			FeedbackStore: stores.FeedbackStore,
			PolicyStore:   stores.PolicyStore,
			GenerateID:    uuid.NewString,
			Now:           time.Now,
		}); err != nil {
			return err
		}
	}

	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_configured", "provider", "noop", "note", "COACHDESK_RESEND_KEY is not set, notifications are not delivered")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail: orchestrators.EmailExecutor{Sender: sender},
	}, time.Now)
	web.SetOutboxProcessor(processor)

	csrfKey, generated, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("csrf_key_generated", "note", "forms issued before a restart will be rejected")
	}
	jwtKey, generated, err := cfg.JWTKey()
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("jwt_key_generated", "note", "API tokens do not survive a restart")
	}

	handler := web.NewMux(web.Options{
		StaticDir:      cfg.Server.StaticDir,
		CSRFKey:        csrfKey,
		JWTKey:         jwtKey,
		SecureCookies:  cfg.IsProduction(),
		TrustedOrigins: cfg.Security.TrustedOrigins,
		SessionTTL:     cfg.Security.SessionTTL,
		TokenTTL:       cfg.Security.TokenTTL,
		EditorIdle:     cfg.Workers.EditorIdle,
		SlowRequest:    cfg.Perf.SlowRequest,
		RateLimit:      cfg.Security.RateLimitPerSecond,
	}, stores, collector)

	stopCh := make(chan struct{})
	outboxDone := orchestrators.StartBackgroundWorker(processor, cfg.Workers.OutboxInterval, stopCh)
	sweeperDone := web.StartSweeper(time.Minute, stopCh)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server_started", "version", version, "addr", cfg.Server.Addr,
			"env", cfg.Server.Env, "schema", storage.LatestSchemaVersion())
		serveErr <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		close(stopCh)
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case sig := <-sigCh:
		slog.Info("server_stopping", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	close(stopCh)
	<-outboxDone
	<-sweeperDone
	return err
}
