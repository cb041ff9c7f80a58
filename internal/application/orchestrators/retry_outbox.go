package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"coachdesk/internal/adapters/email"
	domain "coachdesk/internal/domain/outbox"
)

// ErrTerminalEntry is returned when retrying an entry that is done or abandoned.
var ErrTerminalEntry = errors.New("outbox entry is in a terminal state")

// OutboxStoreForProcessor defines the store interface needed by the processor.
type OutboxStoreForProcessor interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes one type of external action.
type ActionExecutor interface {
	// Execute runs the action for entry and returns the provider's ID.
	Execute(ctx context.Context, entry domain.Entry) (string, error)
}

// OutboxProcessor delivers outbox entries with exponential backoff.
type OutboxProcessor struct {
	store     OutboxStoreForProcessor
	executors map[string]ActionExecutor
	now       func() time.Time
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// NewOutboxProcessor creates a processor with one executor per action type.
func NewOutboxProcessor(store OutboxStoreForProcessor, executors map[string]ActionExecutor, now func() time.Time) *OutboxProcessor {
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		now:       now,
		baseDelay: 30 * time.Second,
		maxDelay:  time.Hour,
		batchSize: 20,
	}
}

// ProcessPending attempts every due entry once.
// PRE: Context is valid
// POST: Each due entry has one more attempt recorded; returns how many succeeded
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (int, error) {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending outbox entries: %w", err)
	}

	succeeded := 0
	for _, entry := range entries {
		if !entry.IsDue(p.now(), p.baseDelay, p.maxDelay) {
			continue
		}
		ok, err := p.attempt(ctx, entry)
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err)
			continue
		}
		if ok {
			succeeded++
		}
	}
	return succeeded, nil
}

// ProcessSingle retries one entry immediately, ignoring backoff.
// PRE: entryID names an entry that is not terminal
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return ErrTerminalEntry
	}
	_, err = p.attempt(ctx, entry)
	return err
}

// attempt runs the executor and saves the outcome. The bool reports delivery;
// the error reports a failure to record the outcome.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (bool, error) {
	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkAbandoned()
		entry.ErrorMessage = "no executor for action type " + entry.ActionType
		slog.Warn("outbox_action_abandoned", "entry_id", entry.ID, "action_type", entry.ActionType)
		return false, p.store.Save(ctx, entry)
	}

	entry.MarkAttempt(p.now())
	externalID, execErr := executor.Execute(ctx, entry)
	if execErr != nil {
		entry.MarkFailed(execErr)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "error", execErr)
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return execErr == nil, p.store.Save(ctx, entry)
}

// EmailExecutor delivers email entries through a Sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute decodes the email payload and sends it.
// PRE: entry.ActionType is email
// POST: returns the provider message ID on success
func (e EmailExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	p, err := entry.Email()
	if err != nil {
		return "", fmt.Errorf("decode email payload: %w", err)
	}
	receipt, err := e.Sender.Send(ctx, email.Message{To: p.To, Subject: p.Subject, HTML: p.HTML, ReplyTo: p.ReplyTo})
	if err != nil {
		return "", err
	}
	return receipt.MessageID, nil
}

// StartBackgroundWorker processes pending entries every interval until stopCh is closed.
// PRE: interval > 0
// POST: The returned channel is closed once the worker has exited
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				if _, err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err)
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
	return done
}
