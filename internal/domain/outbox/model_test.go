package outbox_test

import (
	"errors"
	"testing"
	"time"

	"coachdesk/internal/domain/outbox"
)

// TestNewEmail tests building and decoding an email entry.
func TestNewEmail(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := outbox.NewEmail("o1", outbox.EmailPayload{Subject: "hi"}, now); !errors.Is(err, outbox.ErrNoRecipient) {
		t.Fatalf("missing recipient err = %v", err)
	}
	e, err := outbox.NewEmail("o1", outbox.EmailPayload{To: "ana@example.com", Subject: "Plan approved", HTML: "<p>ok</p>"}, now)
	if err != nil {
		t.Fatal(err)
	}
	if e.Status != outbox.StatusPending || e.MaxAttempts != outbox.DefaultMaxAttempts || e.ActionType != outbox.ActionTypeEmail {
		t.Fatalf("unexpected entry: %+v", e)
	}
	p, err := e.Email()
	if err != nil || p.To != "ana@example.com" || p.Subject != "Plan approved" {
		t.Fatalf("Email() = %+v, %v", p, err)
	}
}

// TestEntry_RetryLifecycle walks an entry through failures to exhaustion.
func TestEntry_RetryLifecycle(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	e := outbox.Entry{ActionType: outbox.ActionTypeEmail, Payload: "{}", Status: outbox.StatusPending, MaxAttempts: 2, CreatedAt: now}

	if !e.IsDue(now, time.Minute, time.Hour) {
		t.Fatal("fresh entry should be due")
	}
	e.MarkAttempt(now)
	e.MarkFailed(errors.New("timeout"))
	if e.Status != outbox.StatusRetrying || !e.CanRetry() {
		t.Fatalf("after first failure: status %s canRetry %v", e.Status, e.CanRetry())
	}
	if e.IsDue(now.Add(30*time.Second), time.Minute, time.Hour) {
		t.Fatal("should wait for backoff")
	}
	if !e.IsDue(now.Add(time.Minute), time.Minute, time.Hour) {
		t.Fatal("should be due after backoff")
	}
	e.MarkAttempt(now.Add(time.Minute))
	e.MarkFailed(errors.New("timeout"))
	if e.Status != outbox.StatusFailed || !e.IsTerminal() || e.CanRetry() {
		t.Fatalf("after exhaustion: %+v", e)
	}
}

// TestEntry_NextRetryDelay tests the exponential backoff cap.
func TestEntry_NextRetryDelay(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, time.Minute},
		{1, time.Minute},
		{2, 2 * time.Minute},
		{4, 8 * time.Minute},
		{10, 30 * time.Minute},
		{64, 30 * time.Minute},
	}
	for _, tt := range tests {
		e := outbox.Entry{Attempts: tt.attempts}
		if got := e.NextRetryDelay(time.Minute, 30*time.Minute); got != tt.want {
			t.Errorf("attempts=%d: got %v, want %v", tt.attempts, got, tt.want)
		}
	}
}
