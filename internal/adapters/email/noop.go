package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender logs messages instead of delivering them. Used in development
// when no Resend key is configured, and in tests to inspect what was sent.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
	seq  int
}

var _ Sender = (*NoopSender)(nil)

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records msg and returns a synthetic receipt.
func (s *NoopSender) Send(_ context.Context, msg Message) (Receipt, error) {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.seq++
	id := fmt.Sprintf("noop-%d", s.seq)
	s.mu.Unlock()

	slog.Info("noop_email_send", "message_id", id, "subject", msg.Subject)
	return Receipt{MessageID: id, SentAt: time.Now()}, nil
}

// Sent returns a copy of every message recorded so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}
