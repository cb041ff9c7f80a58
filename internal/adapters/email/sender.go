// Package email delivers outbox notifications through an external provider.
package email

import (
	"context"
	"time"
)

// Message is one outgoing notification.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}

// Receipt is the provider's acknowledgement of a send.
type Receipt struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) (Receipt, error)
}
