package email

import (
	"context"
	"sync"
	"testing"
)

func TestNoopSender_RecordsMessages(t *testing.T) {
	s := NewNoopSender()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if got := len(s.Sent()); got != 10 {
		t.Fatalf("Sent() = %d messages, want 10", got)
	}
	r, _ := s.Send(context.Background(), Message{To: "b@example.com"})
	if r.MessageID != "noop-11" {
		t.Errorf("MessageID = %q, want noop-11", r.MessageID)
	}
}
