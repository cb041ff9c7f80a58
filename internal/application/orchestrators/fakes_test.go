package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"coachdesk/internal/domain/account"
	"coachdesk/internal/domain/audit"
	"coachdesk/internal/domain/customer"
	"coachdesk/internal/domain/feedback"
	"coachdesk/internal/domain/mealplan"
	"coachdesk/internal/domain/outbox"
	"coachdesk/internal/domain/plan"
	"coachdesk/internal/domain/policy"
	"coachdesk/internal/domain/workoutplan"
)

var errNotFound = errors.New("not found")

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testNow() time.Time { return testTime }

// seqIDs returns a generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type fakeCustomers map[string]customer.Customer

func (f fakeCustomers) GetByID(_ context.Context, id string) (customer.Customer, error) {
	c, ok := f[id]
	if !ok {
		return customer.Customer{}, errNotFound
	}
	return c, nil
}

type replaceCall[R any] struct {
	userID          string
	checkpoint, day int
	entries         []R
}

type fakeDayStore[R any] struct {
	calls []replaceCall[R]
	err   error
}

func (f *fakeDayStore[R]) ReplaceDay(_ context.Context, userID string, checkpoint, day int, entries []R) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, replaceCall[R]{userID, checkpoint, day, entries})
	return nil
}

var (
	_ MealDayStore    = (*fakeDayStore[mealplan.Entry])(nil)
	_ WorkoutDayStore = (*fakeDayStore[workoutplan.Entry])(nil)
)

type fakeAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (f *fakeAudit) Save(_ context.Context, e audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

type fakePlans map[string]plan.Plan

func (f fakePlans) GetByID(_ context.Context, id string) (plan.Plan, error) {
	p, ok := f[id]
	if !ok {
		return plan.Plan{}, errNotFound
	}
	return p, nil
}

func (f fakePlans) Save(_ context.Context, p plan.Plan) error {
	f[p.ID] = p
	return nil
}

type fakeOutbox struct {
	entries map[string]outbox.Entry
	order   []string
}

func newFakeOutbox() *fakeOutbox { return &fakeOutbox{entries: map[string]outbox.Entry{}} }

func (f *fakeOutbox) Save(_ context.Context, e outbox.Entry) error {
	if _, ok := f.entries[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	f.entries[e.ID] = e
	return nil
}

func (f *fakeOutbox) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := f.entries[id]
	if !ok {
		return outbox.Entry{}, errNotFound
	}
	return e, nil
}

func (f *fakeOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, id := range f.order {
		e := f.entries[id]
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying ||
			(e.Status == outbox.StatusFailed && e.Attempts < e.MaxAttempts) {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeFeedback map[string]feedback.Submission

func (f fakeFeedback) GetByID(_ context.Context, id string) (feedback.Submission, error) {
	s, ok := f[id]
	if !ok {
		return feedback.Submission{}, errNotFound
	}
	return s, nil
}

func (f fakeFeedback) Save(_ context.Context, s feedback.Submission) error {
	f[s.ID] = s
	return nil
}

type fakePolicies map[string]policy.Policy

func (f fakePolicies) GetByID(_ context.Context, id string) (policy.Policy, error) {
	p, ok := f[id]
	if !ok {
		return policy.Policy{}, errNotFound
	}
	return p, nil
}

func (f fakePolicies) Save(_ context.Context, p policy.Policy) error {
	f[p.ID] = p
	return nil
}

func (f fakePolicies) Delete(_ context.Context, id string) error {
	if _, ok := f[id]; !ok {
		return errNotFound
	}
	delete(f, id)
	return nil
}

type fakeAccounts map[string]account.Account

func (f fakeAccounts) GetByID(_ context.Context, id string) (account.Account, error) {
	a, ok := f[id]
	if !ok {
		return account.Account{}, errNotFound
	}
	return a, nil
}

func (f fakeAccounts) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range f {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errNotFound
}

func (f fakeAccounts) Save(_ context.Context, a account.Account) error {
	f[a.ID] = a
	return nil
}

func (f fakeAccounts) Count(_ context.Context) (int, error) { return len(f), nil }
