package plan_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"coachdesk/internal/domain/plan"
)

func pending() plan.Plan {
	return plan.Plan{ID: "p1", CustomerID: "c1", Kind: plan.KindMeal, Status: plan.StatusPending, CheckpointNumber: 1}
}

// TestPlan_Validate tests validation of plans.
func TestPlan_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *plan.Plan)
		wantErr error
	}{
		{"valid", func(p *plan.Plan) {}, nil},
		{"no customer", func(p *plan.Plan) { p.CustomerID = "" }, plan.ErrEmptyCustomerID},
		{"bad kind", func(p *plan.Plan) { p.Kind = "sleep" }, plan.ErrInvalidKind},
		{"bad status", func(p *plan.Plan) { p.Status = "draft" }, plan.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pending()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestPlan_Approve tests the approve transition and its guards.
func TestPlan_Approve(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	p := pending()
	if err := p.Approve("adv1", "   ", now); !errors.Is(err, plan.ErrEmptyComment) {
		t.Fatalf("blank comment err = %v", err)
	}
	if !p.IsPending() {
		t.Fatal("failed approve must leave the plan pending")
	}
	if err := p.Approve("", "ok", now); !errors.Is(err, plan.ErrEmptyReviewer) {
		t.Fatalf("no reviewer err = %v", err)
	}
	if err := p.Approve("adv1", strings.Repeat("x", plan.MaxCommentLength+1), now); !errors.Is(err, plan.ErrCommentTooLong) {
		t.Fatalf("long comment err = %v", err)
	}
	if err := p.Approve("adv1", " Looks balanced ", now); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if p.Status != plan.StatusApproved || p.ReviewedBy != "adv1" || p.ReviewComment != "Looks balanced" || !p.ReviewedAt.Equal(now) {
		t.Fatalf("unexpected plan after approve: %+v", p)
	}
	if err := p.Reject("adv1", "changed my mind", now); !errors.Is(err, plan.ErrAlreadyDecided) {
		t.Fatalf("reject after approve err = %v", err)
	}
}

// TestPlan_Reject tests the reject transition.
func TestPlan_Reject(t *testing.T) {
	p := pending()
	if err := p.Reject("adv2", "Too few calories", time.Now()); err != nil {
		t.Fatal(err)
	}
	if p.Status != plan.StatusRejected {
		t.Fatalf("status = %s, want rejected", p.Status)
	}
}
