package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"coachdesk/internal/domain/advisor"
	"coachdesk/internal/domain/audit"
)

// AdvisorStoreForOrchestrator defines the store interface needed by advisor orchestrators.
type AdvisorStoreForOrchestrator interface {
	SaveProfile(ctx context.Context, p advisor.Profile) error
	SaveSettings(ctx context.Context, s advisor.Settings) error
}

// UpdateProfileInput carries the editable profile fields.
type UpdateProfileInput struct {
	DisplayName string
	Bio         string
	Specialties string // comma-separated
	Phone       string
	AvatarURL   string
	Actor       Actor
}

// UpdateSettingsInput carries the editable settings fields.
type UpdateSettingsInput struct {
	NotifyNewFeedback bool
	NotifyPlanReady   bool
	Timezone          string
	ItemsPerPage      int
	Actor             Actor
}

// AdvisorDeps holds dependencies for advisor orchestrators.
type AdvisorDeps struct {
	AdvisorStore AdvisorStoreForOrchestrator
	AuditStore   AuditRecorder
	Now          func() time.Time
}

// ExecuteUpdateProfile writes the actor's own profile.
// PRE: input.Actor.ID is an existing account
// POST: profile saved with UpdatedAt now
func ExecuteUpdateProfile(ctx context.Context, input UpdateProfileInput, deps AdvisorDeps) (advisor.Profile, error) {
	now := deps.Now()
	p := advisor.Profile{
		AccountID:   input.Actor.ID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Bio:         strings.TrimSpace(input.Bio),
		Specialties: advisor.ParseSpecialties(input.Specialties),
		Phone:       strings.TrimSpace(input.Phone),
		AvatarURL:   strings.TrimSpace(input.AvatarURL),
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return advisor.Profile{}, invalid(err)
	}
	if err := deps.AdvisorStore.SaveProfile(ctx, p); err != nil {
		return advisor.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryAdvisor, audit.ActionUpdate, "advisor_profile", p.AccountID, "", now)
	slog.Info("advisor_event", "event", "profile_updated", "account_id", p.AccountID)
	return p, nil
}

// ExecuteUpdateSettings writes the actor's own settings.
// POST: settings saved with UpdatedAt now
func ExecuteUpdateSettings(ctx context.Context, input UpdateSettingsInput, deps AdvisorDeps) (advisor.Settings, error) {
	now := deps.Now()
	s := advisor.Settings{
		AccountID:         input.Actor.ID,
		NotifyNewFeedback: input.NotifyNewFeedback,
		NotifyPlanReady:   input.NotifyPlanReady,
		Timezone:          strings.TrimSpace(input.Timezone),
		ItemsPerPage:      input.ItemsPerPage,
		UpdatedAt:         now,
	}
	if err := s.Validate(); err != nil {
		return advisor.Settings{}, invalid(err)
	}
	if err := deps.AdvisorStore.SaveSettings(ctx, s); err != nil {
		return advisor.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	input.Actor.record(ctx, deps.AuditStore, audit.CategoryAdvisor, audit.ActionUpdate, "advisor_settings", s.AccountID, "", now)
	slog.Info("advisor_event", "event", "settings_updated", "account_id", s.AccountID)
	return s, nil
}
