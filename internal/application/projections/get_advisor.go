package projections

import (
	"context"
	"errors"

	"coachdesk/internal/adapters/storage/advisor"
	domainAdvisor "coachdesk/internal/domain/advisor"
)

// GetAdvisorDeps holds dependencies for the advisor queries.
type GetAdvisorDeps struct {
	AdvisorStore AdvisorStore
}

// QueryGetAdvisorProfile returns the advisor's profile. An advisor who has
// never saved one gets an empty profile rather than an error.
// PRE: accountID is non-empty
// POST: Specialties is non-nil
func QueryGetAdvisorProfile(ctx context.Context, accountID string, deps GetAdvisorDeps) (domainAdvisor.Profile, error) {
	p, err := deps.AdvisorStore.GetProfile(ctx, accountID)
	if errors.Is(err, advisor.ErrNotFound) {
		return domainAdvisor.Profile{AccountID: accountID, Specialties: []string{}}, nil
	}
	if err != nil {
		return domainAdvisor.Profile{}, err
	}
	if p.Specialties == nil {
		p.Specialties = []string{}
	}
	return p, nil
}

// QueryGetAdvisorSettings returns the advisor's settings, falling back to
// the defaults until the advisor saves their own.
// PRE: accountID is non-empty
// POST: ItemsPerPage is within the allowed bounds
func QueryGetAdvisorSettings(ctx context.Context, accountID string, deps GetAdvisorDeps) (domainAdvisor.Settings, error) {
	s, err := deps.AdvisorStore.GetSettings(ctx, accountID)
	if errors.Is(err, advisor.ErrNotFound) {
		return domainAdvisor.DefaultSettings(accountID), nil
	}
	if err != nil {
		return domainAdvisor.Settings{}, err
	}
	if s.ItemsPerPage < domainAdvisor.MinItemsPerPage || s.ItemsPerPage > domainAdvisor.MaxItemsPerPage {
		s.ItemsPerPage = domainAdvisor.DefaultItemsPerPage
	}
	return s, nil
}
