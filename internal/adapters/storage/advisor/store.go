package advisor

import (
	"context"
	"errors"

	domain "coachdesk/internal/domain/advisor"
)

// ErrNotFound is returned when an advisor has no stored profile or settings.
var ErrNotFound = errors.New("advisor record not found")

// Store persists advisor profiles and settings, keyed by account ID.
type Store interface {
	GetProfile(ctx context.Context, accountID string) (domain.Profile, error)
	SaveProfile(ctx context.Context, p domain.Profile) error
	GetSettings(ctx context.Context, accountID string) (domain.Settings, error)
	SaveSettings(ctx context.Context, s domain.Settings) error
}
