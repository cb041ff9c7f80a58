package advisor

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxDisplayNameLength = 100
	MaxBioLength         = 4000
	MaxSpecialties       = 10
	MaxSpecialtyLength   = 40
)

// Page size bounds for list screens.
const (
	DefaultItemsPerPage = 20
	MinItemsPerPage     = 5
	MaxItemsPerPage     = 100
)

// DefaultTimezone is used until the advisor picks one.
const DefaultTimezone = "UTC"

// Domain errors
var (
	ErrEmptyAccountID     = errors.New("account ID is required")
	ErrEmptyDisplayName   = errors.New("display name cannot be empty")
	ErrTooManySpecialties = errors.New("an advisor can list at most 10 specialties")
	ErrInvalidAvatarURL   = errors.New("avatar URL must start with https://")
	ErrInvalidTimezone    = errors.New("timezone is not a known IANA zone")
	ErrInvalidPageSize    = errors.New("items per page must be between 5 and 100")
)

// Profile is the public-facing advisor card shown to customers.
type Profile struct {
	AccountID   string    `json:"accountId"`
	DisplayName string    `json:"displayName"`
	Bio         string    `json:"bio"`
	Specialties []string  `json:"specialties"`
	Phone       string    `json:"phone"`
	AvatarURL   string    `json:"avatarUrl"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks if the Profile has valid data.
// PRE: Profile struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Profile) Validate() error {
	if p.AccountID == "" {
		return ErrEmptyAccountID
	}
	if strings.TrimSpace(p.DisplayName) == "" {
		return ErrEmptyDisplayName
	}
	if len(p.DisplayName) > MaxDisplayNameLength {
		return errors.New("display name cannot exceed 100 characters")
	}
	if len(p.Bio) > MaxBioLength {
		return errors.New("bio cannot exceed 4000 characters")
	}
	if len(p.Specialties) > MaxSpecialties {
		return ErrTooManySpecialties
	}
	for _, s := range p.Specialties {
		if len(s) > MaxSpecialtyLength {
			return errors.New("specialty cannot exceed 40 characters")
		}
	}
	if p.AvatarURL != "" && !strings.HasPrefix(p.AvatarURL, "https://") {
		return ErrInvalidAvatarURL
	}
	return nil
}

// ParseSpecialties splits a comma-separated list, trimming blanks and duplicates.
func ParseSpecialties(raw string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ",") {
		s := strings.TrimSpace(part)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// Settings holds an advisor's dashboard preferences.
type Settings struct {
	AccountID         string    `json:"accountId"`
	NotifyNewFeedback bool      `json:"notifyNewFeedback"`
	NotifyPlanReady   bool      `json:"notifyPlanReady"`
	Timezone          string    `json:"timezone"`
	ItemsPerPage      int       `json:"itemsPerPage"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DefaultSettings returns the settings a new advisor starts with.
func DefaultSettings(accountID string) Settings {
	return Settings{
		AccountID:         accountID,
		NotifyNewFeedback: true,
		NotifyPlanReady:   true,
		Timezone:          DefaultTimezone,
		ItemsPerPage:      DefaultItemsPerPage,
	}
}

// Validate checks if the Settings have valid data.
// PRE: Settings struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Settings) Validate() error {
	if s.AccountID == "" {
		return ErrEmptyAccountID
	}
	if s.ItemsPerPage < MinItemsPerPage || s.ItemsPerPage > MaxItemsPerPage {
		return ErrInvalidPageSize
	}
	if _, err := time.LoadLocation(s.Timezone); err != nil || s.Timezone == "" {
		return ErrInvalidTimezone
	}
	return nil
}

// Location returns the advisor's time zone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil || s.Timezone == "" {
		return time.UTC
	}
	return loc
}
