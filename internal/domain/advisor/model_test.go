package advisor_test

import (
	"errors"
	"slices"
	"testing"

	"coachdesk/internal/domain/advisor"
)

// TestProfile_Validate tests validation of advisor profiles.
func TestProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       advisor.Profile
		wantErr error
	}{
		{"valid", advisor.Profile{AccountID: "a1", DisplayName: "Sam", AvatarURL: "https://cdn/x.png"}, nil},
		{"no account", advisor.Profile{DisplayName: "Sam"}, advisor.ErrEmptyAccountID},
		{"blank name", advisor.Profile{AccountID: "a1", DisplayName: "  "}, advisor.ErrEmptyDisplayName},
		{"http avatar", advisor.Profile{AccountID: "a1", DisplayName: "Sam", AvatarURL: "http://cdn/x.png"}, advisor.ErrInvalidAvatarURL},
		{"too many specialties", advisor.Profile{AccountID: "a1", DisplayName: "Sam", Specialties: make([]string, 11)}, advisor.ErrTooManySpecialties},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseSpecialties trims, drops blanks and de-duplicates case-insensitively.
func TestParseSpecialties(t *testing.T) {
	got := advisor.ParseSpecialties(" Nutrition, ,strength,nutrition , Mobility")
	want := []string{"Nutrition", "strength", "Mobility"}
	if !slices.Equal(got, want) {
		t.Fatalf("ParseSpecialties() = %v, want %v", got, want)
	}
	if got := advisor.ParseSpecialties(""); got == nil || len(got) != 0 {
		t.Fatalf("empty input = %v, want empty non-nil", got)
	}
}

// TestSettings_Validate tests page size and timezone checks.
func TestSettings_Validate(t *testing.T) {
	s := advisor.DefaultSettings("a1")
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	s.ItemsPerPage = 500
	if err := s.Validate(); !errors.Is(err, advisor.ErrInvalidPageSize) {
		t.Errorf("page size err = %v", err)
	}
	s.ItemsPerPage = 20
	s.Timezone = "Mars/Olympus"
	if err := s.Validate(); !errors.Is(err, advisor.ErrInvalidTimezone) {
		t.Errorf("timezone err = %v", err)
	}
	if s.Location() != nil && s.Location().String() != "UTC" {
		t.Errorf("bad timezone should fall back to UTC, got %s", s.Location())
	}
}
