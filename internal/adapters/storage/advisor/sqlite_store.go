package advisor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/advisor"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new advisor store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetProfile returns the profile of an advisor.
// POST: Returns ErrNotFound when the advisor never saved one
func (s *SQLiteStore) GetProfile(ctx context.Context, accountID string) (domain.Profile, error) {
	var p domain.Profile
	var specialties, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, display_name, bio, specialties, phone, avatar_url, updated_at
		 FROM advisor_profile WHERE account_id = ?`, accountID).
		Scan(&p.AccountID, &p.DisplayName, &p.Bio, &specialties, &p.Phone, &p.AvatarURL, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if err := json.Unmarshal([]byte(specialties), &p.Specialties); err != nil || p.Specialties == nil {
		p.Specialties = []string{}
	}
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return p, nil
}

// SaveProfile persists a profile (insert or update).
// PRE: p has been validated
func (s *SQLiteStore) SaveProfile(ctx context.Context, p domain.Profile) error {
	specialties := p.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	raw, err := json.Marshal(specialties)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO advisor_profile (account_id, display_name, bio, specialties, phone, avatar_url, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
		   display_name=excluded.display_name, bio=excluded.bio, specialties=excluded.specialties,
		   phone=excluded.phone, avatar_url=excluded.avatar_url, updated_at=excluded.updated_at`,
		p.AccountID, p.DisplayName, p.Bio, string(raw), p.Phone, p.AvatarURL, p.UpdatedAt.UTC().Format(timeLayout))
	return err
}

// GetSettings returns the settings of an advisor.
// POST: Returns ErrNotFound when the advisor never saved any
func (s *SQLiteStore) GetSettings(ctx context.Context, accountID string) (domain.Settings, error) {
	var st domain.Settings
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, notify_new_feedback, notify_plan_ready, timezone, items_per_page, updated_at
		 FROM advisor_settings WHERE account_id = ?`, accountID).
		Scan(&st.AccountID, &st.NotifyNewFeedback, &st.NotifyPlanReady, &st.Timezone, &st.ItemsPerPage, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Settings{}, ErrNotFound
	}
	if err != nil {
		return domain.Settings{}, err
	}
	st.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return st, nil
}

// SaveSettings persists settings (insert or update).
// PRE: st has been validated
func (s *SQLiteStore) SaveSettings(ctx context.Context, st domain.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO advisor_settings (account_id, notify_new_feedback, notify_plan_ready, timezone, items_per_page, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(account_id) DO UPDATE SET
		   notify_new_feedback=excluded.notify_new_feedback, notify_plan_ready=excluded.notify_plan_ready,
		   timezone=excluded.timezone, items_per_page=excluded.items_per_page, updated_at=excluded.updated_at`,
		st.AccountID, st.NotifyNewFeedback, st.NotifyPlanReady, st.Timezone, st.ItemsPerPage,
		st.UpdatedAt.UTC().Format(timeLayout))
	return err
}
