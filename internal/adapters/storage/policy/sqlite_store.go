package policy

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/policy"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

const policyColumns = "id, title, body, category, active, created_at, updated_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new policy store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a policy by ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Policy, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policy WHERE id = ?`, id)
	p, err := scanPolicy(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Policy{}, ErrNotFound
	}
	return p, err
}

// Save persists a policy (insert or update).
// PRE: p has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Policy) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO policy (`+policyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, body=excluded.body, category=excluded.category,
		   active=excluded.active, updated_at=excluded.updated_at`,
		p.ID, p.Title, p.Body, p.Category, p.Active,
		p.CreatedAt.UTC().Format(timeLayout), p.UpdatedAt.UTC().Format(timeLayout))
	return err
}

// Delete removes the policy with id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM policy WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns policies, optionally only the active ones.
func (s *SQLiteStore) List(ctx context.Context, activeOnly bool) ([]domain.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policy`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY category, title COLLATE NOCASE`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	policies := []domain.Policy{}
	for rows.Next() {
		p, err := scanPolicy(rows.Scan)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func scanPolicy(scan func(dest ...any) error) (domain.Policy, error) {
	var p domain.Policy
	var createdAt, updatedAt string
	if err := scan(&p.ID, &p.Title, &p.Body, &p.Category, &p.Active, &createdAt, &updatedAt); err != nil {
		return domain.Policy{}, err
	}
	p.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	p.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return p, nil
}
