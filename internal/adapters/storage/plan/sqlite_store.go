package plan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/plan"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

const planColumns = "id, customer_id, kind, checkpoint_number, status, generated_at, reviewed_by, review_comment, reviewed_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new plan store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a plan by ID.
// PRE: id is non-empty
// POST: Returns the plan or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Plan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plan WHERE id = ?`, id)
	p, err := scanPlan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Plan{}, ErrNotFound
	}
	return p, err
}

// Save persists a plan (insert or update).
// PRE: p has been validated
func (s *SQLiteStore) Save(ctx context.Context, p domain.Plan) error {
	var reviewedAt sql.NullString
	if !p.ReviewedAt.IsZero() {
		reviewedAt = sql.NullString{String: p.ReviewedAt.UTC().Format(timeLayout), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO plan (`+planColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, reviewed_by=excluded.reviewed_by,
		   review_comment=excluded.review_comment, reviewed_at=excluded.reviewed_at`,
		p.ID, p.CustomerID, p.Kind, p.CheckpointNumber, p.Status, p.GeneratedAt.UTC().Format(timeLayout),
		nullStr(p.ReviewedBy), nullStr(p.ReviewComment), reviewedAt)
	if err != nil {
		return fmt.Errorf("save plan: %w", err)
	}
	return nil
}

// List returns plans matching filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Plan, error) {
	var clauses []string
	var args []any
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.CustomerID != "" {
		clauses = append(clauses, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	query := `SELECT ` + planColumns + ` FROM plan`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY generated_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []domain.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// CountPendingByKind returns pending counts; both kinds are always present.
func (s *SQLiteStore) CountPendingByKind(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM plan WHERE status = ? GROUP BY kind`, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{domain.KindMeal: 0, domain.KindWorkout: 0}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// CountApprovedSince counts approvals reviewed at or after since.
func (s *SQLiteStore) CountApprovedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM plan WHERE status = ? AND reviewed_at >= ?`,
		domain.StatusApproved, since.UTC().Format(timeLayout)).Scan(&n)
	return n, err
}

func scanPlan(scan func(dest ...any) error) (domain.Plan, error) {
	var p domain.Plan
	var generatedAt string
	var reviewedBy, comment, reviewedAt sql.NullString
	if err := scan(&p.ID, &p.CustomerID, &p.Kind, &p.CheckpointNumber, &p.Status, &generatedAt,
		&reviewedBy, &comment, &reviewedAt); err != nil {
		return domain.Plan{}, err
	}
	p.GeneratedAt, _ = time.Parse(timeLayout, generatedAt)
	p.ReviewedBy = reviewedBy.String
	p.ReviewComment = comment.String
	if reviewedAt.Valid {
		p.ReviewedAt, _ = time.Parse(timeLayout, reviewedAt.String)
	}
	return p, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
