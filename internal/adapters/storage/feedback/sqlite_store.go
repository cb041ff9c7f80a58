package feedback

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/feedback"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

const submissionColumns = "id, customer_id, payload, received_at, status, advisor_comment, reviewed_by, reviewed_at"

// SQLiteStore implements Store using SQLite. Payloads are stored verbatim.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new feedback store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a submission by ID.
// POST: Returns the submission or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Submission, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM feedback WHERE id = ?`, id)
	sub, err := scanSubmission(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, ErrNotFound
	}
	return sub, err
}

// Save persists a submission (insert or update). The payload is never rewritten on update.
// PRE: sub has been validated
func (s *SQLiteStore) Save(ctx context.Context, sub domain.Submission) error {
	var reviewedAt sql.NullString
	if !sub.ReviewedAt.IsZero() {
		reviewedAt = sql.NullString{String: sub.ReviewedAt.UTC().Format(timeLayout), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback (`+submissionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   status=excluded.status, advisor_comment=excluded.advisor_comment,
		   reviewed_by=excluded.reviewed_by, reviewed_at=excluded.reviewed_at`,
		sub.ID, sub.CustomerID, string(sub.Payload), sub.ReceivedAt.UTC().Format(timeLayout), sub.Status,
		nullStr(sub.AdvisorComment), nullStr(sub.ReviewedBy), reviewedAt)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

// List returns submissions, optionally filtered by status.
func (s *SQLiteStore) List(ctx context.Context, status string, limit int) ([]domain.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM feedback`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY received_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []domain.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows.Scan)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountByStatus counts submissions with status.
func (s *SQLiteStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback WHERE status = ?`, status).Scan(&n)
	return n, err
}

func scanSubmission(scan func(dest ...any) error) (domain.Submission, error) {
	var sub domain.Submission
	var payload, receivedAt string
	var comment, reviewedBy, reviewedAt sql.NullString
	if err := scan(&sub.ID, &sub.CustomerID, &payload, &receivedAt, &sub.Status,
		&comment, &reviewedBy, &reviewedAt); err != nil {
		return domain.Submission{}, err
	}
	sub.Payload = []byte(payload)
	sub.ReceivedAt, _ = time.Parse(timeLayout, receivedAt)
	sub.AdvisorComment = comment.String
	sub.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		sub.ReviewedAt, _ = time.Parse(timeLayout, reviewedAt.String)
	}
	return sub, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
