package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/customer"
)

const (
	timeLayout = "2006-01-02T15:04:05Z07:00"
	dateLayout = "2006-01-02"
)

const customerColumns = `id, name, email, phone, gender, birth_date, height_cm, weight_kg, goal,
	activity_level, status, advisor_id, current_checkpoint, created_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new customer store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a customer by ID.
// PRE: id is non-empty
// POST: Returns the customer or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customer WHERE id = ?`, id)
	c, err := scanCustomer(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, ErrNotFound
	}
	return c, err
}

// Save persists a customer (insert or update).
// PRE: c has been validated
func (s *SQLiteStore) Save(ctx context.Context, c domain.Customer) error {
	var birth sql.NullString
	if !c.BirthDate.IsZero() {
		birth = sql.NullString{String: c.BirthDate.Format(dateLayout), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customer (`+customerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, email=excluded.email, phone=excluded.phone, gender=excluded.gender,
		   birth_date=excluded.birth_date, height_cm=excluded.height_cm, weight_kg=excluded.weight_kg,
		   goal=excluded.goal, activity_level=excluded.activity_level, status=excluded.status,
		   advisor_id=excluded.advisor_id, current_checkpoint=excluded.current_checkpoint`,
		c.ID, c.Name, c.Email, c.Phone, c.Gender, birth, c.HeightCm, c.WeightKg, c.Goal,
		c.ActivityLevel, c.Status, nullStr(c.AdvisorID), c.CurrentCheckpoint, c.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

// List retrieves customers based on the filter.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Customer, error) {
	where, args := filter.where()
	query := `SELECT ` + customerColumns + ` FROM customer` + where + filter.orderBy()
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}

// Count returns how many customers match filter.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := filter.where()
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customer`+where, args...).Scan(&n)
	return n, err
}

// CountByStatus returns customer counts keyed by status. Every known status is present.
func (s *SQLiteStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM customer GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int, len(domain.Statuses))
	for _, st := range domain.Statuses {
		counts[st] = 0
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (f ListFilter) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status)
	}
	if f.AdvisorID != "" {
		clauses = append(clauses, "advisor_id = ?")
		args = append(args, f.AdvisorID)
	}
	if q := strings.TrimSpace(f.Search); q != "" {
		clauses = append(clauses, "(name LIKE ? OR email LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

var sortExprs = map[string]string{
	SortName:       "name COLLATE NOCASE",
	SortStatus:     "status",
	SortCheckpoint: "current_checkpoint",
	SortCreated:    "created_at",
}

// orderBy builds the ORDER BY clause. Column names come only from sortExprs.
func (f ListFilter) orderBy() string {
	expr, ok := sortExprs[f.Sort]
	if !ok {
		expr = sortExprs[SortName]
	}
	dir := " ASC"
	if f.Desc {
		dir = " DESC"
	}
	clause := " ORDER BY " + expr + dir
	if expr != sortExprs[SortName] {
		clause += ", name COLLATE NOCASE"
	}
	return clause + ", id"
}

func scanCustomer(scan func(dest ...any) error) (domain.Customer, error) {
	var c domain.Customer
	var birth, advisorID sql.NullString
	var createdAt string
	if err := scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Gender, &birth, &c.HeightCm, &c.WeightKg,
		&c.Goal, &c.ActivityLevel, &c.Status, &advisorID, &c.CurrentCheckpoint, &createdAt); err != nil {
		return domain.Customer{}, err
	}
	if birth.Valid {
		c.BirthDate, _ = time.Parse(dateLayout, birth.String)
	}
	c.AdvisorID = advisorID.String
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return c, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
