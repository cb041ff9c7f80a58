package workoutplan

import (
	"context"
	"fmt"
	"time"

	"coachdesk/internal/adapters/storage"
	domain "coachdesk/internal/domain/workoutplan"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// ListByUser returns a customer's workout entries.
// PRE: userID is non-empty
// POST: Entries ordered by checkpoint, day and position
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string, checkpoint int) ([]domain.Entry, error) {
	query := `SELECT id, user_id, day_number, checkpoint_number, exercise_name, sets, reps, duration_minutes, category, note, video_url, updated_at
		FROM workout_entry WHERE user_id = ?`
	args := []any{userID}
	if checkpoint != AllCheckpoints {
		query += ` AND checkpoint_number = ?`
		args = append(args, checkpoint)
	}
	query += ` ORDER BY checkpoint_number, day_number, position`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []domain.Entry{}
	for rows.Next() {
		var e domain.Entry
		var updatedAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.DayNumber, &e.CheckpointNumber, &e.ExerciseName, &e.Sets, &e.Reps,
			&e.DurationMinutes, &e.Category, &e.Note, &e.VideoURL, &updatedAt); err != nil {
			return nil, err
		}
		e.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceDay deletes the stored day and inserts entries in their given order.
// Entries keep their ID only if it already belongs to this day; others get a fresh one.
// PRE: entries have been validated
// POST: The day holds exactly entries, or nothing changed on error
func (s *SQLiteStore) ReplaceDay(ctx context.Context, userID string, checkpoint, day int, entries []domain.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	owned, err := storage.DayRowIDs(ctx, tx, "workout_entry", userID, checkpoint, day)
	if err != nil {
		return fmt.Errorf("read day: %w", err)
	}
	submitted := make([]string, len(entries))
	for i, e := range entries {
		submitted[i] = e.ID
	}
	ids := storage.ClaimIDs(owned, submitted)

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM workout_entry WHERE user_id = ? AND checkpoint_number = ? AND day_number = ?`,
		userID, checkpoint, day); err != nil {
		return fmt.Errorf("clear day: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	for i, e := range entries {
		id := ids[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workout_entry (id, user_id, day_number, checkpoint_number, exercise_name, sets, reps, duration_minutes, category, note, video_url, position, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, userID, day, checkpoint, e.ExerciseName, e.Sets, e.Reps, e.DurationMinutes,
			e.Category, e.Note, e.VideoURL, i, now); err != nil {
			return fmt.Errorf("insert exercise %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Checkpoints returns the checkpoints a customer has workouts for.
func (s *SQLiteStore) Checkpoints(ctx context.Context, userID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT checkpoint_number FROM workout_entry WHERE user_id = ? ORDER BY checkpoint_number`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
