package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// DayRowIDs returns the IDs of the rows of one customer's day in table.
// PRE: table is a trusted day-tagged entry table name
func DayRowIDs(ctx context.Context, tx *sql.Tx, table, userID string, checkpoint, day int) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM `+table+` WHERE user_id = ? AND checkpoint_number = ? AND day_number = ?`,
		userID, checkpoint, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	owned := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		owned[id] = true
	}
	return owned, rows.Err()
}

// ClaimIDs picks the ID each replacement row is stored under. A submitted ID
// is kept only when it already belongs to the day being replaced and appears
// once; anything else gets a fresh UUID, so a day can never take over rows of
// another day or checkpoint.
// POST: len(result) == len(ids); result values are distinct
func ClaimIDs(owned map[string]bool, ids []string) []string {
	out := make([]string, len(ids))
	used := make(map[string]bool, len(ids))
	for i, id := range ids {
		if id == "" || !owned[id] || used[id] {
			id = uuid.New().String()
		}
		used[id] = true
		out[i] = id
	}
	return out
}
