// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"coachdesk/internal/adapters/storage"
)

// Open returns a migrated in-memory database closed at test cleanup.
// A single connection keeps every query on the same :memory: database.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// InsertCustomer adds a bare customer row so foreign keys on user_id hold.
func InsertCustomer(t *testing.T, db *sql.DB, id, status string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO customer (id, name, email, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, "Customer "+id, id+"@example.com", status, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert customer %s: %v", id, err)
	}
}

// InsertAccount adds a bare advisor account row.
func InsertAccount(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO account (id, email, password_hash, role, created_at) VALUES (?, ?, '', 'advisor', ?)`,
		id, id+"@coachdesk.test", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("insert account %s: %v", id, err)
	}
}
