package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   string
}

// migrations is the ordered schema history. Append only; never edit a
// released step.
var migrations = []migration{
	{version: 1, name: "baseline", stmts: `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS customer (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL DEFAULT '',
		gender TEXT NOT NULL DEFAULT '',
		birth_date TEXT,
		height_cm REAL NOT NULL DEFAULT 0,
		weight_kg REAL NOT NULL DEFAULT 0,
		goal TEXT NOT NULL DEFAULT '',
		activity_level TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		advisor_id TEXT,
		current_checkpoint INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meal_entry (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		day_number INTEGER NOT NULL,
		checkpoint_number INTEGER NOT NULL DEFAULT 0,
		meal_type TEXT NOT NULL,
		calories INTEGER NOT NULL DEFAULT 0,
		protein REAL NOT NULL DEFAULT 0,
		carbs REAL NOT NULL DEFAULT 0,
		fat REAL NOT NULL DEFAULT 0,
		foods TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES customer(id)
	);
	CREATE INDEX IF NOT EXISTS idx_meal_entry_user ON meal_entry(user_id, checkpoint_number, day_number);

	CREATE TABLE IF NOT EXISTS workout_entry (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		day_number INTEGER NOT NULL,
		checkpoint_number INTEGER NOT NULL DEFAULT 0,
		exercise_name TEXT NOT NULL,
		sets INTEGER NOT NULL DEFAULT 0,
		reps INTEGER NOT NULL DEFAULT 0,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		category TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		video_url TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (user_id) REFERENCES customer(id)
	);
	CREATE INDEX IF NOT EXISTS idx_workout_entry_user ON workout_entry(user_id, checkpoint_number, day_number);

	CREATE TABLE IF NOT EXISTS plan (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		checkpoint_number INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		generated_at TEXT NOT NULL,
		reviewed_by TEXT,
		review_comment TEXT,
		reviewed_at TEXT,
		FOREIGN KEY (customer_id) REFERENCES customer(id)
	);

	CREATE TABLE IF NOT EXISTS feedback (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		received_at TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'new',
		advisor_comment TEXT,
		reviewed_by TEXT,
		reviewed_at TEXT,
		FOREIGN KEY (customer_id) REFERENCES customer(id)
	);

	CREATE TABLE IF NOT EXISTS policy (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`},
	{version: 2, name: "advisor profile and settings", stmts: `
	CREATE TABLE IF NOT EXISTS advisor_profile (
		account_id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		specialties TEXT NOT NULL DEFAULT '[]',
		phone TEXT NOT NULL DEFAULT '',
		avatar_url TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS advisor_settings (
		account_id TEXT PRIMARY KEY,
		notify_new_feedback INTEGER NOT NULL DEFAULT 1,
		notify_plan_ready INTEGER NOT NULL DEFAULT 1,
		timezone TEXT NOT NULL DEFAULT 'UTC',
		items_per_page INTEGER NOT NULL DEFAULT 20,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (account_id) REFERENCES account(id)
	);
	`},
	{version: 3, name: "audit and outbox", stmts: `
	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		actor_id TEXT NOT NULL,
		actor_email TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	`},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an unmigrated database.
// PRE: db is a valid database connection
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// A file-backed database is copied to "<dbPath>.bak-v<N>" before the first
// pending step runs.
// PRE: db is a valid database connection
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current >= LatestSchemaVersion() {
		return nil
	}

	if err := backupBeforeMigrate(db, dbPath, current); err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmts); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)`,
			m.version, m.name, time.Now().UTC().Format(time.RFC3339)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

// backupBeforeMigrate snapshots a non-empty file database with VACUUM INTO.
func backupBeforeMigrate(db *sql.DB, dbPath string, current int) error {
	if current == 0 || dbPath == "" || dbPath == ":memory:" {
		return nil
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil
	}
	backup := fmt.Sprintf("%s.bak-v%d", dbPath, current)
	if _, err := os.Stat(backup); err == nil {
		return nil
	}
	if _, err := db.Exec(`VACUUM INTO ?`, backup); err != nil {
		return fmt.Errorf("failed to back up database before migration: %w", err)
	}
	slog.Info("schema_backup_written", "path", backup, "from_version", current)
	return nil
}
