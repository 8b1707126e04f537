package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// Open opens (creating if needed) the diary database at path and brings
// the schema up to date.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &DB{db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

// Tables lists every diary relation, all keyed by diary_date.
var Tables = []string{
	"activities",
	"personnel",
	"delays_issues",
	"supervisor_comments",
	"supervisor_extension_notes",
	"client_fallback_activities",
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			activity TEXT NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			UNIQUE(diary_date, activity)
		)`,
		`CREATE TABLE IF NOT EXISTS personnel (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			team_type TEXT NOT NULL,
			name TEXT NOT NULL,
			position TEXT NOT NULL,
			hours REAL NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			UNIQUE(diary_date, team_type, name)
		)`,
		`CREATE TABLE IF NOT EXISTS delays_issues (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			entry_type TEXT NOT NULL CHECK(entry_type IN ('delay', 'issue')),
			label TEXT NOT NULL,
			description TEXT NOT NULL,
			qty REAL NOT NULL,
			comments TEXT NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			UNIQUE(diary_date, entry_type, label, description, qty, comments)
		)`,
		`CREATE TABLE IF NOT EXISTS supervisor_comments (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			worker_or_group TEXT NOT NULL,
			hours REAL,
			machine TEXT NOT NULL,
			start_smu TEXT NOT NULL,
			end_smu TEXT NOT NULL,
			machine_hours TEXT NOT NULL,
			location TEXT NOT NULL,
			activity TEXT NOT NULL,
			material TEXT NOT NULL,
			comment TEXT NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			audit_status TEXT,
			audit_model TEXT,
			audit_timestamp TEXT,
			audit_notes TEXT,
			UNIQUE(diary_date, worker_or_group, comment, source_file, worksheet)
		)`,
		`CREATE TABLE IF NOT EXISTS supervisor_extension_notes (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			note TEXT NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			UNIQUE(diary_date, note, source_file, worksheet)
		)`,
		`CREATE TABLE IF NOT EXISTS client_fallback_activities (
			id INTEGER PRIMARY KEY,
			diary_date TEXT NOT NULL,
			activity TEXT NOT NULL,
			source_file TEXT NOT NULL,
			worksheet TEXT NOT NULL,
			UNIQUE(diary_date, activity, source_file, worksheet)
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return db.EnsureAuditColumns()
}

// EnsureAuditColumns adds the nullable audit columns to databases created
// before they existed. These columns are populated by the review process
// and must survive every schema change.
func (db *DB) EnsureAuditColumns() error {
	for _, column := range []string{"audit_status", "audit_model", "audit_timestamp", "audit_notes"} {
		if err := db.ensureColumn("supervisor_comments", column, "TEXT"); err != nil {
			return err
		}
	}
	return nil
}

func (db *DB) ensureColumn(table, column, definition string) error {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", table, err)
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition)); err != nil {
		return fmt.Errorf("adding column %s.%s: %w", table, column, err)
	}
	return nil
}

// DeleteDates removes every persisted row for the given diary dates from
// all relations, supporting idempotent re-ingestion of a date subset
// without truncating the store.
func (db *DB) DeleteDates(dates []string) error {
	if len(dates) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dates)), ",")
	args := make([]any, len(dates))
	for i, d := range dates {
		args[i] = d
	}
	for _, table := range Tables {
		query := fmt.Sprintf("DELETE FROM %s WHERE diary_date IN (%s)", table, placeholders)
		if _, err := db.Exec(query, args...); err != nil {
			return fmt.Errorf("deleting dates from %s: %w", table, err)
		}
	}
	return nil
}
