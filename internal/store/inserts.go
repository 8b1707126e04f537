package store

import (
	"fmt"
	"strings"
)

// SupervisorComment is one persisted labour-table row. Hours is nil when
// the source cell held nothing numeric.
type SupervisorComment struct {
	DiaryDate    string
	Label        string
	Hours        *float64
	Machine      string
	StartSMU     string
	EndSMU       string
	MachineHours string
	Location     string
	Activity     string
	Material     string
	Comment      string
	SourceFile   string
	Worksheet    string
}

// Every insert below uses INSERT OR IGNORE against the relation's natural
// key: persisting a duplicate is a no-op, not an error, and the boolean
// return tells callers whether a new row actually landed.

func (db *DB) InsertActivity(diaryDate, activity, sourceFile, worksheet string) (bool, error) {
	if activity == "" {
		return false, nil
	}
	return db.insertIgnore(
		`INSERT OR IGNORE INTO activities (diary_date, activity, source_file, worksheet)
		 VALUES (?, ?, ?, ?)`,
		diaryDate, activity, sourceFile, worksheet,
	)
}

func (db *DB) InsertPerson(diaryDate, team, name, position string, hours float64, sourceFile, worksheet string) (bool, error) {
	if name == "" {
		return false, nil
	}
	return db.insertIgnore(
		`INSERT OR IGNORE INTO personnel (diary_date, team_type, name, position, hours, source_file, worksheet)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		diaryDate, team, strings.TrimSpace(name), position, hours, sourceFile, worksheet,
	)
}

func (db *DB) InsertDelayIssue(diaryDate, entryType, label, description string, qty float64, comments, sourceFile, worksheet string) (bool, error) {
	return db.insertIgnore(
		`INSERT OR IGNORE INTO delays_issues
			(diary_date, entry_type, label, description, qty, comments, source_file, worksheet)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		diaryDate, entryType, label, description, qty, comments, sourceFile, worksheet,
	)
}

func (db *DB) InsertSupervisorComment(record SupervisorComment) (bool, error) {
	return db.insertIgnore(
		`INSERT OR IGNORE INTO supervisor_comments
			(diary_date, worker_or_group, hours, machine, start_smu, end_smu, machine_hours, location, activity, material, comment, source_file, worksheet)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.DiaryDate, record.Label, record.Hours, record.Machine,
		record.StartSMU, record.EndSMU, record.MachineHours, record.Location,
		record.Activity, record.Material, record.Comment,
		record.SourceFile, record.Worksheet,
	)
}

func (db *DB) InsertExtensionNote(diaryDate, note, sourceFile, worksheet string) (bool, error) {
	return db.insertIgnore(
		`INSERT OR IGNORE INTO supervisor_extension_notes (diary_date, note, source_file, worksheet)
		 VALUES (?, ?, ?, ?)`,
		diaryDate, note, sourceFile, worksheet,
	)
}

func (db *DB) InsertFallbackActivity(diaryDate, activity, sourceFile, worksheet string) (bool, error) {
	return db.insertIgnore(
		`INSERT OR IGNORE INTO client_fallback_activities (diary_date, activity, source_file, worksheet)
		 VALUES (?, ?, ?, ?)`,
		diaryDate, activity, sourceFile, worksheet,
	)
}

func (db *DB) insertIgnore(query string, args ...any) (bool, error) {
	result, err := db.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("inserting row: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking insert result: %w", err)
	}
	return affected > 0, nil
}
