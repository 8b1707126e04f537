package store

import (
	"database/sql"
	"fmt"
)

// DayRecord is the full detail for one diary date across all relations,
// shaped for the daily JSON report.
type DayRecord struct {
	DiaryDate          string                `json:"diary_date"`
	Activities         []ActivityRow         `json:"activities"`
	Personnel          []PersonnelRow        `json:"personnel"`
	DelaysIssues       []DelayIssueRow       `json:"delays_issues"`
	SupervisorComments []SupervisorRow       `json:"supervisor_comments"`
	ExtensionNotes     []ExtensionNoteRow    `json:"supervisor_extension_notes"`
	FallbackActivities []FallbackActivityRow `json:"fallback_activities"`
}

type ActivityRow struct {
	Activity   string `json:"activity"`
	SourceFile string `json:"source_file"`
	Worksheet  string `json:"worksheet"`
}

type PersonnelRow struct {
	TeamType   string  `json:"team_type"`
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	Hours      float64 `json:"hours"`
	SourceFile string  `json:"source_file"`
	Worksheet  string  `json:"worksheet"`
}

type DelayIssueRow struct {
	EntryType   string  `json:"entry_type"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
	Comments    string  `json:"comments"`
	SourceFile  string  `json:"source_file"`
	Worksheet   string  `json:"worksheet"`
}

type SupervisorRow struct {
	WorkerOrGroup string   `json:"worker_or_group"`
	Hours         *float64 `json:"hours"`
	Machine       string   `json:"machine"`
	StartSMU      string   `json:"start_smu"`
	EndSMU        string   `json:"end_smu"`
	MachineHours  string   `json:"machine_hours"`
	Location      string   `json:"location"`
	Activity      string   `json:"activity"`
	Material      string   `json:"material"`
	Comment       string   `json:"comment"`
	SourceFile    string   `json:"source_file"`
	Worksheet     string   `json:"worksheet"`
}

type ExtensionNoteRow struct {
	Note       string `json:"note"`
	SourceFile string `json:"source_file"`
	Worksheet  string `json:"worksheet"`
}

type FallbackActivityRow struct {
	Activity   string `json:"activity"`
	SourceFile string `json:"source_file"`
	Worksheet  string `json:"worksheet"`
}

// DiaryDates returns every date that has at least one row in any relation,
// in ascending order.
func (db *DB) DiaryDates() ([]string, error) {
	rows, err := db.Query(`
		SELECT diary_date FROM (
			SELECT diary_date FROM activities
			UNION SELECT diary_date FROM personnel
			UNION SELECT diary_date FROM delays_issues
			UNION SELECT diary_date FROM supervisor_comments
			UNION SELECT diary_date FROM supervisor_extension_notes
			UNION SELECT diary_date FROM client_fallback_activities
		)
		ORDER BY diary_date`)
	if err != nil {
		return nil, fmt.Errorf("querying diary dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning diary date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// Day assembles the complete record for one diary date.
func (db *DB) Day(diaryDate string) (*DayRecord, error) {
	day := &DayRecord{
		DiaryDate:          diaryDate,
		Activities:         []ActivityRow{},
		Personnel:          []PersonnelRow{},
		DelaysIssues:       []DelayIssueRow{},
		SupervisorComments: []SupervisorRow{},
		ExtensionNotes:     []ExtensionNoteRow{},
		FallbackActivities: []FallbackActivityRow{},
	}

	err := db.scanRows(
		`SELECT activity, source_file, worksheet FROM activities
		 WHERE diary_date = ? ORDER BY source_file, worksheet, activity`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r ActivityRow
			if err := rows.Scan(&r.Activity, &r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			day.Activities = append(day.Activities, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	err = db.scanRows(
		`SELECT team_type, name, position, hours, source_file, worksheet FROM personnel
		 WHERE diary_date = ? ORDER BY team_type, name`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r PersonnelRow
			if err := rows.Scan(&r.TeamType, &r.Name, &r.Position, &r.Hours, &r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			day.Personnel = append(day.Personnel, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading personnel: %w", err)
	}

	err = db.scanRows(
		`SELECT entry_type, label, description, qty, comments, source_file, worksheet FROM delays_issues
		 WHERE diary_date = ? ORDER BY entry_type, label`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r DelayIssueRow
			if err := rows.Scan(&r.EntryType, &r.Label, &r.Description, &r.Qty, &r.Comments, &r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			day.DelaysIssues = append(day.DelaysIssues, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading delays/issues: %w", err)
	}

	err = db.scanRows(
		`SELECT worker_or_group, hours, machine, start_smu, end_smu, machine_hours,
		        location, activity, material, comment, source_file, worksheet
		 FROM supervisor_comments
		 WHERE diary_date = ? ORDER BY worker_or_group`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r SupervisorRow
			var hours sql.NullFloat64
			if err := rows.Scan(&r.WorkerOrGroup, &hours, &r.Machine, &r.StartSMU, &r.EndSMU,
				&r.MachineHours, &r.Location, &r.Activity, &r.Material, &r.Comment,
				&r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			if hours.Valid {
				r.Hours = &hours.Float64
			}
			day.SupervisorComments = append(day.SupervisorComments, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading supervisor comments: %w", err)
	}

	err = db.scanRows(
		`SELECT note, source_file, worksheet FROM supervisor_extension_notes
		 WHERE diary_date = ? ORDER BY source_file, worksheet`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r ExtensionNoteRow
			if err := rows.Scan(&r.Note, &r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			day.ExtensionNotes = append(day.ExtensionNotes, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading extension notes: %w", err)
	}

	err = db.scanRows(
		`SELECT activity, source_file, worksheet FROM client_fallback_activities
		 WHERE diary_date = ? ORDER BY source_file, worksheet, activity`,
		[]any{diaryDate},
		func(rows *sql.Rows) error {
			var r FallbackActivityRow
			if err := rows.Scan(&r.Activity, &r.SourceFile, &r.Worksheet); err != nil {
				return err
			}
			day.FallbackActivities = append(day.FallbackActivities, r)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("loading fallback activities: %w", err)
	}

	return day, nil
}

func (db *DB) scanRows(query string, args []any, scan func(*sql.Rows) error) error {
	rows, err := db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
