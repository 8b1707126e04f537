package ingest

import (
	"fmt"
	"strings"

	"github.com/sitediary/sitediary/internal/store"
)

// ValidationError aggregates every consistency violation found in one
// pass, so a single bad date cannot hide the others.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("ingestion validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Validate runs the post-ingestion consistency checks over the persisted
// store: no rows without a diary date, no fallback/supervisor overlap,
// and (when requireCoverage is set) every client-reported date backed by
// supervisor or fallback data with fallback counts bounded by activity
// counts.
func Validate(db *store.DB, requireCoverage bool) error {
	var issues []string

	for _, table := range store.Tables {
		var nulls int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE diary_date IS NULL OR diary_date = ''", table)
		if err := db.QueryRow(query).Scan(&nulls); err != nil {
			return fmt.Errorf("checking %s for missing dates: %w", table, err)
		}
		if nulls > 0 {
			issues = append(issues, fmt.Sprintf("%s has %d rows with missing diary_date", table, nulls))
		}
	}

	var conflicts int
	err := db.QueryRow(`
		SELECT COUNT(*)
		FROM client_fallback_activities
		WHERE diary_date IN (SELECT DISTINCT diary_date FROM supervisor_comments)`).Scan(&conflicts)
	if err != nil {
		return fmt.Errorf("checking fallback/supervisor overlap: %w", err)
	}
	if conflicts > 0 {
		issues = append(issues, "fallback activities include dates that also have supervisor reports")
	}

	if requireCoverage {
		uncovered, err := uncoveredDates(db)
		if err != nil {
			return err
		}
		if len(uncovered) > 0 {
			shown := uncovered
			suffix := ""
			if len(shown) > 10 {
				shown = shown[:10]
				suffix = "..."
			}
			issues = append(issues, "missing supervisor and fallback coverage on dates: "+strings.Join(shown, ", ")+suffix)
		}
	}

	excessive, err := excessiveFallback(db)
	if err != nil {
		return err
	}
	if len(excessive) > 0 {
		shown := excessive
		suffix := ""
		if len(shown) > 5 {
			shown = shown[:5]
			suffix = "..."
		}
		issues = append(issues, "fallback counts exceed activity counts on dates: "+strings.Join(shown, ", ")+suffix)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func uncoveredDates(db *store.DB) ([]string, error) {
	rows, err := db.Query(`
		WITH source_dates AS (
			SELECT diary_date FROM activities
			UNION SELECT diary_date FROM personnel
			UNION SELECT diary_date FROM delays_issues
		)
		SELECT diary_date
		FROM source_dates
		WHERE diary_date NOT IN (
			SELECT diary_date FROM supervisor_comments
			UNION SELECT diary_date FROM supervisor_extension_notes
			UNION SELECT diary_date FROM client_fallback_activities
		)
		ORDER BY diary_date`)
	if err != nil {
		return nil, fmt.Errorf("checking coverage: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning uncovered date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func excessiveFallback(db *store.DB) ([]string, error) {
	rows, err := db.Query(`
		WITH fallback_counts AS (
			SELECT diary_date, COUNT(*) AS cnt FROM client_fallback_activities GROUP BY diary_date
		),
		activity_counts AS (
			SELECT diary_date, COUNT(*) AS cnt FROM activities GROUP BY diary_date
		)
		SELECT f.diary_date, f.cnt, a.cnt
		FROM fallback_counts f
		JOIN activity_counts a ON a.diary_date = f.diary_date
		WHERE f.cnt > a.cnt
		ORDER BY f.diary_date`)
	if err != nil {
		return nil, fmt.Errorf("checking fallback counts: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var d string
		var fallbackCount, activityCount int
		if err := rows.Scan(&d, &fallbackCount, &activityCount); err != nil {
			return nil, fmt.Errorf("scanning fallback count: %w", err)
		}
		entries = append(entries, fmt.Sprintf("%s (fallback %d > activities %d)", d, fallbackCount, activityCount))
	}
	return entries, rows.Err()
}
