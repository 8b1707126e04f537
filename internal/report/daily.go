package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sitediary/sitediary/internal/store"
)

// Files produced by Write, relative to the output directory.
const (
	JSONName = "daily_report.json"
	CSVName  = "daily_report_summary.csv"
)

// Summary describes one generated report pair.
type Summary struct {
	Days     int
	JSONPath string
	CSVPath  string
}

// Write renders every persisted diary date into a detail JSON document
// and a one-row-per-day CSV overview under outputDir.
func Write(db *store.DB, outputDir string) (*Summary, error) {
	dates, err := db.DiaryDates()
	if err != nil {
		return nil, fmt.Errorf("listing diary dates: %w", err)
	}

	days := make([]*store.DayRecord, 0, len(dates))
	for _, date := range dates {
		day, err := db.Day(date)
		if err != nil {
			return nil, fmt.Errorf("assembling %s: %w", date, err)
		}
		days = append(days, day)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	jsonPath := filepath.Join(outputDir, JSONName)
	if err := writeJSON(jsonPath, days); err != nil {
		return nil, err
	}
	csvPath := filepath.Join(outputDir, CSVName)
	if err := writeSummaryCSV(csvPath, days); err != nil {
		return nil, err
	}

	return &Summary{Days: len(days), JSONPath: jsonPath, CSVPath: csvPath}, nil
}

func writeJSON(path string, days []*store.DayRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(days); err != nil {
		return fmt.Errorf("encoding daily report: %w", err)
	}
	return nil
}

func writeSummaryCSV(path string, days []*store.DayRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"diary_date", "activities", "personnel", "delays", "issues",
		"supervisor_comments", "supervisor_extension_notes",
		"fallback_activities", "has_supervisor", "uses_fallback",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for _, day := range days {
		delays, issues := 0, 0
		for _, entry := range day.DelaysIssues {
			if entry.EntryType == "delay" {
				delays++
			} else {
				issues++
			}
		}
		hasSupervisor := len(day.SupervisorComments) > 0 || len(day.ExtensionNotes) > 0
		row := []string{
			day.DiaryDate,
			strconv.Itoa(len(day.Activities)),
			strconv.Itoa(len(day.Personnel)),
			strconv.Itoa(delays),
			strconv.Itoa(issues),
			strconv.Itoa(len(day.SupervisorComments)),
			strconv.Itoa(len(day.ExtensionNotes)),
			strconv.Itoa(len(day.FallbackActivities)),
			strconv.FormatBool(hasSupervisor),
			strconv.FormatBool(len(day.FallbackActivities) > 0),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing summary row for %s: %w", day.DiaryDate, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}
