package dedupe

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sitediary/sitediary/internal/extract"
)

// ActivityEntry is one production line attributed to its source copy.
type ActivityEntry struct {
	DiaryDate  string
	Activity   string
	SourceFile string
	Worksheet  string
}

func (e ActivityEntry) SourceLabel() string {
	return e.SourceFile + "::" + e.Worksheet
}

// PersonnelEntry is one person row attributed to its source copy.
type PersonnelEntry struct {
	DiaryDate  string
	Team       string
	Name       string
	Position   string
	Hours      float64
	SourceFile string
	Worksheet  string
}

func (e PersonnelEntry) SourceLabel() string {
	return e.SourceFile + "::" + e.Worksheet
}

// Sweep holds everything one review pass collects: all entries plus the
// complete set of sources that resolved each diary date.
type Sweep struct {
	Activities  []ActivityEntry
	Personnel   []PersonnelEntry
	DateSources map[string]map[string]bool
	Issues      []string
}

// Gather extracts activities and personnel from every workbook under
// root, recording per-date source coverage. Sheets without a resolvable
// date are reported as coverage gaps, never as hard failures.
func Gather(root string, logger *slog.Logger) (*Sweep, error) {
	sweep := &Sweep{DateSources: map[string]map[string]bool{}}
	visited := 0
	err := extract.VisitSheets(root, root, logger, func(v extract.SheetVisit) {
		visited++
		if !v.HasDate {
			sweep.Issues = append(sweep.Issues, fmt.Sprintf("skipping %s (no diary date found)", v.Source()))
			return
		}
		iso := extract.ISODate(v.Date)
		if sweep.DateSources[iso] == nil {
			sweep.DateSources[iso] = map[string]bool{}
		}
		sweep.DateSources[iso][v.Source()] = true

		for _, text := range extract.ActivityCells(v.Rows) {
			sweep.Activities = append(sweep.Activities, ActivityEntry{
				DiaryDate:  iso,
				Activity:   text,
				SourceFile: v.Path,
				Worksheet:  v.Sheet,
			})
		}
		for _, person := range extract.Personnel(v.Rows) {
			sweep.Personnel = append(sweep.Personnel, PersonnelEntry{
				DiaryDate:  iso,
				Team:       strings.TrimSpace(person.Team),
				Name:       strings.TrimSpace(person.Name),
				Position:   strings.TrimSpace(person.Position),
				Hours:      person.Hours,
				SourceFile: v.Path,
				Worksheet:  v.Sheet,
			})
		}
	})
	if err != nil {
		return nil, err
	}
	if visited == 0 {
		sweep.Issues = append(sweep.Issues, fmt.Sprintf("no Excel files found under %s", root))
	}
	return sweep, nil
}

// WriteReports writes the four review CSVs into outputDir: per-entry and
// per-logical-entry views for both activities and personnel.
func WriteReports(sweep *Sweep, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	activityRows, activitySummary := annotateActivities(sweep)
	personnelRows, personnelSummary := annotatePersonnel(sweep)

	if err := writeCSV(filepath.Join(outputDir, "activities_entries.csv"),
		[]string{"diary_date", "activity_text", "source_file", "worksheet", "unique_to_source", "status", "all_sources_for_date"},
		activityRows); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outputDir, "activities_unique.csv"),
		[]string{"diary_date", "activity_text", "sources_present", "sources_missing", "status", "report_copies_for_date"},
		activitySummary); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(outputDir, "personnel_entries.csv"),
		[]string{"diary_date", "team", "name", "position", "hours", "source_file", "worksheet", "unique_to_source", "status", "all_sources_for_date"},
		personnelRows); err != nil {
		return err
	}
	return writeCSV(filepath.Join(outputDir, "personnel_unique.csv"),
		[]string{"diary_date", "team", "name", "position", "hours", "sources_present", "sources_missing", "status", "report_copies_for_date"},
		personnelSummary)
}

func annotateActivities(sweep *Sweep) (rows, summary [][]string) {
	type groupKey struct {
		date string
		norm string
	}
	grouped := map[groupKey][]ActivityEntry{}
	var order []groupKey
	for _, entry := range sweep.Activities {
		key := groupKey{date: entry.DiaryDate, norm: extract.NormalizeText(entry.Activity)}
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], entry)
	}

	for _, key := range order {
		items := grouped[key]
		allSources := sortedSources(sweep.DateSources[key.date])
		present := presentSources(items)
		missing := missingSources(allSources, present)
		status, unique := Describe(present, missing, len(allSources))

		for _, item := range items {
			rows = append(rows, []string{
				item.DiaryDate,
				item.Activity,
				item.SourceFile,
				item.Worksheet,
				strconv.FormatBool(unique),
				status,
				strings.Join(allSources, "; "),
			})
		}
		summary = append(summary, []string{
			key.date,
			items[0].Activity,
			strings.Join(present, "; "),
			strings.Join(missing, "; "),
			status,
			strconv.Itoa(len(allSources)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return compareColumns(rows[i], rows[j], 0, 1, 2)
	})
	sort.Slice(summary, func(i, j int) bool {
		return compareColumns(summary[i], summary[j], 0, 1)
	})
	return rows, summary
}

func annotatePersonnel(sweep *Sweep) (rows, summary [][]string) {
	type groupKey struct {
		date     string
		team     string
		name     string
		position string
		hours    float64
	}
	grouped := map[groupKey][]PersonnelEntry{}
	var order []groupKey
	for _, entry := range sweep.Personnel {
		key := groupKey{
			date:     entry.DiaryDate,
			team:     extract.NormalizeText(entry.Team),
			name:     extract.NormalizeText(entry.Name),
			position: extract.NormalizeText(entry.Position),
			hours:    entry.Hours,
		}
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], entry)
	}

	for _, key := range order {
		items := grouped[key]
		allSources := sortedSources(sweep.DateSources[key.date])
		var present []string
		for _, item := range items {
			present = append(present, item.SourceLabel())
		}
		present = dedupeOrdered(present)
		sort.Strings(present)
		missing := missingSources(allSources, present)
		status, unique := Describe(present, missing, len(allSources))
		hours := formatHours(items[0].Hours)

		for _, item := range items {
			rows = append(rows, []string{
				item.DiaryDate,
				item.Team,
				item.Name,
				item.Position,
				formatHours(item.Hours),
				item.SourceFile,
				item.Worksheet,
				strconv.FormatBool(unique),
				status,
				strings.Join(allSources, "; "),
			})
		}
		summary = append(summary, []string{
			key.date,
			items[0].Team,
			items[0].Name,
			items[0].Position,
			hours,
			strings.Join(present, "; "),
			strings.Join(missing, "; "),
			status,
			strconv.Itoa(len(allSources)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return compareColumns(rows[i], rows[j], 0, 1, 2, 5)
	})
	sort.Slice(summary, func(i, j int) bool {
		return compareColumns(summary[i], summary[j], 0, 1, 2)
	})
	return rows, summary
}

func presentSources(items []ActivityEntry) []string {
	var labels []string
	for _, item := range items {
		labels = append(labels, item.SourceLabel())
	}
	labels = dedupeOrdered(labels)
	sort.Strings(labels)
	return labels
}

func sortedSources(set map[string]bool) []string {
	var sources []string
	for s := range set {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}

func missingSources(all, present []string) []string {
	presentSet := map[string]bool{}
	for _, s := range present {
		presentSet[s] = true
	}
	var missing []string
	for _, s := range all {
		if !presentSet[s] {
			missing = append(missing, s)
		}
	}
	return missing
}

func compareColumns(a, b []string, cols ...int) bool {
	for _, c := range cols {
		if a[c] != b[c] {
			return a[c] < b[c]
		}
	}
	return false
}

func formatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}
