package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/sitediary/sitediary/internal/extract"
	"github.com/sitediary/sitediary/internal/store"
)

// Options controls one ingestion run. ClientDir and SupervisorDir are
// resolved under Root unless given as absolute paths.
type Options struct {
	Root          string
	ClientDir     string
	SupervisorDir string
	Reset         bool
	UseSupervisor bool
	UseFallback   bool
	Logger        *slog.Logger
}

func resolveUnderRoot(root, dir string) string {
	if dir == "" {
		return root
	}
	if root == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Stats counts rows actually inserted, not rows seen: a duplicate landing
// on an existing row is a no-op and does not count.
type Stats struct {
	Activities     int
	Personnel      int
	DelaysIssues   int
	Supervisor     int
	ExtensionNotes int
	Fallback       int
}

type clientSheet struct {
	date       time.Time
	sourceFile string
	worksheet  string
	activities []string
	personnel  []extract.PersonnelEntry
	delays     []extract.DelayEntry
	incidents  []extract.IncidentEntry
}

type supervisorSheet struct {
	date       time.Time
	sourceFile string
	worksheet  string
	comments   []extract.SupervisorComment
	notes      []string
}

type fallbackActivity struct {
	date       time.Time
	text       string
	sourceFile string
	worksheet  string
}

// Run performs a full sweep-then-persist cycle: every sheet of every
// workbook is extracted into memory first, and only then does the single
// serialized persistence phase begin. Validation runs last, over the
// whole store.
func Run(db *store.DB, opts Options) (*Stats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clientSheets, err := parseClientSheets(resolveUnderRoot(opts.Root, opts.ClientDir), opts.Root, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing client reports: %w", err)
	}

	var supervisorSheets []supervisorSheet
	if opts.UseSupervisor {
		supervisorSheets, err = parseSupervisorSheets(resolveUnderRoot(opts.Root, opts.SupervisorDir), opts.Root, logger)
		if err != nil {
			return nil, fmt.Errorf("parsing supervisor reports: %w", err)
		}
	}

	// Dates with at least one supervisor comment or extension note are
	// covered; fallback extraction skips them entirely rather than
	// filtering afterwards.
	covered := map[string]bool{}
	for _, sheet := range supervisorSheets {
		if len(sheet.comments) > 0 || len(sheet.notes) > 0 {
			covered[extract.ISODate(sheet.date)] = true
		}
	}

	var fallback []fallbackActivity
	if opts.UseFallback {
		skip := map[string]bool{}
		if opts.UseSupervisor {
			skip = covered
		}
		fallback = collectFallback(clientSheets, skip)
	}

	touched := map[string]bool{}
	for _, sheet := range clientSheets {
		touched[extract.ISODate(sheet.date)] = true
	}
	for _, sheet := range supervisorSheets {
		touched[extract.ISODate(sheet.date)] = true
	}
	for _, entry := range fallback {
		touched[extract.ISODate(entry.date)] = true
	}

	if opts.Reset {
		dates := make([]string, 0, len(touched))
		for d := range touched {
			dates = append(dates, d)
		}
		sort.Strings(dates)
		logger.Info("resetting diary dates before ingest", "dates", len(dates))
		if err := db.DeleteDates(dates); err != nil {
			return nil, fmt.Errorf("resetting dates: %w", err)
		}
	}

	stats := &Stats{}
	if err := ingestClient(db, clientSheets, stats); err != nil {
		return nil, err
	}
	if opts.UseSupervisor {
		if err := ingestSupervisor(db, supervisorSheets, stats); err != nil {
			return nil, err
		}
	}
	if opts.UseFallback {
		if err := ingestFallback(db, fallback, stats); err != nil {
			return nil, err
		}
	}

	if err := Validate(db, opts.UseSupervisor || opts.UseFallback); err != nil {
		return stats, err
	}
	return stats, nil
}

func parseClientSheets(dir, root string, logger *slog.Logger) ([]clientSheet, error) {
	var sheets []clientSheet
	err := extract.VisitSheets(dir, root, logger, func(v extract.SheetVisit) {
		if !v.HasDate {
			return
		}
		sheets = append(sheets, clientSheet{
			date:       v.Date,
			sourceFile: v.Path,
			worksheet:  v.Sheet,
			activities: extract.Activities(v.Rows),
			personnel:  extract.Personnel(v.Rows),
			delays:     extract.Delays(v.Rows),
			incidents:  extract.Incidents(v.Rows),
		})
	})
	return sheets, err
}

func parseSupervisorSheets(dir, root string, logger *slog.Logger) ([]supervisorSheet, error) {
	var sheets []supervisorSheet
	err := extract.VisitSheets(dir, root, logger, func(v extract.SheetVisit) {
		if !v.HasDate {
			return
		}
		sheets = append(sheets, supervisorSheet{
			date:       v.Date,
			sourceFile: v.Path,
			worksheet:  v.Sheet,
			comments:   extract.SupervisorComments(v.Grid),
			notes:      extract.ExtensionNotes(v.Grid),
		})
	})
	return sheets, err
}

// collectFallback keeps client production lines only for uncovered dates,
// deduplicated per date by normalized text, ordered by date.
func collectFallback(sheets []clientSheet, skipDates map[string]bool) []fallbackActivity {
	grouped := map[string][]fallbackActivity{}
	seen := map[string]map[string]bool{}
	for _, sheet := range sheets {
		iso := extract.ISODate(sheet.date)
		if skipDates[iso] {
			continue
		}
		for _, text := range sheet.activities {
			norm := extract.NormalizeText(text)
			if norm == "" {
				continue
			}
			if seen[iso] == nil {
				seen[iso] = map[string]bool{}
			}
			if seen[iso][norm] {
				continue
			}
			seen[iso][norm] = true
			grouped[iso] = append(grouped[iso], fallbackActivity{
				date:       sheet.date,
				text:       text,
				sourceFile: sheet.sourceFile,
				worksheet:  sheet.worksheet,
			})
		}
	}
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	var entries []fallbackActivity
	for _, d := range dates {
		entries = append(entries, grouped[d]...)
	}
	return entries
}

type personnelKey struct {
	team     string
	name     string
	position string
	hours    float64
}

type delayKey struct {
	entryType string
	label     string
	qty       float64
	comments  string
}

// ingestClient persists client extraction grouped by diary date. Within a
// date, sheets are visited in deterministic (file, sheet) order and each
// logical entry is persisted once, keyed by its normalized form, so the
// first-seen original text wins.
func ingestClient(db *store.DB, sheets []clientSheet, stats *Stats) error {
	grouped := map[string][]clientSheet{}
	for _, sheet := range sheets {
		iso := extract.ISODate(sheet.date)
		grouped[iso] = append(grouped[iso], sheet)
	}

	for iso, dateSheets := range grouped {
		sort.Slice(dateSheets, func(i, j int) bool {
			if dateSheets[i].sourceFile != dateSheets[j].sourceFile {
				return dateSheets[i].sourceFile < dateSheets[j].sourceFile
			}
			return dateSheets[i].worksheet < dateSheets[j].worksheet
		})

		activitiesSeen := map[string]bool{}
		personnelSeen := map[personnelKey]bool{}
		delaysSeen := map[delayKey]bool{}
		incidentsSeen := map[delayKey]bool{}

		for _, sheet := range dateSheets {
			for _, activity := range sheet.activities {
				norm := extract.NormalizeText(activity)
				if norm == "" || activitiesSeen[norm] {
					continue
				}
				activitiesSeen[norm] = true
				inserted, err := db.InsertActivity(iso, activity, sheet.sourceFile, sheet.worksheet)
				if err != nil {
					return fmt.Errorf("ingesting activity on %s: %w", iso, err)
				}
				if inserted {
					stats.Activities++
				}
			}
			for _, person := range sheet.personnel {
				key := personnelKey{
					team:     extract.NormalizeText(person.Team),
					name:     extract.NormalizeText(person.Name),
					position: extract.NormalizeText(person.Position),
					hours:    person.Hours,
				}
				if personnelSeen[key] {
					continue
				}
				personnelSeen[key] = true
				inserted, err := db.InsertPerson(iso, person.Team, person.Name, person.Position, person.Hours, sheet.sourceFile, sheet.worksheet)
				if err != nil {
					return fmt.Errorf("ingesting personnel on %s: %w", iso, err)
				}
				if inserted {
					stats.Personnel++
				}
			}
			for _, delay := range sheet.delays {
				key := delayKey{entryType: "delay", label: extract.NormalizeText(delay.Description)}
				if delaysSeen[key] {
					continue
				}
				delaysSeen[key] = true
				inserted, err := db.InsertDelayIssue(iso, "delay", "", delay.Description, 0, "", sheet.sourceFile, sheet.worksheet)
				if err != nil {
					return fmt.Errorf("ingesting delay on %s: %w", iso, err)
				}
				if inserted {
					stats.DelaysIssues++
				}
			}
			for _, incident := range sheet.incidents {
				key := delayKey{
					entryType: "issue",
					label:     extract.NormalizeText(incident.Label),
					qty:       incident.Qty,
					comments:  extract.NormalizeText(incident.Comments),
				}
				if incidentsSeen[key] {
					continue
				}
				incidentsSeen[key] = true
				inserted, err := db.InsertDelayIssue(iso, "issue", incident.Label, "", incident.Qty, incident.Comments, sheet.sourceFile, sheet.worksheet)
				if err != nil {
					return fmt.Errorf("ingesting incident on %s: %w", iso, err)
				}
				if inserted {
					stats.DelaysIssues++
				}
			}
		}
	}
	return nil
}

func ingestSupervisor(db *store.DB, sheets []supervisorSheet, stats *Stats) error {
	for _, sheet := range sheets {
		iso := extract.ISODate(sheet.date)
		for _, comment := range sheet.comments {
			inserted, err := db.InsertSupervisorComment(store.SupervisorComment{
				DiaryDate:    iso,
				Label:        comment.Label,
				Hours:        comment.Hours,
				Machine:      comment.Machine,
				StartSMU:     comment.StartSMU,
				EndSMU:       comment.EndSMU,
				MachineHours: comment.MachineHours,
				Location:     comment.Location,
				Activity:     comment.Activity,
				Material:     comment.Material,
				Comment:      comment.Comment,
				SourceFile:   sheet.sourceFile,
				Worksheet:    sheet.worksheet,
			})
			if err != nil {
				return fmt.Errorf("ingesting supervisor comment on %s: %w", iso, err)
			}
			if inserted {
				stats.Supervisor++
			}
		}
		for _, note := range sheet.notes {
			inserted, err := db.InsertExtensionNote(iso, note, sheet.sourceFile, sheet.worksheet)
			if err != nil {
				return fmt.Errorf("ingesting extension note on %s: %w", iso, err)
			}
			if inserted {
				stats.ExtensionNotes++
			}
		}
	}
	return nil
}

func ingestFallback(db *store.DB, entries []fallbackActivity, stats *Stats) error {
	for _, entry := range entries {
		inserted, err := db.InsertFallbackActivity(extract.ISODate(entry.date), entry.text, entry.sourceFile, entry.worksheet)
		if err != nil {
			return fmt.Errorf("ingesting fallback activity: %w", err)
		}
		if inserted {
			stats.Fallback++
		}
	}
	return nil
}
