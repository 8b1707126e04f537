package audit

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sitediary/sitediary/internal/store"
)

// Options controls one audit run. DryRun leaves the store untouched and
// only logs verdicts.
type Options struct {
	Model   string
	Samples int
	DryRun  bool
	Logger  *slog.Logger
}

// Run draws a random sample of persisted supervisor comments, asks the
// reviewer for a verdict on each, and records the verdict on the row.
// In dry-run mode no reviewer call is made at all; the prompts are only
// logged, so no API key is needed. Individual review failures are
// counted, not fatal.
func Run(ctx context.Context, db *store.DB, reviewer Reviewer, opts Options) (*Totals, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	samples, err := fetchSamples(db, opts.Samples)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		logger.Info("no supervisor comments to audit")
		return &Totals{}, nil
	}

	if opts.DryRun {
		for _, sample := range samples {
			logger.Info("dry run, prompt not sent",
				"id", sample.ID,
				"diary_date", sample.DiaryDate,
				"prompt", buildUserPrompt(sample),
			)
		}
		return &Totals{}, nil
	}

	totals := &Totals{}
	for _, sample := range samples {
		totals.Audited++
		verdict, err := reviewer.Review(ctx, sample)
		if err != nil {
			totals.Errors++
			logger.Warn("review failed", "id", sample.ID, "error", err)
			continue
		}

		switch verdict.Status {
		case StatusPass:
			totals.Pass++
		case StatusFlag:
			totals.Flag++
		}
		logger.Info("reviewed supervisor comment",
			"id", sample.ID,
			"diary_date", sample.DiaryDate,
			"status", verdict.Status,
			"notes", verdict.Notes,
		)

		if err := recordVerdict(db, sample.ID, verdict, opts.Model); err != nil {
			return totals, err
		}
	}
	return totals, nil
}

func fetchSamples(db *store.DB, limit int) ([]Sample, error) {
	rows, err := db.Query(`
		SELECT id, diary_date, worker_or_group, hours, machine, start_smu, end_smu,
		       machine_hours, location, activity, material, comment, source_file, worksheet
		FROM supervisor_comments
		ORDER BY RANDOM()
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("sampling supervisor comments: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var hours sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.DiaryDate, &s.Label, &hours, &s.Machine,
			&s.StartSMU, &s.EndSMU, &s.MachineHours, &s.Location, &s.Activity,
			&s.Material, &s.Comment, &s.SourceFile, &s.Worksheet); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		if hours.Valid {
			s.Hours = &hours.Float64
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

func recordVerdict(db *store.DB, id int64, verdict *Verdict, model string) error {
	_, err := db.Exec(`
		UPDATE supervisor_comments
		SET audit_status = ?, audit_model = ?, audit_timestamp = ?, audit_notes = ?
		WHERE id = ?`,
		verdict.Status, model, time.Now().UTC().Format(time.RFC3339), verdict.Notes, id)
	if err != nil {
		return fmt.Errorf("recording verdict for row %d: %w", id, err)
	}
	return nil
}
