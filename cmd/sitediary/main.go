package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitediary/sitediary/internal/audit"
	"github.com/sitediary/sitediary/internal/config"
	"github.com/sitediary/sitediary/internal/dedupe"
	"github.com/sitediary/sitediary/internal/ingest"
	"github.com/sitediary/sitediary/internal/report"
	"github.com/sitediary/sitediary/internal/slim"
	"github.com/sitediary/sitediary/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "sitediary",
	Short: "Construction site diary ingestion and reporting",
	Long:  "sitediary sweeps daily report spreadsheets into a SQLite diary database, then reports, reviews, and audits what it found.",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Sweep report spreadsheets into the diary database",
	RunE:  runIngest,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run consistency checks over the diary database",
	RunE:  runValidate,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the daily JSON report and CSV summary",
	RunE:  runReport,
}

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Write cross-copy duplicate review reports",
	RunE:  runDedupe,
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Spot-check extracted supervisor comments with GPT",
	RunE:  runAudit,
}

var slimCmd = &cobra.Command{
	Use:   "slim",
	Short: "Strip embedded images from oversized workbooks",
	RunE:  runSlim,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the config file in your editor",
	RunE:  runConfig,
}

func init() {
	for _, cmd := range []*cobra.Command{ingestCmd, validateCmd, reportCmd, dedupeCmd, auditCmd, slimCmd} {
		cmd.Flags().String("root", "", "Project root containing the report directories")
		cmd.Flags().String("db", "", "Path to the diary database")
	}

	ingestCmd.Flags().String("client-dir", "", "Directory of client report workbooks")
	ingestCmd.Flags().String("supervisor-dir", "", "Directory of supervisor report workbooks")
	ingestCmd.Flags().Bool("reset", false, "Delete existing rows for every touched date before inserting")
	ingestCmd.Flags().Bool("use-supervisor", false, "Parse supervisor reports")
	ingestCmd.Flags().Bool("skip-supervisor", false, "Skip supervisor reports")
	ingestCmd.Flags().Bool("use-client-fallback", false, "Record client activities as fallback on uncovered dates")
	ingestCmd.Flags().Bool("skip-client-fallback", false, "Never record fallback activities")

	reportCmd.Flags().String("out", "", "Output directory for generated reports")
	dedupeCmd.Flags().String("out", "", "Output directory for review CSVs")

	auditCmd.Flags().String("model", "", "OpenAI model to review with")
	auditCmd.Flags().Int("samples", 0, "Number of random comments to review")
	auditCmd.Flags().Bool("apply", false, "Record verdicts on the rows (default is dry-run)")

	slimCmd.Flags().Float64("threshold", slim.DefaultThresholdMB, "Only slim workbooks larger than this many MB")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(dedupeCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(slimCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// loadConfig layers command flags over the config file: a flag set on
// the command line always wins.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("root"); v != "" {
		cfg.Paths.Root = v
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.Paths.Database = v
	}
	if cmd.Flags().Lookup("client-dir") != nil {
		if v, _ := cmd.Flags().GetString("client-dir"); v != "" {
			cfg.Paths.ClientDir = v
		}
		if v, _ := cmd.Flags().GetString("supervisor-dir"); v != "" {
			cfg.Paths.SupervisorDir = v
		}
	}
	if cmd.Flags().Lookup("out") != nil {
		if v, _ := cmd.Flags().GetString("out"); v != "" {
			cfg.Paths.OutputDir = v
		}
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Paths.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func reportValidation(err error) error {
	var vErr *ingest.ValidationError
	if errors.As(err, &vErr) {
		fmt.Println(errorStyle.Render("Validation failed:"))
		for _, issue := range vErr.Issues {
			fmt.Println(warningStyle.Render("  - " + issue))
		}
		return fmt.Errorf("%d validation issue(s)", len(vErr.Issues))
	}
	return err
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	useSupervisor := cfg.Ingest.UseSupervisor
	if on, _ := cmd.Flags().GetBool("use-supervisor"); on {
		useSupervisor = true
	}
	if off, _ := cmd.Flags().GetBool("skip-supervisor"); off {
		useSupervisor = false
	}
	useFallback := cfg.Ingest.UseFallback
	if on, _ := cmd.Flags().GetBool("use-client-fallback"); on {
		useFallback = true
	}
	if off, _ := cmd.Flags().GetBool("skip-client-fallback"); off {
		useFallback = false
	}
	reset, _ := cmd.Flags().GetBool("reset")

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := ingest.Run(db, ingest.Options{
		Root:          cfg.Paths.Root,
		ClientDir:     cfg.Paths.ClientDir,
		SupervisorDir: cfg.Paths.SupervisorDir,
		Reset:         reset,
		UseSupervisor: useSupervisor,
		UseFallback:   useFallback,
		Logger:        newLogger(),
	})
	if stats != nil {
		printStats(stats, useSupervisor, useFallback)
	}
	if err != nil {
		return reportValidation(err)
	}
	fmt.Println(successStyle.Render("Ingestion complete."))
	return nil
}

func printStats(stats *ingest.Stats, useSupervisor, useFallback bool) {
	lines := []string{
		fmt.Sprintf("Activities        %d", stats.Activities),
		fmt.Sprintf("Personnel         %d", stats.Personnel),
		fmt.Sprintf("Delays/issues     %d", stats.DelaysIssues),
	}
	if useSupervisor {
		lines = append(lines,
			fmt.Sprintf("Supervisor rows   %d", stats.Supervisor),
			fmt.Sprintf("Extension notes   %d", stats.ExtensionNotes),
		)
	}
	if useFallback {
		lines = append(lines, fmt.Sprintf("Fallback          %d", stats.Fallback))
	}
	fmt.Println(titleStyle.Render("New rows"))
	fmt.Println(boxStyle.Render(strings.Join(lines, "\n")))
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := ingest.Validate(db, cfg.Ingest.UseSupervisor || cfg.Ingest.UseFallback); err != nil {
		return reportValidation(err)
	}
	fmt.Println(successStyle.Render("All checks passed."))
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	summary, err := report.Write(db, cfg.Paths.OutputDir)
	if err != nil {
		return fmt.Errorf("generating reports: %w", err)
	}

	fmt.Printf("Wrote %d diary days:\n", summary.Days)
	fmt.Println(dimStyle.Render("  " + summary.JSONPath))
	fmt.Println(dimStyle.Render("  " + summary.CSVPath))
	return nil
}

func runDedupe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sweep, err := dedupe.Gather(cfg.Paths.Root, newLogger())
	if err != nil {
		return fmt.Errorf("sweeping workbooks: %w", err)
	}
	if err := dedupe.WriteReports(sweep, cfg.Paths.OutputDir); err != nil {
		return fmt.Errorf("writing review reports: %w", err)
	}

	fmt.Printf("Reviewed %d activity and %d personnel entries across %d dates.\n",
		len(sweep.Activities), len(sweep.Personnel), len(sweep.DateSources))
	for _, issue := range sweep.Issues {
		fmt.Println(warningStyle.Render("  " + issue))
	}
	fmt.Println(dimStyle.Render("Review CSVs written to " + cfg.Paths.OutputDir))
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Audit.Model = v
	}
	if v, _ := cmd.Flags().GetInt("samples"); v > 0 {
		cfg.Audit.Samples = v
	}
	apply, _ := cmd.Flags().GetBool("apply")

	var reviewer audit.Reviewer
	if apply {
		if cfg.Audit.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY not set — export it or add it to .env")
		}
		reviewer = audit.NewOpenAIReviewer(cfg.Audit.APIKey, cfg.Audit.Model)
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	totals, err := audit.Run(context.Background(), db, reviewer, audit.Options{
		Model:   cfg.Audit.Model,
		Samples: cfg.Audit.Samples,
		DryRun:  !apply,
		Logger:  newLogger(),
	})
	if err != nil {
		return fmt.Errorf("running audit: %w", err)
	}

	fmt.Println(titleStyle.Render("Audit results"))
	fmt.Println(boxStyle.Render(strings.Join([]string{
		fmt.Sprintf("Audited  %d", totals.Audited),
		fmt.Sprintf("Pass     %d", totals.Pass),
		fmt.Sprintf("Flag     %d", totals.Flag),
		fmt.Sprintf("Errors   %d", totals.Errors),
	}, "\n")))
	if !apply {
		fmt.Println(dimStyle.Render("Dry run: nothing sent. Re-run with --apply to call the API and record verdicts."))
	}
	return nil
}

func runSlim(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	threshold, _ := cmd.Flags().GetFloat64("threshold")

	result, err := slim.Run(cfg.Paths.Root, threshold, newLogger())
	if err != nil {
		return fmt.Errorf("slimming workbooks: %w", err)
	}

	if len(result.Files) == 0 {
		fmt.Printf("No workbooks over %.0f MB found.\n", threshold)
		return nil
	}
	for _, f := range result.Files {
		fmt.Printf("  %s: %.2f MB -> %.2f MB (%d images removed)\n",
			f.Path, f.OriginalMB, f.SlimmedMB, f.ImagesRemoved)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("Saved %.2f MB total.", result.SavedMB)))
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
