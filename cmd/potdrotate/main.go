package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/potdrotate/internal/config"
	"github.com/TobiSchelling/potdrotate/internal/database"
	"github.com/TobiSchelling/potdrotate/internal/dates"
	"github.com/TobiSchelling/potdrotate/internal/logging"
	"github.com/TobiSchelling/potdrotate/internal/pages"
	"github.com/TobiSchelling/potdrotate/internal/pipeline"
	"github.com/TobiSchelling/potdrotate/internal/wikitext"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "potdrotate",
	Short:   "Rotate the picture of the day",
	Long:    "potdrotate copies the upcoming Commons pictures of the day and their descriptions onto a Wikipedia main page template.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		switch {
		case err == nil:
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		case configPath == "" && (cmd.Name() == "dates" || cmd.Name() == "simplify"):
			// The text utilities work without a config file.
			cfg = config.Default()
		default:
			return err
		}

		level := logging.ParseLevel(cfg.Logging.Level)
		if verbose {
			level = slog.LevelDebug
		}
		logging.Init(os.Stderr, logging.ParseFormat(cfg.Logging.Format), level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(datesCmd)
	rootCmd.AddCommand(simplifyCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("potdrotate", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/potdrotate/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to select the wiki and the page directories.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and run history status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		sourceCount, err := countPages(cfg.GetSourceDir())
		if err != nil {
			return err
		}
		targetCount, err := countPages(cfg.GetTargetDir())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Today: %s\n\n", dates.FromTime(time.Now()))
		fmt.Fprintln(out, "Configuration:")
		fmt.Fprintf(out, "  Language: %s\n", cfg.Lang)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(out, "  Problem: %v\n", err)
		}
		fmt.Fprintf(out, "  Source pages: %s (%d pages)\n", cfg.GetSourceDir(), sourceCount)
		fmt.Fprintf(out, "  Target pages: %s (%d pages)\n", cfg.GetTargetDir(), targetCount)
		fmt.Fprintf(out, "  Database: %s\n", db.Path())
		fmt.Fprintln(out, "\nRuns:")
		fmt.Fprintf(out, "  Total: %d\n", stats.TotalRuns)
		fmt.Fprintf(out, "  With saves: %d\n", stats.SavedRuns)
		fmt.Fprintf(out, "  Days updated: %d\n", stats.DaysUpdated)
		fmt.Fprintf(out, "  Main page purges: %d\n", stats.Purges)
		if stats.LastRunDate != "" {
			fmt.Fprintf(out, "  Last run: %s\n", stats.LastRunDate)
		}
		return nil
	},
}

// --- dates command ---

var datesLang string

var datesCmd = &cobra.Command{
	Use:   "dates <date>...",
	Short: "Render dates the way edit summaries show them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, err := cfg.LocaleSet().Lookup(langOrDefault(datesLang))
		if err != nil {
			return err
		}
		days, err := dates.ParseDates(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dates.Render(days, locale))
		return nil
	},
}

func init() {
	datesCmd.Flags().StringVarP(&datesLang, "lang", "l", "", "Locale (default: configured lang)")
}

// --- simplify command ---

var simplifyLang string

var simplifyCmd = &cobra.Command{
	Use:   "simplify [wikitext...]",
	Short: "Normalize wikitext links for a home wiki (reads stdin without arguments)",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			text = string(data)
		}

		out := wikitext.Simplify(text, langOrDefault(simplifyLang))
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	simplifyCmd.Flags().StringVarP(&simplifyLang, "lang", "l", "", "Home language (default: configured lang)")
}

// --- run command ---

var (
	dryRun    bool
	todayFlag string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rotation: collect -> descriptions -> images -> save -> purge -> record",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := resolveToday(todayFlag)
		if err != nil {
			return err
		}

		source, err := pages.NewDirStore(cfg.GetSourceDir())
		if err != nil {
			return err
		}
		target, err := pages.NewDirStore(cfg.GetTargetDir())
		if err != nil {
			return err
		}

		var db *database.DB
		if !dryRun {
			db, err = openDB()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		pipe, err := pipeline.New(cfg, db, source, target)
		if err != nil {
			return err
		}
		ctx := context.Background()

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(ctx, today)
		} else {
			result = pipe.Run(ctx, today)
		}

		fmt.Printf("Rotation for %s (%s)\n", today, cfg.Lang)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/6: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		for _, d := range result.Diffs {
			fmt.Printf("\n--- %s\n%s", d.Title, d.Diff)
		}

		return result.Err()
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the edits without saving them")
	runCmd.Flags().StringVar(&todayFlag, "today", "", "Run as if today were this date")
}

// resolveToday parses an explicit date or falls back to the local date.
func resolveToday(s string) (dates.CalendarDate, error) {
	if s == "" {
		return dates.FromTime(time.Now()), nil
	}
	days, err := dates.ParseDates([]string{s})
	if err != nil {
		return dates.CalendarDate{}, fmt.Errorf("invalid --today: %w", err)
	}
	return days[0], nil
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent rotation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.GetRecentRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded yet. Start one with: potdrotate run")
			return nil
		}

		for _, r := range runs {
			icon := " "
			if r.Saved() {
				icon = "*"
			}
			when := r.RunDate
			if r.CreatedAt != nil {
				if t, err := time.Parse(time.DateTime, *r.CreatedAt); err == nil {
					when = humanize.Time(t)
				}
			}
			fmt.Printf("  [%d] %s %s %-4s %s\n", r.ID, icon, r.RunDate, r.Lang, when)
			if r.Summary != "" {
				fmt.Printf("        %s\n", r.Summary)
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

func langOrDefault(lang string) string {
	if lang != "" {
		return lang
	}
	return cfg.Lang
}

func countPages(dir string) (int, error) {
	store, err := pages.NewDirStore(dir)
	if err != nil {
		return 0, err
	}
	titles, err := store.List()
	if err != nil {
		return 0, err
	}
	return len(titles), nil
}

func openDB() (*database.DB, error) {
	return database.Open(cfg.DBPath())
}
