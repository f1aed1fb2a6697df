package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/claude/trainready/internal/analytics"
	"github.com/claude/trainready/internal/config"
	"github.com/claude/trainready/internal/report"
	"github.com/claude/trainready/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options are the persistent flags shared by every subcommand.
type options struct {
	configPath string
	date       string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "trainready-ctl",
		Short:         "Inspect training load and readiness from the command line",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.date, "date", "", "report date YYYY-MM-DD in the configured timezone (default today)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newMigrateCmd(opts))
	root.AddCommand(newReportCmd(opts, "report", "Print the full daily report", func(r *report.DailyReport) any {
		return r
	}))
	root.AddCommand(newReportCmd(opts, "load", "Print weekly TRIMP and fitness/fatigue/form", func(r *report.DailyReport) any {
		return map[string]any{
			"weekly_load": r.WeeklyLoad,
			"load_states": r.LoadStates,
			"current":     r.Current,
			"form_state":  analytics.FormState(r.Current.Form),
		}
	}))
	root.AddCommand(newReportCmd(opts, "zones", "Print the heart-rate zone distribution", func(r *report.DailyReport) any {
		return r.Zones
	}))
	root.AddCommand(newReportCmd(opts, "forecast", "Print readiness and the recovery forecast", func(r *report.DailyReport) any {
		return map[string]any{
			"readiness": r.Readiness,
			"forecast":  r.Forecast,
		}
	}))
	root.AddCommand(newReportCmd(opts, "energy", "Print workout energy per day", func(r *report.DailyReport) any {
		return r.DailyEnergy
	}))
	return root
}

func (o *options) logger(errOut io.Writer) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			_, closeDB, err := storage.Open(cmd.Context(), cfg.Database, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			closeDB()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}

// newReportCmd builds a subcommand that prints a section of the daily report.
func newReportCmd(opts *options, use, short string, section func(*report.DailyReport) any) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rep, err := dailyReport(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(section(rep))
		},
	}
}

func dailyReport(ctx context.Context, opts *options, errOut io.Writer) (*report.DailyReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.logger(errOut)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	rcfg, err := report.ConfigFrom(cfg)
	if err != nil {
		return nil, err
	}
	now, err := reportTime(opts.date, rcfg.Location)
	if err != nil {
		return nil, err
	}

	src, closeDB, err := storage.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	defer closeDB()

	return report.New(src, rcfg, log).Daily(ctx, now)
}

// reportTime returns the end of the given date in loc, or now when empty.
func reportTime(date string, loc *time.Location) (time.Time, error) {
	if date == "" {
		return time.Now().In(loc), nil
	}
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: %w", date, err)
	}
	return day.Add(24*time.Hour - time.Second), nil
}
