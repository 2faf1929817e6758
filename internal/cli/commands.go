package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/syswatch/syswatch/internal/config"
	"github.com/syswatch/syswatch/internal/session"
)

var (
	reportDuration time.Duration
	initGlobal     bool
	initForce      bool
)

// snapshotCmd prints one composite snapshot as JSON and exits.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print a single resource snapshot as JSON",
	Long: `Take one composite snapshot of all resource classes and print it to
stdout as JSON. Samples twice with one interval in between so speed fields
derived from counter deltas are meaningful.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		c := buildCore(cfg)
		ctx := cmd.Context()

		// First pass primes the delta counters.
		_ = c.sampler.SampleOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(cfg.Interval):
		}
		snap := c.sampler.SampleOnce(ctx)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

// reportCmd runs a headless tracking capture and writes the report file.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Capture a tracking session headlessly and write a JSON report",
	Long: `Run the sampler for the tracking duration (default from config, five
minutes), buffer every snapshot, and write the report file with min/max/avg
statistics per metric. Interrupting with Ctrl-C stops the capture early and
still writes the report when enough data was collected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if reportDuration > 0 {
			cfg.TrackingDuration = reportDuration
		}

		c := buildCore(cfg)
		if err := c.sampler.Start(); err != nil {
			return fmt.Errorf("starting sampler: %w", err)
		}
		defer c.shutdown()

		done := make(chan session.Completion, 1)
		c.sessions.OnComplete(func(comp session.Completion) { done <- comp })

		resp := c.ctrl.StartTracking()
		if resp.Status != "started" {
			return fmt.Errorf("starting tracking: %s", resp.Message)
		}
		fmt.Fprintf(os.Stderr, "capturing for %s...\n", cfg.TrackingDuration)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		select {
		case comp := <-done:
			fmt.Fprintln(os.Stderr, comp.Message)
		case <-ctx.Done():
			stopResp := c.ctrl.StopTracking()
			fmt.Fprintln(os.Stderr, stopResp.Message)
		}

		rep := c.ctrl.GenerateReport()
		if rep.Status != "success" {
			return fmt.Errorf("generating report: %s", rep.Message)
		}
		fmt.Println(rep.Filename)
		return nil
	},
}

// initCmd writes a default config file.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Create a config file with the default settings, either .syswatch.yaml in
the current directory or the global config with --global.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.FileName
		if initGlobal {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("locating home directory: %w", err)
			}
			path = filepath.Join(home, config.GlobalDir, config.GlobalFile)
		}
		if err := config.WriteDefault(path, initForce); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", path)
		return nil
	},
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("syswatch %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	reportCmd.Flags().DurationVar(&reportDuration, "duration", 0, "capture length (overrides config)")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write the global config file")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}
