// Package cli wires the cobra command tree: the root command runs the live
// dashboard, subcommands cover one-shot snapshots, headless report captures,
// and config management.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/syswatch/syswatch/internal/broker"
	"github.com/syswatch/syswatch/internal/config"
	"github.com/syswatch/syswatch/internal/control"
	"github.com/syswatch/syswatch/internal/logger"
	"github.com/syswatch/syswatch/internal/sampler"
	"github.com/syswatch/syswatch/internal/session"
	"github.com/syswatch/syswatch/internal/ui"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X ...internal/cli.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo is called from main with the ldflags values.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var (
	configFlag   string
	intervalFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "syswatch",
	Short: "Live host resource monitor with tracked capture reports",
	Long: `syswatch samples CPU, memory, GPU, disk, and network utilization once a
second and shows it on a live dashboard. A tracking session captures five
minutes of samples for export as a report.

Dashboard keys: t start tracking, s stop, g generate report, q quit.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard()
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file path")
	rootCmd.PersistentFlags().DurationVar(&intervalFlag, "interval", 0, "sampling interval (overrides config)")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig applies the flag overrides on top of file/env/default config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return cfg, err
	}
	if intervalFlag > 0 {
		cfg.Interval = intervalFlag
	}
	return cfg, cfg.Validate()
}

// core is the assembled monitoring pipeline shared by the dashboard and the
// headless report capture.
type core struct {
	cfg      config.Config
	broker   *broker.Broker
	sampler  *sampler.Sampler
	sessions *session.Manager
	ctrl     *control.Controller
	unsub    func()
}

func buildCore(cfg config.Config) *core {
	log := logger.NewEnvLogger("[syswatch]")
	b := broker.New(log)
	sessions := session.NewManager(cfg.TrackingDuration, log)
	// The session consumes the feed as an ordered sink: every tick, in order.
	unsub := b.SubscribeFunc(sessions.OnSnapshot)
	return &core{
		cfg:      cfg,
		broker:   b,
		sampler:  sampler.New(cfg, b, log),
		sessions: sessions,
		ctrl:     control.New(sessions, cfg.ReportDir),
		unsub:    unsub,
	}
}

func (c *core) shutdown() {
	c.sampler.Stop()
	c.unsub()
}

func runDashboard() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	c := buildCore(cfg)
	if err := c.sampler.Start(); err != nil {
		return fmt.Errorf("starting sampler: %w", err)
	}
	defer c.shutdown()

	return ui.Run(c.broker, c.ctrl, c.sessions)
}
