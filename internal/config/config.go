package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = ".syswatch.yaml"
	// GlobalDir is the directory for the global config, relative to $HOME.
	GlobalDir = ".config/syswatch"
	// GlobalFile is the global config file name.
	GlobalFile = "config.yaml"
)

// Config carries runtime options for syswatch.
type Config struct {
	// Interval between sampling ticks.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	// AdapterTimeout bounds each resource adapter's read per tick.
	AdapterTimeout time.Duration `mapstructure:"adapter_timeout" yaml:"adapter_timeout"`
	// TrackingDuration is the fixed length of a tracking session.
	TrackingDuration time.Duration `mapstructure:"tracking_duration" yaml:"tracking_duration"`
	// TopProcesses is how many processes the snapshot carries, sorted by CPU.
	TopProcesses int `mapstructure:"top_processes" yaml:"top_processes"`
	// ReportDir is where generated report files are written.
	ReportDir string `mapstructure:"report_dir" yaml:"report_dir"`
	// EnableGPU toggles the nvidia-smi probe.
	EnableGPU bool `mapstructure:"gpu" yaml:"gpu"`
}

func Default() Config {
	return Config{
		Interval:         time.Second,
		AdapterTimeout:   800 * time.Millisecond,
		TrackingDuration: 5 * time.Minute,
		TopProcesses:     5,
		ReportDir:        ".",
		EnableGPU:        true,
	}
}

// Load reads configuration with the usual precedence: explicit path, then
// .syswatch.yaml in the working directory, then the global file, then
// defaults. SYSWATCH_* environment variables override file values.
func Load(explicit string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetDefault("interval", cfg.Interval)
	v.SetDefault("adapter_timeout", cfg.AdapterTimeout)
	v.SetDefault("tracking_duration", cfg.TrackingDuration)
	v.SetDefault("top_processes", cfg.TopProcesses)
	v.SetDefault("report_dir", cfg.ReportDir)
	v.SetDefault("gpu", cfg.EnableGPU)

	v.SetEnvPrefix("SYSWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := find(explicit); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// find locates the config file, or returns "" when none exists. An explicit
// path is returned as-is so a missing file the user asked for still errors.
func find(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, FileName)
		if _, err := os.Stat(local); err == nil {
			return local
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		global := filepath.Join(home, GlobalDir, GlobalFile)
		if _, err := os.Stat(global); err == nil {
			return global
		}
	}
	return ""
}

// Validate rejects values the sampler or session cannot run with.
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.AdapterTimeout <= 0 {
		return fmt.Errorf("adapter_timeout must be positive, got %s", c.AdapterTimeout)
	}
	if c.TrackingDuration <= 0 {
		return fmt.Errorf("tracking_duration must be positive, got %s", c.TrackingDuration)
	}
	if c.TopProcesses < 0 {
		return fmt.Errorf("top_processes must not be negative, got %d", c.TopProcesses)
	}
	return nil
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. Refuses to overwrite unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	def := Default()
	// Durations are written as strings ("1s", not nanosecond integers) so the
	// generated file is editable by hand.
	out, err := yaml.Marshal(map[string]any{
		"interval":          def.Interval.String(),
		"adapter_timeout":   def.AdapterTimeout.String(),
		"tracking_duration": def.TrackingDuration.String(),
		"top_processes":     def.TopProcesses,
		"report_dir":        def.ReportDir,
		"gpu":               def.EnableGPU,
	})
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
