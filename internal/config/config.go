package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level pathnorm configuration.
type Config struct {
	SuitesDir    string `mapstructure:"suites_dir"`
	SuitePattern string `mapstructure:"suite_pattern"`
	DBPath       string `mapstructure:"db_path"`
	Retention    int    `mapstructure:"retention"`
	Bench        Bench  `mapstructure:"bench"`
	Stress       Stress `mapstructure:"stress"`
	Output       Output `mapstructure:"output"`
}

// Bench defines benchmark settings.
type Bench struct {
	Iterations int           `mapstructure:"iterations"`
	MinTime    time.Duration `mapstructure:"min_time"`
	Warmup     int           `mapstructure:"warmup"`
	Exclude    []string      `mapstructure:"exclude"`
}

// Stress defines stress-run settings.
type Stress struct {
	Workers  int           `mapstructure:"workers"`
	Duration time.Duration `mapstructure:"duration"`
}

// Output defines output preferences.
type Output struct {
	Color  bool   `mapstructure:"color"`
	Format string `mapstructure:"format"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with PATHNORM_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("suites_dir", DefaultSuitesDir)
	v.SetDefault("suite_pattern", DefaultSuitePattern)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("retention", DefaultRetention)
	v.SetDefault("bench.iterations", DefaultBench.Iterations)
	v.SetDefault("bench.min_time", DefaultBench.MinTime)
	v.SetDefault("bench.warmup", DefaultBench.Warmup)
	v.SetDefault("bench.exclude", []string{})
	v.SetDefault("stress.workers", DefaultStress.Workers)
	v.SetDefault("stress.duration", DefaultStress.Duration)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.format", DefaultOutput.Format)

	v.SetEnvPrefix("pathnorm")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.SuitesDir = expandPath(cfg.SuitesDir)
	cfg.DBPath = expandPath(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output.format %q (want text, json or yaml)", c.Output.Format)
	}
	if c.Bench.Iterations < 1 {
		return fmt.Errorf("bench.iterations must be at least 1, got %d", c.Bench.Iterations)
	}
	if c.Stress.Workers < 1 {
		return fmt.Errorf("stress.workers must be at least 1, got %d", c.Stress.Workers)
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention must not be negative, got %d", c.Retention)
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
