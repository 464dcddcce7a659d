// Package config loads the netcheck run configuration from YAML, .env files
// and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-netcheck/pkg/logging"
	"github.com/dd0wney/cluso-netcheck/pkg/validation"
)

// Environment variables read by ApplyEnv.
const (
	EnvDatabaseURL = "NETCHECK_DATABASE_URL"
	EnvLogLevel    = "LOG_LEVEL"
)

// MaxParallelRegions bounds analysis.parallel_regions.
const MaxParallelRegions = 64

// Config is the netcheck run configuration.
type Config struct {
	Input    InputConfig    `yaml:"input"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Output   OutputConfig   `yaml:"output"`
}

// InputConfig names where the model data comes from. Exactly one is set.
type InputConfig struct {
	Dataset     string `yaml:"dataset"`
	DatabaseURL string `yaml:"database_url"`
}

type AnalysisConfig struct {
	// RegionSeparator marks exchange regions, which are not screened.
	RegionSeparator string `yaml:"region_separator"`
	ParallelRegions int    `yaml:"parallel_regions"`
	// Strict turns unsupported demands into a failed run.
	Strict bool `yaml:"strict"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// OutputConfig lists optional artifacts; empty paths are skipped.
type OutputConfig struct {
	Filters     string `yaml:"filters"`
	GraphDir    string `yaml:"graph_dir"`
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			RegionSeparator: "-",
			ParallelRegions: 1,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults plus environment. Unknown keys are errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from the environment. The database URL only
// applies when no dataset file is configured.
func (c *Config) ApplyEnv() {
	if url := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); url != "" && c.Input.Dataset == "" {
		c.Input.DatabaseURL = url
	}
	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		c.Logging.Level = level
	}
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named) without overriding ones already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LogLevel returns the configured level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("Config")
	cv.ExactlyOne(map[string]string{
		"input.dataset":      c.Input.Dataset,
		"input.database_url": c.Input.DatabaseURL,
	})
	cv.Required("analysis.region_separator", c.Analysis.RegionSeparator)
	cv.RangeInt("analysis.parallel_regions", c.Analysis.ParallelRegions, 1, MaxParallelRegions)
	cv.OneOf("logging.level", strings.ToLower(strings.TrimSpace(c.Logging.Level)), logging.KnownLevels)
	cv.When(c.Input.DatabaseURL != "", func(v *validation.ConfigValidator) {
		v.Custom("input.database_url", func() error {
			if !strings.HasPrefix(c.Input.DatabaseURL, "postgres://") && !strings.HasPrefix(c.Input.DatabaseURL, "postgresql://") {
				return errors.New("must be a postgres:// URL")
			}
			return nil
		})
	})
	return cv.Validate()
}
