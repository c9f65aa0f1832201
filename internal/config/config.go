package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultOutputSubdir is created next to the executable when OUTPUT_DIR is unset.
const DefaultOutputSubdir = "correct_traces"

// Config holds all run settings, populated from environment variables.
// Each variable may carry the ORIENT_ prefix; the bare name is also accepted.
type Config struct {
	TablePath    string `envconfig:"TABLE_PATH" default:"orient_results_2007_2023_use.csv"`
	OutputDir    string `envconfig:"OUTPUT_DIR"`
	OutputPrefix string `envconfig:"OUTPUT_PREFIX" default:"correct."`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"warn"`
	LogFormat    string `envconfig:"LOG_FORMAT" default:"text"`

	// MetricsTextfile, when set, receives the run's Prometheus metrics in the
	// text exposition format (node_exporter textfile collector).
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`

	// Correction report publishing; disabled when no brokers are set.
	KafkaBrokers   []string      `envconfig:"KAFKA_BROKERS"`
	KafkaTopic     string        `envconfig:"KAFKA_TOPIC" default:"orientation-corrections"`
	PublishTimeout time.Duration `envconfig:"PUBLISH_TIMEOUT" default:"5s"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("ORIENT", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	cfg.KafkaBrokers = cleanList(cfg.KafkaBrokers)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if cfg.OutputDir == "" {
		dir, err := executableDir()
		if err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
		cfg.OutputDir = filepath.Join(dir, DefaultOutputSubdir)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// KafkaEnabled reports whether correction reports should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.TablePath) == "" {
		return errors.New("TABLE_PATH is required")
	}
	if c.OutputPrefix == "" || strings.ContainsAny(c.OutputPrefix, `/\`) {
		return fmt.Errorf("OUTPUT_PREFIX %q must be a non-empty file name prefix", c.OutputPrefix)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if c.PublishTimeout <= 0 {
		return errors.New("invalid PUBLISH_TIMEOUT: must be positive")
	}
	if c.KafkaEnabled() && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func cleanList(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// executableDir returns the directory of the running binary with symlinks
// resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}
