package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/offlinefirst/grabber/pkg/modifiers"
)

const DefaultFileName = "config.yaml"

// Config captures the user-adjustable knobs for the grabber.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Tap       TapConfig       `yaml:"tap"`
	Modifiers ModifiersConfig `yaml:"modifiers"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	// Source indicates where the configuration originated (defaults or a file path).
	Source string `yaml:"-"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TapConfig toggles the pointer event tap.
type TapConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ModifiersConfig lists modifiers held active on every grabbed event.
type ModifiersConfig struct {
	Locked []string `yaml:"locked"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the baseline configuration used when no overrides are supplied.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tap: TapConfig{
			Enabled: true,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "127.0.0.1:9464",
		},
		Source: "<defaults>",
	}
}

// Load reads configuration from disk if present, otherwise returning defaults.
// When path is empty, the loader attempts to read ./config.yaml but tolerates a missing file.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return cfg, fmt.Errorf("config file %q not found", candidate)
			}
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config file %q: %w", candidate, err)
	}

	if err := decodeYAML(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate ensures essential configuration values are present and sensible.
func (c Config) Validate() error {
	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := NormalizeFormat(c.Logging.Format); err != nil {
		return err
	}
	if _, err := c.LockedModifiers(); err != nil {
		return fmt.Errorf("modifiers.locked: %w", err)
	}
	if c.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(c.Metrics.ListenAddr); err != nil {
			return fmt.Errorf("metrics.listen_addr: %w", err)
		}
	}
	return nil
}

// LockedModifiers resolves modifiers.locked.
func (c Config) LockedModifiers() ([]modifiers.Modifier, error) {
	return modifiers.ParseModifiers(c.Modifiers.Locked)
}

func (c *Config) normalize() {
	defaults := Default()

	if level, err := NormalizeLogLevel(c.Logging.Level); err == nil {
		c.Logging.Level = level
	}
	if format, err := NormalizeFormat(c.Logging.Format); err == nil {
		c.Logging.Format = format
	}
	if strings.TrimSpace(c.Metrics.ListenAddr) == "" {
		c.Metrics.ListenAddr = defaults.Metrics.ListenAddr
	}

	locked := c.Modifiers.Locked[:0]
	for _, name := range c.Modifiers.Locked {
		if trimmed := strings.ToLower(strings.TrimSpace(name)); trimmed != "" {
			locked = append(locked, trimmed)
		}
	}
	if len(locked) == 0 {
		locked = nil
	}
	c.Modifiers.Locked = locked
}

// NormalizeLogLevel validates and lowercases known logging levels.
func NormalizeLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return "info", nil
	case "debug":
		return "debug", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

// NormalizeFormat validates and canonicalizes logging format identifiers.
func NormalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return "json", nil
	case "console", "text":
		return "console", nil
	default:
		return "", fmt.Errorf("unsupported log format %q", format)
	}
}
