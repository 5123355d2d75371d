// SPDX-License-Identifier: MIT

package compute

import (
	"errors"
	"fmt"
	"os"

	"github.com/katalvlaran/quantgen/grm"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned for a configuration ParseConfig cannot accept.
var ErrInvalidConfig = errors.New("compute: invalid config")

// BackendMode selects how the Engine picks its backend.
type BackendMode string

const (
	// ModeAuto uses the native backend when the probe succeeds.
	ModeAuto BackendMode = "auto"
	// ModeNative asks for the native backend; a failed probe still falls back.
	ModeNative BackendMode = "native"
	// ModeFallback skips the probe and always uses the portable backend.
	ModeFallback BackendMode = "fallback"
)

// Config is the process-level configuration of the facade.
type Config struct {
	Backend BackendMode   `yaml:"backend"`
	Native  NativeConfig  `yaml:"native"`
	GRM     GRMConfig     `yaml:"grm"`
	Logging LoggingConfig `yaml:"logging"`
}

// NativeConfig controls the native probe. The zero value looks for the
// native backend.
type NativeConfig struct {
	Disabled   bool   `yaml:"disabled"`
	PluginPath string `yaml:"plugin_path"` // optional Go plugin exporting "Backend"
}

// GRMConfig holds the defaults applied to every GRM computation.
type GRMConfig struct {
	Workers int `yaml:"workers"` // 0 = GOMAXPROCS
	Ploidy  int `yaml:"ploidy"`
}

// LoggingConfig selects the log level of loggers built by NewLogger.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns auto backend selection with the native probe on,
// diploid GRMs on GOMAXPROCS workers and info logging.
func DefaultConfig() Config {
	return Config{
		Backend: ModeAuto,
		Native:  NativeConfig{},
		GRM:     GRMConfig{Workers: 0, Ploidy: grm.DefaultPloidy},
		Logging: LoggingConfig{Level: "info"},
	}
}

// ParseConfig decodes YAML over DefaultConfig, so omitted keys keep their
// defaults, and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("compute.ParseConfig: %w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("compute.ParseConfig: %w", err)
	}

	return cfg, nil
}

// LoadConfig reads and parses a YAML file. A missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}

		return Config{}, fmt.Errorf("compute.LoadConfig: %w", err)
	}

	return ParseConfig(data)
}

// Validate checks every field; an empty backend is treated as auto.
func (c Config) Validate() error {
	switch c.Backend {
	case "", ModeAuto, ModeNative, ModeFallback:
	default:
		return fmt.Errorf("backend %q: %w", c.Backend, ErrInvalidConfig)
	}
	if c.GRM.Workers < 0 {
		return fmt.Errorf("grm.workers %d: %w", c.GRM.Workers, ErrInvalidConfig)
	}
	if c.GRM.Ploidy < 1 {
		return fmt.Errorf("grm.ploidy %d: %w", c.GRM.Ploidy, ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level parses Logging.Level; empty means info.
func (c Config) Level() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging.level %q: %w", c.Logging.Level, ErrInvalidConfig)
	}

	return lvl, nil
}

// GRMOptions turns the grm section into grm options.
func (c Config) GRMOptions() []grm.Option {
	var opts []grm.Option
	if c.GRM.Ploidy > 0 {
		opts = append(opts, grm.WithPloidy(c.GRM.Ploidy))
	}
	if c.GRM.Workers > 0 {
		opts = append(opts, grm.WithWorkers(c.GRM.Workers))
	}

	return opts
}

func (c Config) mode() BackendMode {
	if c.Backend == "" {
		return ModeAuto
	}

	return c.Backend
}
