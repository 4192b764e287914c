package arcade

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds everything NewWorld and NewLogger need. It decodes from TOML
// or YAML.
type Config struct {
	World   WorldConfig   `toml:"world" yaml:"world"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Debug   bool          `toml:"debug" yaml:"debug"`
}

// WorldConfig configures the broad-phase and separation.
type WorldConfig struct {
	Bounds       Rect    `toml:"bounds" yaml:"bounds"`
	Divisions    int     `toml:"divisions" yaml:"divisions"`         // quadtree subdivision depth, >= 1
	SeparateBias float64 `toml:"separate_bias" yaml:"separate_bias"` // extra overlap Collide still resolves
}

// LoggingConfig selects the zap logger NewLogger builds.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug, info, warn, error
	Format string `toml:"format" yaml:"format"` // "json" or "console"
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		World: WorldConfig{
			Bounds:       Rect{X: 0, Y: 0, Width: 640, Height: 480},
			Divisions:    6,
			SeparateBias: DefaultSeparateBias,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig reads a config file over DefaultConfig. Files ending in .yaml or
// .yml are decoded as YAML, anything else as TOML.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	if c.World.Divisions < 1 {
		errs = append(errs, fmt.Errorf("world.divisions must be >= 1, got %d", c.World.Divisions))
	}
	if c.World.Bounds.Width <= 0 || c.World.Bounds.Height <= 0 {
		errs = append(errs, fmt.Errorf("world.bounds must have a positive size, got %gx%g",
			c.World.Bounds.Width, c.World.Bounds.Height))
	}
	if c.World.SeparateBias < 0 {
		errs = append(errs, fmt.Errorf("world.separate_bias must be >= 0, got %g", c.World.SeparateBias))
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// NewLogger builds a zap logger: JSON for production, colored console output
// otherwise. An unknown level falls back to info.
func NewLogger(cfg LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
