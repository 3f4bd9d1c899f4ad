package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds solver and curve construction parameters.
type Config struct {
	// Accuracy is the root-finding tolerance on quote errors and the
	// convergence threshold on node changes.
	Accuracy float64 `yaml:"accuracy" toml:"accuracy" default:"1e-12" validate:"gt=0,lt=1"`

	// MaxIterations bounds the outer convergence loop of the iterative bootstrap.
	MaxIterations int `yaml:"max_iterations" toml:"max_iterations" default:"100" validate:"gte=1"`

	// MaxEvaluations bounds function evaluations per 1-D solve.
	MaxEvaluations int `yaml:"max_evaluations" toml:"max_evaluations" default:"100" validate:"gte=2"`

	// BracketGrowthFactor is the geometric expansion of auto-bracketing.
	BracketGrowthFactor float64 `yaml:"bracket_growth_factor" toml:"bracket_growth_factor" default:"1.6" validate:"gt=1"`

	// GuessNudge moves a guess sitting on a bound back inside the bracket,
	// as a fraction of the bracket width.
	GuessNudge float64 `yaml:"guess_nudge" toml:"guess_nudge" default:"0.2" validate:"gt=0,lt=1"`

	// Localisation is the window size of the local bootstrap.
	Localisation int `yaml:"localisation" toml:"localisation" default:"2" validate:"gte=1"`

	// ForcePositive rejects non-positive node values in the local bootstrap.
	ForcePositive *bool `yaml:"force_positive" toml:"force_positive" default:"true"`

	// LocalMaxIterations bounds optimizer major iterations per window.
	LocalMaxIterations int `yaml:"local_max_iterations" toml:"local_max_iterations" default:"100" validate:"gte=1"`

	// LocalStationaryIterations is how many iterations without improvement
	// count as convergence.
	LocalStationaryIterations int `yaml:"local_stationary_iterations" toml:"local_stationary_iterations" default:"10" validate:"gte=1"`

	// DayCount is the curve time axis convention.
	DayCount string `yaml:"day_count" toml:"day_count" default:"ACT/365F" validate:"oneof=ACT/360 ACT/365F 30/360 30E/360"`

	Log Log `yaml:"log" toml:"log"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `yaml:"level" toml:"level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" toml:"format" default:"console" validate:"oneof=console json"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	Accuracy:                  1e-12,
	MaxIterations:             100,
	MaxEvaluations:            100,
	BracketGrowthFactor:       1.6,
	GuessNudge:                0.2,
	Localisation:              2,
	ForcePositive:             boolPtr(true),
	LocalMaxIterations:        100,
	LocalStationaryIterations: 10,
	DayCount:                  "ACT/365F",
	Log:                       Log{Level: "info", Format: "console"},
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// SetConfig replaces the active configuration.
func SetConfig(c Config) {
	cfg = c
}

// GetConfig returns the active configuration.
func GetConfig() Config {
	return cfg
}

// IsForcePositive reads ForcePositive, treating unset as true.
func (c Config) IsForcePositive() bool {
	return c.ForcePositive == nil || *c.ForcePositive
}

var validate = validator.New()

// Validate checks field ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// ValidateSolver checks the fields curve construction reads. Log is ignored.
func (c *Config) ValidateSolver() error {
	if err := validate.StructExcept(c, "Log"); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file. Missing fields take
// their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("parse config: unsupported extension %q", ext)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
