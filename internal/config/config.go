// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// DOTS_CONFIG, then DOTS_* environment variables. Load validates the result.
package config

import (
	"fmt"
	"time"

	"github.com/okian/dots/internal/domain/scoring"
	"github.com/okian/dots/internal/domain/settlement"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DefaultStake is used when a request omits stake_per_point.
	DefaultStake float64 `koanf:"default_stake"`

	// Itemization selects how team payments are listed: split or undivided.
	Itemization string `koanf:"itemization"`

	// NonFinite selects how NaN and Inf inputs are treated: reject or zero.
	NonFinite string `koanf:"non_finite"`

	// MinSegments and MaxSegments bound the segments of a team round.
	MinSegments int `koanf:"min_segments"`
	MaxSegments int `koanf:"max_segments"`

	// CORSAllowedOrigins lists the origins the browser front-end may call from.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CategoryPoints maps hole categories (gir, low_man, low_team, birdie)
	// to their point values.
	CategoryPoints map[string]float64 `koanf:"category_points"`

	// SweepMultiplier applies when one team takes every point of a hole.
	SweepMultiplier float64 `koanf:"sweep_multiplier"`

	// MetricsRefreshInterval is how often runtime metrics are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		DefaultStake:       settlement.DefaultStake,
		Itemization:        settlement.ItemizeSplit.String(),
		NonFinite:          settlement.RejectNonFinite.String(),
		MinSegments:        2,
		MaxSegments:        3,
		CORSAllowedOrigins: []string{"*"},
		MaxBodyBytes:       1 << 20,
		CategoryPoints: map[string]float64{
			"gir":      1,
			"low_man":  2,
			"low_team": 2,
			"birdie":   1,
		},
		SweepMultiplier:        2,
		MetricsRefreshInterval: 10 * time.Second,
		ShutdownTimeout:        10 * time.Second,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DefaultStake < 0:
		return fmt.Errorf("%w: default_stake must not be negative, got %v", ErrInvalidConfig, c.DefaultStake)
	case c.MinSegments < 1 || c.MaxSegments < c.MinSegments:
		return fmt.Errorf("%w: segment bounds %d..%d", ErrInvalidConfig, c.MinSegments, c.MaxSegments)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case c.SweepMultiplier < 1:
		return fmt.Errorf("%w: sweep_multiplier must be at least 1, got %v", ErrInvalidConfig, c.SweepMultiplier)
	}
	if _, err := settlement.ParseItemization(c.Itemization); err != nil {
		return fmt.Errorf("%w: itemization: %w", ErrInvalidConfig, err)
	}
	if _, err := settlement.ParseNonFinitePolicy(c.NonFinite); err != nil {
		return fmt.Errorf("%w: non_finite: %w", ErrInvalidConfig, err)
	}
	if _, err := c.ScoringPoints(); err != nil {
		return err
	}
	return nil
}

// ScoringPoints converts CategoryPoints to scorer overrides.
func (c *Config) ScoringPoints() (map[scoring.Category]float64, error) {
	out := make(map[scoring.Category]float64, len(c.CategoryPoints))
	for name, p := range c.CategoryPoints {
		cat, err := scoring.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: category_points: %w", ErrInvalidConfig, err)
		}
		if p <= 0 {
			return nil, fmt.Errorf("%w: category_points.%s must be positive", ErrInvalidConfig, name)
		}
		out[cat] = p
	}
	return out, nil
}
