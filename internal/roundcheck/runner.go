package roundcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/dots/internal/domain/types"
	"github.com/okian/dots/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run generates cases, submits them concurrently and verifies every response.
// It returns ErrVerification when any case fails.
func Run(ctx context.Context, cfg *Config, log logger.Logger) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting round check",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rounds", cfg.Rounds),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	var defaults types.Defaults
	if err := client.Get(ctx, "/v1/defaults", &defaults); err != nil {
		return stats, fmt.Errorf("defaults: %w", err)
	}
	log.Info(ctx, "service is healthy",
		logger.Float64("defaultStake", defaults.StakePerPoint),
		logger.Int("maxSegments", defaults.MaxSegments))

	cases := Generate(cfg.Seed, cfg.Rounds)
	stats.Generated = len(cases)
	if cfg.OutputFile != "" {
		if err := saveCases(cfg.OutputFile, cases); err != nil {
			log.Warn(ctx, "failed to save cases", logger.Error(err))
		}
	}

	var submitted, passed, failed, mismatch atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for _, c := range cases {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			submitted.Add(1)
			err := check(gctx, client, c)
			var transport *checkError
			switch {
			case err == nil:
				passed.Add(1)
				if cfg.Verbose {
					log.Debug(gctx, "case passed", logger.String("id", c.ID), logger.String("kind", string(c.Kind)))
				}
			case errors.As(err, &transport):
				failed.Add(1)
				log.Error(gctx, "case failed", logger.String("id", c.ID), logger.String("kind", string(c.Kind)), logger.Error(err))
			default:
				mismatch.Add(1)
				log.Error(gctx, "case mismatch", logger.String("id", c.ID), logger.String("kind", string(c.Kind)), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Submitted = int(submitted.Load())
	stats.Passed = int(passed.Load())
	stats.Failed = int(failed.Load())
	stats.Mismatch = int(mismatch.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Failed > 0 || stats.Mismatch > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d mismatched", ErrVerification, stats.Failed, stats.Mismatch)
	}
	log.Info(ctx, "round check completed successfully")
	return stats, nil
}

// checkError marks a request that never produced a verifiable response.
type checkError struct{ err error }

func (e *checkError) Error() string { return e.err.Error() }
func (e *checkError) Unwrap() error { return e.err }

func check(ctx context.Context, client *Client, c Case) error {
	switch c.Kind {
	case KindIndividual:
		var calc types.Calculation
		if err := client.Post(ctx, "/v1/settlements/individual", c.ID, c.Individual, &calc); err != nil {
			return &checkError{err}
		}
		return verifyCalculation(c, calc)
	case KindTeams:
		var calc types.Calculation
		if err := client.Post(ctx, "/v1/settlements/teams", c.ID, c.Teams, &calc); err != nil {
			return &checkError{err}
		}
		return verifyCalculation(c, calc)
	case KindSegment:
		var score types.SegmentScore
		if err := client.Post(ctx, "/v1/scoring/segment", c.ID, c.Segment, &score); err != nil {
			return &checkError{err}
		}
		return verifySegment(c.Segment, score)
	default:
		return fmt.Errorf("unknown case kind %q", c.Kind)
	}
}

// saveCases writes the generated cases as a JSON array.
func saveCases(filename string, cases []Case) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cases, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cases: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatch", stats.Mismatch),
		logger.Duration("duration", stats.Duration),
		logger.Float64("roundsPerSecond", perSecond))
}
