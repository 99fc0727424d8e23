package state

import (
	"context"
	"fmt"
	"time"

	"github.com/deusflow/newsletter/internal/logger"
)

// Recorder is the slice of Store the runner needs; injected so the loop is
// testable without a real database.
type Recorder interface {
	MarkRunning(runDate string, attempt int) error
	MarkSuccess(runDate string, attempt int) error
	MarkFailed(runDate string, attempt int, reason string) error
}

// RunnerConfig bounds the per-day attempt budget.
type RunnerConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

// Run drives one day's attempts: mark RUNNING, execute, then mark SUCCESS
// (stop) or FAILED (sleep and retry while budget remains). After exhaustion
// it returns the last failure; the last FAILED row stays behind as the
// day's record.
func Run(ctx context.Context, rec Recorder, runDate string, cfg RunnerConfig, attempt func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for n := 1; n <= cfg.MaxAttempts; n++ {
		if err := rec.MarkRunning(runDate, n); err != nil {
			return fmt.Errorf("mark running: %w", err)
		}
		logger.Info("attempt started", "run_date", runDate, "attempt", n)

		err := attempt(ctx)
		if err == nil {
			if err := rec.MarkSuccess(runDate, n); err != nil {
				return fmt.Errorf("mark success: %w", err)
			}
			logger.Info("run succeeded", "run_date", runDate, "attempt", n)
			return nil
		}

		lastErr = err
		if markErr := rec.MarkFailed(runDate, n, err.Error()); markErr != nil {
			return fmt.Errorf("mark failed: %w", markErr)
		}
		logger.Error("attempt failed", "run_date", runDate, "attempt", n, "error", err)

		if n < cfg.MaxAttempts {
			logger.Info("retrying", "run_date", runDate, "in", cfg.Interval.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Interval):
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
