// Package daemon implements the long-running scheduler loop.
package daemon

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/usecase"
)

// Config holds runner configuration.
type Config struct {
	SuspendedInterval time.Duration // Wait between ticks while the annoyance level is 0
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		SuspendedInterval: 500 * time.Millisecond,
	}
}

// Ticker runs one scheduler evaluation.
type Ticker interface {
	Tick(ctx context.Context) usecase.TickResult
}

// IntervalSource provides the current time between ticks.
type IntervalSource interface {
	TickInterval() time.Duration
}

// TimerFactory creates the wait between two ticks.
type TimerFactory func(d time.Duration) domain.Timer

// Runner drives the scheduler: tick, wait, repeat.
// The interval is re-read after every tick so configuration edits apply live.
type Runner struct {
	config    Config
	scheduler Ticker
	interval  IntervalSource
	newTimer  TimerFactory
	logger    *zap.Logger
}

// NewRunner creates a scheduler runner.
func NewRunner(
	config Config,
	scheduler Ticker,
	interval IntervalSource,
	newTimer TimerFactory,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		config:    config,
		scheduler: scheduler,
		interval:  interval,
		newTimer:  newTimer,
		logger:    logger,
	}
}

// Run starts the loop.
// This blocks until context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.logger.Info("scheduler started",
		zap.Duration("tick_interval", r.interval.TickInterval()))

	for {
		result := r.scheduler.Tick(ctx)

		wait := r.nextWait(result)
		timer := r.newTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			r.logger.Info("scheduler stopping")
			return ctx.Err()

		case <-timer.C():
		}
	}
}

// nextWait is the tick interval, or the shorter fallback while suspended.
func (r *Runner) nextWait(result usecase.TickResult) time.Duration {
	wait := r.interval.TickInterval()
	if result.Suspended && r.config.SuspendedInterval > 0 && r.config.SuspendedInterval < wait {
		wait = r.config.SuspendedInterval
	}
	if len(result.Triggered) > 0 || result.Escalated {
		r.logger.Debug("tick completed",
			zap.Uint8("level", result.Level),
			zap.Strings("triggered", result.Triggered),
			zap.Int("errors", len(result.Errors)),
			zap.Duration("next_wait", wait))
	}
	return wait
}
