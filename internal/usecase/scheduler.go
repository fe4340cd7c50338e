// Package usecase contains application business logic.
package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// ModuleSource lists modules in trigger order.
type ModuleSource interface {
	All() []domain.Module
}

// TickResult summarizes one scheduler tick.
type TickResult struct {
	At        time.Time
	Level     uint8
	Escalated bool
	Suspended bool
	Triggered []string
	Errors    map[string]error
}

// Scheduler runs one evaluation of the outer loop per Tick.
type Scheduler struct {
	base    *state.Base
	modules ModuleSource
	clock   domain.Clock
	logger  *zap.Logger
}

// NewScheduler creates a scheduler over the shared base state.
func NewScheduler(base *state.Base, modules ModuleSource, clock domain.Clock, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		base:    base,
		modules: modules,
		clock:   clock,
		logger:  logger,
	}
}

// Tick refreshes the base state, escalates the annoyance level when due and,
// unless the level is 0, triggers every globally enabled module in order.
// Module failures are logged and collected; they never stop the tick.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	now := s.clock.Now()
	result := TickResult{At: now, Errors: make(map[string]error)}

	if err := s.base.Refresh(); err != nil {
		s.logger.Warn("failed to refresh base state, using last known", zap.Error(err))
	}

	level, escalated, err := s.base.EscalateIfDue(now)
	if err != nil {
		s.logger.Warn("failed to persist escalation", zap.Error(err))
	}
	if escalated {
		s.logger.Info("annoyance level increased",
			zap.Uint8("level", level),
			zap.Time("next_increase", s.base.NextAnnoyanceIncrease()))
	}
	result.Level = level
	result.Escalated = escalated

	if level == 0 {
		s.logger.Debug("annoyance level is 0, modules suspended")
		result.Suspended = true
		return result
	}

	for _, m := range s.modules.All() {
		if ctx.Err() != nil {
			break
		}
		if !s.base.IsModuleEnabled(m.Name()) {
			continue
		}

		result.Triggered = append(result.Triggered, m.Name())
		if err := m.Trigger(ctx); err != nil {
			s.logger.Warn("module trigger failed",
				zap.String("module", m.Name()),
				zap.Error(err))
			result.Errors[m.Name()] = err
		}
	}

	return result
}
