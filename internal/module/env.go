// Package module implements the schedulable annoyance modules and the
// plumbing they share: module homes, the time gate and the firing journal.
package module

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// Env is what every module is constructed with.
type Env struct {
	Base    *state.Base
	Store   domain.DocumentStore
	Clock   domain.Clock
	Rand    domain.Random
	Journal domain.Journal
	Logger  *zap.Logger
	Timings Timings
}

// ModuleHome returns the directory owned by a module under home.
func ModuleHome(home, name string) string {
	return filepath.Join(home, name)
}

// record journals a firing. Journal failures are logged, never returned.
func (e Env) record(ctx context.Context, module, action string, at time.Time, cause error) {
	f := domain.Firing{Module: module, Action: action, FiredAt: at}
	if cause != nil {
		f.Error = cause.Error()
	}
	if err := e.Journal.Record(ctx, f); err != nil {
		e.Logger.Warn("failed to journal firing",
			zap.String("module", module),
			zap.String("action", action),
			zap.Error(err))
	}
}

// fireIfDue is the time gate shared by wallpaper, syssound and mouse.
// When t is not due it returns without side effects. Otherwise it runs act
// once, rearms t (even when act failed), journals the firing and saves.
func (e Env) fireIfDue(
	ctx context.Context,
	module string,
	t *domain.Timing,
	act func(context.Context) error,
	save func() error,
) (bool, error) {
	now := e.Clock.Now()
	if !due(*t, now) {
		e.Logger.Debug("module not due",
			zap.String("module", module),
			zap.Time("next_trigger", t.NextTrigger))
		return false, nil
	}

	actErr := act(ctx)
	rearm(t, now, e.Rand)
	e.record(ctx, module, module, now, actErr)

	if actErr != nil {
		e.Logger.Warn("module action failed",
			zap.String("module", module),
			zap.Time("next_trigger", t.NextTrigger),
			zap.Error(actErr))
	} else {
		e.Logger.Info("module fired",
			zap.String("module", module),
			zap.Time("next_trigger", t.NextTrigger))
	}

	return true, errors.Join(actErr, save())
}
