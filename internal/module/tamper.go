package module

import (
	"fmt"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const (
	day  = 24 * time.Hour
	week = 7 * day

	// DefaultSkipThreshold is the chance an eligible action sits out a pass.
	DefaultSkipThreshold = 0.7

	initialJitterMin = 5 * time.Minute
	initialJitterMax = 4 * time.Hour
)

var defaultCooldowns = map[Transform]time.Duration{
	TransformUppercase: 3 * day,
	TransformLowercase: 5 * day,
	TransformReverse:   10 * day,
	TransformSwapCase:  week,
	TransformSemicolon: day,
}

// TamperAction is one clipboard transform with its own cooldown.
// NextEligible only moves when this action runs.
type TamperAction struct {
	Transform    Transform
	Enabled      bool
	Cooldown     time.Duration
	NextEligible time.Time
}

// DefaultActions builds every transform with its reference cooldown and an
// initial eligibility jittered into [5m, 4h) so they don't line up on first run.
func DefaultActions(now time.Time, rng domain.Random) []*TamperAction {
	actions := make([]*TamperAction, 0, len(registrationOrder))
	for _, t := range registrationOrder {
		actions = append(actions, &TamperAction{
			Transform:    t,
			Enabled:      true,
			Cooldown:     defaultCooldowns[t],
			NextEligible: now.Add(drawBetween(rng, initialJitterMin, initialJitterMax)),
		})
	}
	return actions
}

// Tamperer is the clipboard sub-scheduler. Each pass considers every action
// in registration order behind two gates: an independent skip roll and the
// action's cooldown. Fired transforms compose.
type Tamperer struct {
	actions   []*TamperAction
	threshold float64
	rng       domain.Random
}

// NewTamperer creates a sub-scheduler. threshold is the skip probability.
func NewTamperer(actions []*TamperAction, threshold float64, rng domain.Random) *Tamperer {
	return &Tamperer{actions: actions, threshold: threshold, rng: rng}
}

// Pass applies every action that survives both gates to text and returns the
// result with the transforms that fired. Fired actions are rearmed to now + cooldown.
func (t *Tamperer) Pass(text string, now time.Time) (string, []Transform) {
	var fired []Transform
	for _, a := range t.actions {
		if !a.Enabled {
			continue
		}
		if t.rng.Float64() < t.threshold {
			continue
		}
		if now.Before(a.NextEligible) {
			continue
		}
		text = a.Transform.Apply(text)
		a.NextEligible = now.Add(a.Cooldown)
		fired = append(fired, a.Transform)
	}
	return text, fired
}

// SetEnabled toggles one action.
func (t *Tamperer) SetEnabled(tr Transform, enabled bool) error {
	for _, a := range t.actions {
		if a.Transform == tr {
			a.Enabled = enabled
			return nil
		}
	}
	return fmt.Errorf("transform %q not registered", tr)
}

// Threshold returns the skip probability.
func (t *Tamperer) Threshold() float64 {
	return t.threshold
}

// Actions returns copies of the registered actions in order.
func (t *Tamperer) Actions() []TamperAction {
	out := make([]TamperAction, len(t.actions))
	for i, a := range t.actions {
		out[i] = *a
	}
	return out
}
