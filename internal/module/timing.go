package module

import (
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// minRearm keeps next_trigger strictly after the firing that produced it.
const minRearm = time.Second

// Timings holds the rearm policy of each time-gated module.
type Timings struct {
	Wallpaper domain.Rearm
	SysSound  domain.Rearm
	Mouse     domain.Rearm
}

// DefaultTimings returns the production schedule.
func DefaultTimings() Timings {
	return Timings{
		Wallpaper: domain.RangeRearm(time.Minute, 8*time.Hour),
		SysSound:  domain.RangeRearm(time.Minute, 8*time.Hour),
		Mouse:     domain.FixedRearm(48 * time.Hour),
	}
}

// DebugTimings returns a compressed schedule for manual testing.
func DebugTimings() Timings {
	return Timings{
		Wallpaper: domain.RangeRearm(time.Second, 10*time.Second),
		SysSound:  domain.RangeRearm(time.Second, 10*time.Second),
		Mouse:     domain.FixedRearm(5 * time.Second),
	}
}

// nextInterval draws the wait after a firing.
func nextInterval(r domain.Rearm, rng domain.Random) time.Duration {
	var d time.Duration
	if r.IsFixed() {
		d = r.Min.Std()
	} else {
		d = drawBetween(rng, r.Min.Std(), r.Max.Std())
	}
	if d < minRearm {
		d = minRearm
	}
	return d
}

// drawBetween returns a uniform duration in [lo, hi). hi <= lo yields lo.
func drawBetween(rng domain.Random, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int64N(int64(hi-lo)))
}

// rearm schedules the next firing relative to now.
func rearm(t *domain.Timing, now time.Time, rng domain.Random) {
	t.NextTrigger = now.Add(nextInterval(t.Rearm, rng))
}

// due reports whether the time gate is open.
func due(t domain.Timing, now time.Time) bool {
	return !now.Before(t.NextTrigger)
}

// fillRearm applies the profile rearm to documents persisted without one.
func fillRearm(t *domain.Timing, r domain.Rearm) {
	if t.Rearm == (domain.Rearm{}) {
		t.Rearm = r
	}
}
