package infra

import (
	"math/rand/v2"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// SystemClock implements domain.Clock with the wall clock, in UTC.
type SystemClock struct{}

// Now returns the current UTC time without a monotonic reading.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type systemTimer struct {
	t *time.Timer
}

// NewSystemTimer returns a domain.Timer firing once after d.
func NewSystemTimer(d time.Duration) domain.Timer {
	return &systemTimer{t: time.NewTimer(d)}
}

func (s *systemTimer) C() <-chan time.Time { return s.t.C }

func (s *systemTimer) Stop() bool { return s.t.Stop() }

// PRNG implements domain.Random with the auto-seeded math/rand/v2 source.
type PRNG struct{}

func (PRNG) Float64() float64 { return rand.Float64() }

func (PRNG) Int64N(n int64) int64 { return rand.Int64N(n) }

var (
	_ domain.Clock  = SystemClock{}
	_ domain.Random = PRNG{}
)
