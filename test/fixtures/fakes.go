// Package fixtures provides fake collaborators for unit and integration tests.
package fixtures

import (
	"context"
	"sync"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// Epoch is a fixed start time for simulated clocks.
var Epoch = time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

// FakeClock is a manually advanced domain.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock stopped at now.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// ScriptedRandom replays Floats then returns DefaultFloat.
// Int64N replays Ints (clamped into [0, n)) then returns 0.
type ScriptedRandom struct {
	mu           sync.Mutex
	Floats       []float64
	DefaultFloat float64
	Ints         []int64
}

func (r *ScriptedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Floats) == 0 {
		return r.DefaultFloat
	}
	f := r.Floats[0]
	r.Floats = r.Floats[1:]
	return f
}

func (r *ScriptedRandom) Int64N(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Ints) == 0 {
		return 0
	}
	v := r.Ints[0]
	r.Ints = r.Ints[1:]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// FakeClipboard is an in-memory domain.Clipboard with injectable failures.
type FakeClipboard struct {
	mu       sync.Mutex
	Text     string
	ReadErr  error
	WriteErr error
	Reads    int
	Writes   int
}

func (c *FakeClipboard) Read() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Reads++
	if c.ReadErr != nil {
		return "", c.ReadErr
	}
	return c.Text, nil
}

func (c *FakeClipboard) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Writes++
	if c.WriteErr != nil {
		return c.WriteErr
	}
	c.Text = text
	return nil
}

// RecordingPayload records every request and answers with Result and Err.
type RecordingPayload struct {
	mu       sync.Mutex
	Requests []domain.ActionRequest
	Result   domain.ActionResult
	Err      error
}

func (p *RecordingPayload) Perform(_ context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Requests = append(p.Requests, req)
	return p.Result, p.Err
}

// Calls returns the number of Perform calls.
func (p *RecordingPayload) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Requests)
}

// MemoryJournal is an in-memory domain.Journal.
type MemoryJournal struct {
	mu        sync.Mutex
	Firings   []domain.Firing
	RecordErr error
}

func (j *MemoryJournal) Record(_ context.Context, f domain.Firing) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.RecordErr != nil {
		return j.RecordErr
	}
	j.Firings = append(j.Firings, f)
	return nil
}

func (j *MemoryJournal) Recent(_ context.Context, limit int) ([]domain.Firing, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit <= 0 {
		return nil, nil
	}
	out := make([]domain.Firing, 0, limit)
	for i := len(j.Firings) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.Firings[i])
	}
	return out, nil
}

func (j *MemoryJournal) Close() error { return nil }

// Actions returns the journaled action names in order.
func (j *MemoryJournal) Actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.Firings))
	for i, f := range j.Firings {
		out[i] = f.Action
	}
	return out
}

var (
	_ domain.Clock     = (*FakeClock)(nil)
	_ domain.Random    = (*ScriptedRandom)(nil)
	_ domain.Clipboard = (*FakeClipboard)(nil)
	_ domain.Payload   = (*RecordingPayload)(nil)
	_ domain.Journal   = (*MemoryJournal)(nil)
)
