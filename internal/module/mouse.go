package module

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// MouseName is the mouse module identity.
const MouseName = "mouse"

// sensitivityStep is requested on every firing: one notch slower.
const sensitivityStep = "-1"

// Mouse lowers pointer sensitivity on a fixed schedule.
type Mouse struct {
	mu      sync.Mutex
	env     Env
	payload domain.Payload
	doc     domain.MouseState
}

// NewMouse loads or creates the mouse document.
func NewMouse(env Env, payload domain.Payload) (*Mouse, state.Outcome, error) {
	home := ModuleHome(env.Base.HomeDir(), MouseName)
	doc, outcome, err := state.LoadOrInitialize(env.Store, home, MouseName, func() domain.MouseState {
		return mouseDefaults(home, env.Clock.Now(), env.Timings.Mouse)
	}, env.Logger)
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to initialize %s: %w", MouseName, err)
	}
	doc.ModuleHome = home
	fillRearm(&doc.Timing, env.Timings.Mouse)
	return &Mouse{env: env, payload: payload, doc: doc}, outcome, nil
}

func mouseDefaults(home string, now time.Time, r domain.Rearm) domain.MouseState {
	return domain.MouseState{
		Enabled:    true,
		ModuleHome: home,
		Timing:     domain.Timing{NextTrigger: now, Rearm: r},
	}
}

func (m *Mouse) Name() string { return MouseName }

func (m *Mouse) OnBaseStateChanged(base domain.BaseState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.ModuleHome = ModuleHome(base.HomeDir, MouseName)
	return m.save()
}

func (m *Mouse) IsEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc.Enabled
}

func (m *Mouse) SetEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc.Enabled = enabled
	return m.save()
}

func (m *Mouse) Trigger(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.doc.Enabled {
		return nil
	}

	_, err := m.env.fireIfDue(ctx, MouseName, &m.doc.Timing, func(ctx context.Context) error {
		_, err := m.payload.Perform(ctx, domain.ActionRequest{
			Module: MouseName,
			Home:   m.doc.ModuleHome,
			Level:  m.env.Base.AnnoyanceLevel(),
			Params: map[string]string{domain.ParamSensitivityDelta: sensitivityStep},
		})
		return err
	}, m.save)
	return err
}

func (m *Mouse) Status() domain.ModuleStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.ModuleStatus{
		Name:        MouseName,
		Enabled:     m.doc.Enabled,
		Home:        m.doc.ModuleHome,
		NextTrigger: m.doc.Timing.NextTrigger,
	}
}

// State returns a copy of the persisted document.
func (m *Mouse) State() domain.MouseState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc
}

func (m *Mouse) save() error {
	return m.env.Store.Save(m.doc, m.doc.ModuleHome, MouseName)
}

var _ domain.Module = (*Mouse)(nil)
