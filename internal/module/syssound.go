package module

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// SysSoundName is the system sound module identity.
const SysSoundName = "syssound"

// DefaultSoundMappings maps system sound events to files in the module home.
func DefaultSoundMappings() map[string]string {
	return map[string]string{
		".Default":         "onii-chan.wav",
		"DeviceConnect":    "kimochi.wav",
		"DeviceDisconnect": "uwu.wav",
		"DeviceFail":       "ara-ara.wav",
		"LowBatteryAlarm":  "turtle.wav",
		"Maximize":         "ara-ara.wav",
		"Minimize":         "uwu.wav",
		"SystemAsterisk":   "onii-chan.wav",
		"WindowsLogon":     "dobre-rano.wav",
		"WindowsUAC":       "kimochi.wav",
	}
}

// SysSound replaces the system sound scheme on a randomized schedule.
type SysSound struct {
	mu      sync.Mutex
	env     Env
	payload domain.Payload
	doc     domain.SysSoundState
}

// NewSysSound loads or creates the system sound document.
func NewSysSound(env Env, payload domain.Payload) (*SysSound, state.Outcome, error) {
	home := ModuleHome(env.Base.HomeDir(), SysSoundName)
	doc, outcome, err := state.LoadOrInitialize(env.Store, home, SysSoundName, func() domain.SysSoundState {
		return sysSoundDefaults(home, env.Clock.Now(), env.Timings.SysSound)
	}, env.Logger)
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to initialize %s: %w", SysSoundName, err)
	}
	doc.ModuleHome = home
	fillRearm(&doc.Timing, env.Timings.SysSound)
	if doc.SoundMappings == nil {
		doc.SoundMappings = DefaultSoundMappings()
	}
	return &SysSound{env: env, payload: payload, doc: doc}, outcome, nil
}

// sysSoundDefaults is also the decode target, so events missing from a
// persisted sound_mappings table keep their default file.
func sysSoundDefaults(home string, now time.Time, r domain.Rearm) domain.SysSoundState {
	return domain.SysSoundState{
		Enabled:       true,
		ModuleHome:    home,
		Timing:        domain.Timing{NextTrigger: now, Rearm: r},
		SoundMappings: DefaultSoundMappings(),
	}
}

func (s *SysSound) Name() string { return SysSoundName }

func (s *SysSound) OnBaseStateChanged(base domain.BaseState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.ModuleHome = ModuleHome(base.HomeDir, SysSoundName)
	return s.save()
}

func (s *SysSound) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Enabled
}

func (s *SysSound) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Enabled = enabled
	return s.save()
}

// Trigger applies the sound mappings when due. Each mapping is passed to the
// payload as an event -> file parameter.
func (s *SysSound) Trigger(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.doc.Enabled {
		return nil
	}

	_, err := s.env.fireIfDue(ctx, SysSoundName, &s.doc.Timing, func(ctx context.Context) error {
		_, err := s.payload.Perform(ctx, domain.ActionRequest{
			Module: SysSoundName,
			Home:   s.doc.ModuleHome,
			Level:  s.env.Base.AnnoyanceLevel(),
			Params: maps.Clone(s.doc.SoundMappings),
		})
		return err
	}, s.save)
	return err
}

func (s *SysSound) Status() domain.ModuleStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ModuleStatus{
		Name:        SysSoundName,
		Enabled:     s.doc.Enabled,
		Home:        s.doc.ModuleHome,
		NextTrigger: s.doc.Timing.NextTrigger,
	}
}

// State returns a copy of the persisted document.
func (s *SysSound) State() domain.SysSoundState {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc
	doc.SoundMappings = maps.Clone(s.doc.SoundMappings)
	return doc
}

func (s *SysSound) save() error {
	return s.env.Store.Save(s.doc, s.doc.ModuleHome, SysSoundName)
}

var _ domain.Module = (*SysSound)(nil)
