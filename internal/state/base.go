package state

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const (
	// BaseDocumentName is the base state document, <home>/config.toml.
	BaseDocumentName = "config"

	// DefaultTickInterval is the time between scheduler ticks.
	DefaultTickInterval = time.Second

	// EscalationInterval is how often the annoyance level increases.
	EscalationInterval = 3 * 7 * 24 * time.Hour

	// InitialAnnoyanceLevel is the level of a fresh install.
	InitialAnnoyanceLevel uint8 = 1
)

// DefaultBaseState returns the first-run base state with the given modules enabled.
func DefaultBaseState(home string, now time.Time, modules []string) domain.BaseState {
	statuses := make(map[string]bool, len(modules))
	for _, name := range modules {
		statuses[name] = true
	}
	return domain.BaseState{
		HomeDir:               home,
		TickInterval:          domain.Duration(DefaultTickInterval),
		AnnoyanceLevel:        InitialAnnoyanceLevel,
		NextAnnoyanceIncrease: now.Add(EscalationInterval),
		ModuleStatuses:        statuses,
	}
}

// Base is the shared handle to the process-wide state.
// Every mutation persists the whole document before returning.
type Base struct {
	mu        sync.Mutex
	doc       domain.BaseState
	store     domain.DocumentStore
	logger    *zap.Logger
	observers []func(domain.BaseState) error
}

// OpenBase loads <home>/config.toml or creates it with every module in modules enabled.
// Keys missing from an existing document take their first-run defaults.
func OpenBase(
	store domain.DocumentStore,
	home string,
	modules []string,
	clock domain.Clock,
	logger *zap.Logger,
) (*Base, Outcome, error) {
	defaults := func() domain.BaseState {
		return DefaultBaseState(home, clock.Now(), modules)
	}
	doc, outcome, err := loadOver(store, home, BaseDocumentName, baseSeed(defaults), defaults, logger)
	if err != nil {
		return nil, outcome, err
	}
	if doc.ModuleStatuses == nil {
		logger.Warn("base state has no module_statuses, enabling every module",
			zap.String("home", home))
		doc.ModuleStatuses = defaults().ModuleStatuses
	}
	normalize(&doc, home)

	return &Base{
		doc:    doc,
		store:  store,
		logger: logger,
	}, outcome, nil
}

// ReadBase returns the persisted base state without creating or repairing it.
// found is false when config.toml is missing or corrupt; first-run defaults
// are returned then.
func ReadBase(
	store domain.DocumentStore,
	home string,
	modules []string,
	clock domain.Clock,
) (doc domain.BaseState, found bool, err error) {
	defaults := func() domain.BaseState {
		return DefaultBaseState(home, clock.Now(), modules)
	}
	doc, found, err = peekOver(store, home, BaseDocumentName, baseSeed(defaults), defaults)
	if err != nil {
		return domain.BaseState{}, false, err
	}
	if doc.ModuleStatuses == nil {
		doc.ModuleStatuses = defaults().ModuleStatuses
	}
	normalize(&doc, home)
	return doc, found, nil
}

// baseSeed is the decode target for config.toml. module_statuses is left
// nil: decoding merges into an existing map, and a module missing from a
// present table must stay disabled.
func baseSeed(defaults func() domain.BaseState) domain.BaseState {
	seed := defaults()
	seed.ModuleStatuses = nil
	return seed
}

// Subscribe registers fn to run after the home directory changes.
func (b *Base) Subscribe(fn func(domain.BaseState) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, fn)
}

// Snapshot returns a copy of the current state.
func (b *Base) Snapshot() domain.BaseState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Clone()
}

// HomeDir returns the root of all persisted state.
func (b *Base) HomeDir() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.HomeDir
}

// TickInterval returns the time between scheduler ticks.
func (b *Base) TickInterval() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.TickInterval.Std()
}

// IsModuleEnabled reports the global flag for a module. Absent means disabled.
func (b *Base) IsModuleEnabled(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.ModuleStatuses[name]
}

// AnnoyanceLevel returns the current level. 0 suspends every module.
func (b *Base) AnnoyanceLevel() uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.AnnoyanceLevel
}

// NextAnnoyanceIncrease returns when the level is next raised.
func (b *Base) NextAnnoyanceIncrease() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.NextAnnoyanceIncrease
}

// SetHomeDir moves the base state to dir and notifies subscribers.
func (b *Base) SetHomeDir(dir string) error {
	b.mu.Lock()
	b.doc.HomeDir = dir
	err := b.persistLocked()
	snap := b.doc.Clone()
	b.mu.Unlock()

	b.notify(snap)
	return err
}

// SetTickInterval changes the time between ticks.
func (b *Base) SetTickInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("tick interval must be > 0, got %s", d)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.TickInterval = domain.Duration(d)
	return b.persistLocked()
}

// SetModuleEnabled sets the global flag for a module.
func (b *Base) SetModuleEnabled(name string, enabled bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.ModuleStatuses[name] = enabled
	return b.persistLocked()
}

// SetAnnoyanceLevel overrides the level; 0 suspends every module.
func (b *Base) SetAnnoyanceLevel(level uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc.AnnoyanceLevel = level
	return b.persistLocked()
}

// EscalateIfDue raises the level by one once now reaches the next increase,
// and schedules the following one. The level saturates at 255.
func (b *Base) EscalateIfDue(now time.Time) (level uint8, escalated bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Before(b.doc.NextAnnoyanceIncrease) {
		return b.doc.AnnoyanceLevel, false, nil
	}

	if b.doc.AnnoyanceLevel < math.MaxUint8 {
		b.doc.AnnoyanceLevel++
	}
	b.doc.NextAnnoyanceIncrease = now.Add(EscalationInterval)
	return b.doc.AnnoyanceLevel, true, b.persistLocked()
}

// Refresh re-reads the document so edits made by other processes apply.
// Keys missing from the document keep their in-memory values. A missing or
// corrupt document is rewritten from memory.
func (b *Base) Refresh() error {
	b.mu.Lock()

	home := b.doc.HomeDir
	doc := b.doc.Clone()
	doc.ModuleStatuses = nil
	err := b.store.Load(home, BaseDocumentName, &doc)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCorrupt):
		b.logger.Warn("base state missing or unreadable, rewriting from memory",
			zap.String("home", home),
			zap.Error(err))
		err = b.persistLocked()
		b.mu.Unlock()
		return err
	default:
		b.mu.Unlock()
		return fmt.Errorf("failed to refresh base state: %w", err)
	}

	if doc.ModuleStatuses == nil {
		doc.ModuleStatuses = b.doc.Clone().ModuleStatuses
	}
	normalize(&doc, home)
	b.doc = doc
	moved := doc.HomeDir != home
	if moved {
		err = b.persistLocked()
	}
	snap := b.doc.Clone()
	b.mu.Unlock()

	if moved {
		b.logger.Info("home directory changed",
			zap.String("from", home),
			zap.String("to", snap.HomeDir))
		b.notify(snap)
	}
	return err
}

func (b *Base) persistLocked() error {
	if err := b.store.Save(b.doc, b.doc.HomeDir, BaseDocumentName); err != nil {
		b.logger.Error("failed to save base state", zap.Error(err))
		return fmt.Errorf("failed to save base state: %w", err)
	}
	return nil
}

func (b *Base) notify(snap domain.BaseState) {
	b.mu.Lock()
	observers := append([]func(domain.BaseState) error(nil), b.observers...)
	b.mu.Unlock()

	for _, fn := range observers {
		if err := fn(snap.Clone()); err != nil {
			b.logger.Warn("base state observer failed", zap.Error(err))
		}
	}
}
