package module

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// ClipboardName is the clipboard module identity.
const ClipboardName = "clipboard"

// Clipboard tampers with clipboard text. It has no time gate of its own:
// every trigger runs one tamper pass.
type Clipboard struct {
	mu       sync.Mutex
	env      Env
	clip     domain.Clipboard
	doc      domain.ClipboardState
	tamperer *Tamperer
}

// NewClipboard loads or creates the clipboard document and registers the
// tamper actions with fresh jittered eligibility.
func NewClipboard(env Env, clip domain.Clipboard) (*Clipboard, state.Outcome, error) {
	home := ModuleHome(env.Base.HomeDir(), ClipboardName)
	doc, outcome, err := state.LoadOrInitialize(env.Store, home, ClipboardName, func() domain.ClipboardState {
		return clipboardDefaults(home)
	}, env.Logger)
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to initialize %s: %w", ClipboardName, err)
	}
	doc.ModuleHome = home
	if doc.SkipThreshold < 0 || doc.SkipThreshold > 1 {
		env.Logger.Warn("skip threshold out of range, using default",
			zap.Float64("skip_threshold", doc.SkipThreshold))
		doc.SkipThreshold = DefaultSkipThreshold
	}

	actions := DefaultActions(env.Clock.Now(), env.Rand)
	for _, a := range actions {
		if slices.Contains(doc.DisabledActions, string(a.Transform)) {
			a.Enabled = false
		}
	}
	for _, name := range doc.DisabledActions {
		if _, err := ParseTransform(name); err != nil {
			env.Logger.Warn("ignoring unknown disabled action", zap.String("action", name))
		}
	}

	return &Clipboard{
		env:      env,
		clip:     clip,
		doc:      doc,
		tamperer: NewTamperer(actions, doc.SkipThreshold, env.Rand),
	}, outcome, nil
}

func clipboardDefaults(home string) domain.ClipboardState {
	return domain.ClipboardState{
		Enabled:       true,
		ModuleHome:    home,
		ReadContent:   true,
		WriteContent:  true,
		SkipThreshold: DefaultSkipThreshold,
	}
}

func (c *Clipboard) Name() string { return ClipboardName }

func (c *Clipboard) OnBaseStateChanged(base domain.BaseState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.ModuleHome = ModuleHome(base.HomeDir, ClipboardName)
	return c.save()
}

func (c *Clipboard) IsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Enabled
}

func (c *Clipboard) SetEnabled(enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc.Enabled = enabled
	return c.save()
}

// SetActionEnabled toggles one tamper action and persists the disabled set.
func (c *Clipboard) SetActionEnabled(tr Transform, enabled bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.tamperer.SetEnabled(tr, enabled); err != nil {
		return err
	}
	c.doc.DisabledActions = slices.DeleteFunc(c.doc.DisabledActions, func(name string) bool {
		return name == string(tr)
	})
	if !enabled {
		c.doc.DisabledActions = append(c.doc.DisabledActions, string(tr))
	}
	return c.save()
}

// Trigger runs one tamper pass over the clipboard text. A read failure skips
// the pass entirely. The text is written back only when a transform fired;
// a failed write does not roll back the advanced eligibility and is recorded
// on every journaled action of the pass.
func (c *Clipboard) Trigger(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.doc.Enabled || !c.doc.ReadContent {
		return nil
	}

	text, err := c.clip.Read()
	if err != nil {
		return fmt.Errorf("tamper pass skipped: %w", err)
	}

	now := c.env.Clock.Now()
	out, fired := c.tamperer.Pass(text, now)
	if len(fired) == 0 {
		return nil
	}

	names := make([]string, len(fired))
	for i, tr := range fired {
		names[i] = string(tr)
	}

	var writeErr error
	if c.doc.WriteContent {
		if err := c.clip.Write(out); err != nil {
			writeErr = fmt.Errorf("failed to write tampered clipboard: %w", err)
		}
	}

	for _, name := range names {
		c.env.record(ctx, ClipboardName, name, now, writeErr)
	}

	switch {
	case writeErr != nil:
		return writeErr
	case !c.doc.WriteContent:
		c.env.Logger.Info("tamper pass computed, write disabled",
			zap.Strings("actions", names))
	default:
		c.env.Logger.Info("clipboard tampered", zap.Strings("actions", names))
	}
	return nil
}

func (c *Clipboard) Status() domain.ModuleStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	actions := c.tamperer.Actions()
	statuses := make([]domain.ActionStatus, len(actions))
	for i, a := range actions {
		statuses[i] = domain.ActionStatus{
			Name:         string(a.Transform),
			Enabled:      a.Enabled,
			Cooldown:     a.Cooldown,
			NextEligible: a.NextEligible,
		}
	}
	return domain.ModuleStatus{
		Name:    ClipboardName,
		Enabled: c.doc.Enabled,
		Home:    c.doc.ModuleHome,
		Actions: statuses,
	}
}

// State returns a copy of the persisted document.
func (c *Clipboard) State() domain.ClipboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.doc
	doc.DisabledActions = slices.Clone(c.doc.DisabledActions)
	return doc
}

func (c *Clipboard) save() error {
	return c.env.Store.Save(c.doc, c.doc.ModuleHome, ClipboardName)
}

var _ domain.Module = (*Clipboard)(nil)
