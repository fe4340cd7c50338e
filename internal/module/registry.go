package module

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// Names returns the built-in modules in trigger order.
func Names() []string {
	return []string{WallpaperName, SysSoundName, MouseName, ClipboardName}
}

// Registry holds modules in registration order, which is also trigger order.
type Registry struct {
	modules []domain.Module
	byName  map[string]domain.Module
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]domain.Module)}
}

// NewRegistryWithModules creates a registry with custom modules (for testing).
func NewRegistryWithModules(modules ...domain.Module) (*Registry, error) {
	r := NewRegistry()
	for _, m := range modules {
		if err := r.Register(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends a module. Names must be unique.
func (r *Registry) Register(m domain.Module) error {
	if _, ok := r.byName[m.Name()]; ok {
		return fmt.Errorf("module %q already registered", m.Name())
	}
	r.modules = append(r.modules, m)
	r.byName[m.Name()] = m
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (domain.Module, error) {
	m, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownModule, name)
	}
	return m, nil
}

// All returns the modules in trigger order.
func (r *Registry) All() []domain.Module {
	return append([]domain.Module(nil), r.modules...)
}

// Names returns the registered module names in trigger order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.modules))
	for i, m := range r.modules {
		names[i] = m.Name()
	}
	return names
}

// Collaborators are the OS bindings the built-in modules drive.
type Collaborators struct {
	Wallpaper domain.Payload
	SysSound  domain.Payload
	Mouse     domain.Payload
	Clipboard domain.Clipboard
}

// Build constructs every built-in module and subscribes it to base state
// changes. A module that fails to initialize is logged and left out.
func Build(env Env, c Collaborators) *Registry {
	r := NewRegistry()

	add := func(name string, m domain.Module, outcome state.Outcome, err error) {
		if err != nil {
			env.Logger.Error("module unavailable",
				zap.String("module", name),
				zap.Error(err))
			return
		}
		if err := r.Register(m); err != nil {
			env.Logger.Error("module not registered",
				zap.String("module", name),
				zap.Error(err))
			return
		}
		env.Base.Subscribe(m.OnBaseStateChanged)
		env.Logger.Debug("module ready",
			zap.String("module", name),
			zap.Stringer("document", outcome))
	}

	w, outcome, err := NewWallpaper(env, c.Wallpaper)
	add(WallpaperName, w, outcome, err)
	s, outcome, err := NewSysSound(env, c.SysSound)
	add(SysSoundName, s, outcome, err)
	m, outcome, err := NewMouse(env, c.Mouse)
	add(MouseName, m, outcome, err)
	cb, outcome, err := NewClipboard(env, c.Clipboard)
	add(ClipboardName, cb, outcome, err)

	return r
}
