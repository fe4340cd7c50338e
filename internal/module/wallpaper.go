package module

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

const (
	// WallpaperName is the wallpaper module identity.
	WallpaperName = "wallpaper"

	// DefaultAssetPattern selects the wallpaper images in the module home.
	DefaultAssetPattern = "*.jpg"
)

// Wallpaper swaps the desktop wallpaper on a randomized schedule.
type Wallpaper struct {
	mu      sync.Mutex
	env     Env
	payload domain.Payload
	doc     domain.WallpaperState
}

// NewWallpaper loads or creates the wallpaper document.
func NewWallpaper(env Env, payload domain.Payload) (*Wallpaper, state.Outcome, error) {
	home := ModuleHome(env.Base.HomeDir(), WallpaperName)
	doc, outcome, err := state.LoadOrInitialize(env.Store, home, WallpaperName, func() domain.WallpaperState {
		return wallpaperDefaults(home, env.Clock.Now(), env.Timings.Wallpaper)
	}, env.Logger)
	if err != nil {
		return nil, outcome, fmt.Errorf("failed to initialize %s: %w", WallpaperName, err)
	}
	doc.ModuleHome = home
	fillRearm(&doc.Timing, env.Timings.Wallpaper)
	if doc.AssetPattern == "" {
		doc.AssetPattern = DefaultAssetPattern
	}
	return &Wallpaper{env: env, payload: payload, doc: doc}, outcome, nil
}

func wallpaperDefaults(home string, now time.Time, r domain.Rearm) domain.WallpaperState {
	return domain.WallpaperState{
		Enabled:      true,
		ModuleHome:   home,
		AssetPattern: DefaultAssetPattern,
		Timing:       domain.Timing{NextTrigger: now, Rearm: r},
	}
}

func (w *Wallpaper) Name() string { return WallpaperName }

func (w *Wallpaper) OnBaseStateChanged(base domain.BaseState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.ModuleHome = ModuleHome(base.HomeDir, WallpaperName)
	return w.save()
}

func (w *Wallpaper) IsEnabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc.Enabled
}

func (w *Wallpaper) SetEnabled(enabled bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Enabled = enabled
	return w.save()
}

// Trigger changes the wallpaper when due. The first wallpaper the payload
// replaces is remembered so it can be restored by hand.
func (w *Wallpaper) Trigger(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.doc.Enabled {
		return nil
	}

	_, err := w.env.fireIfDue(ctx, WallpaperName, &w.doc.Timing, func(ctx context.Context) error {
		res, err := w.payload.Perform(ctx, domain.ActionRequest{
			Module: WallpaperName,
			Home:   w.doc.ModuleHome,
			Level:  w.env.Base.AnnoyanceLevel(),
			Params: map[string]string{domain.ParamAssetPattern: w.doc.AssetPattern},
		})
		if w.doc.OriginalWallpaper == "" && res.Previous != "" {
			w.doc.OriginalWallpaper = res.Previous
			w.env.Logger.Info("recorded original wallpaper",
				zap.String("path", res.Previous))
		}
		return err
	}, w.save)
	return err
}

func (w *Wallpaper) Status() domain.ModuleStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.ModuleStatus{
		Name:        WallpaperName,
		Enabled:     w.doc.Enabled,
		Home:        w.doc.ModuleHome,
		NextTrigger: w.doc.Timing.NextTrigger,
	}
}

// State returns a copy of the persisted document.
func (w *Wallpaper) State() domain.WallpaperState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc
}

func (w *Wallpaper) save() error {
	return w.env.Store.Save(w.doc, w.doc.ModuleHome, WallpaperName)
}

var _ domain.Module = (*Wallpaper)(nil)
