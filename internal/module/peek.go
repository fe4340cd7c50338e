package module

import (
	"slices"
	"time"

	"github.com/eliteGoblin/evilyn/internal/domain"
	"github.com/eliteGoblin/evilyn/internal/state"
)

// DocumentStatus is a module status read straight from its document.
type DocumentStatus struct {
	domain.ModuleStatus
	// Found is false when the document does not exist yet or is corrupt.
	Found bool
}

// Peek describes every module from the documents under home without
// creating or repairing any of them. Tamper eligibility only exists inside a
// running daemon, so NextEligible is left zero.
func Peek(store domain.DocumentStore, home string) ([]DocumentStatus, error) {
	timings := DefaultTimings()
	out := make([]DocumentStatus, 0, len(Names()))

	dir := ModuleHome(home, WallpaperName)
	w, found, err := state.Peek(store, dir, WallpaperName, func() domain.WallpaperState {
		return wallpaperDefaults(dir, time.Time{}, timings.Wallpaper)
	})
	if err != nil {
		return nil, err
	}
	out = append(out, timedStatus(WallpaperName, dir, w.Enabled, w.Timing, found))

	dir = ModuleHome(home, SysSoundName)
	s, found, err := state.Peek(store, dir, SysSoundName, func() domain.SysSoundState {
		return sysSoundDefaults(dir, time.Time{}, timings.SysSound)
	})
	if err != nil {
		return nil, err
	}
	out = append(out, timedStatus(SysSoundName, dir, s.Enabled, s.Timing, found))

	dir = ModuleHome(home, MouseName)
	m, found, err := state.Peek(store, dir, MouseName, func() domain.MouseState {
		return mouseDefaults(dir, time.Time{}, timings.Mouse)
	})
	if err != nil {
		return nil, err
	}
	out = append(out, timedStatus(MouseName, dir, m.Enabled, m.Timing, found))

	dir = ModuleHome(home, ClipboardName)
	c, found, err := state.Peek(store, dir, ClipboardName, func() domain.ClipboardState {
		return clipboardDefaults(dir)
	})
	if err != nil {
		return nil, err
	}
	actions := make([]domain.ActionStatus, 0, len(registrationOrder))
	for _, tr := range registrationOrder {
		actions = append(actions, domain.ActionStatus{
			Name:     string(tr),
			Enabled:  !slices.Contains(c.DisabledActions, string(tr)),
			Cooldown: defaultCooldowns[tr],
		})
	}
	out = append(out, DocumentStatus{
		ModuleStatus: domain.ModuleStatus{
			Name:    ClipboardName,
			Enabled: c.Enabled,
			Home:    dir,
			Actions: actions,
		},
		Found: found,
	})

	return out, nil
}

func timedStatus(name, home string, enabled bool, t domain.Timing, found bool) DocumentStatus {
	return DocumentStatus{
		ModuleStatus: domain.ModuleStatus{
			Name:        name,
			Enabled:     enabled,
			Home:        home,
			NextTrigger: t.NextTrigger,
		},
		Found: found,
	}
}
