// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Duration is a time.Duration persisted as a Go duration string ("72h0m0s").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must be >= 0, got %q", text)
	}
	*d = Duration(parsed)
	return nil
}

// Rearm describes the interval drawn after each firing.
// The interval is uniform in [Min, Max), or exactly Min when Max <= Min.
type Rearm struct {
	Min Duration `toml:"min"`
	Max Duration `toml:"max"`
}

// FixedRearm returns a rearm that always waits d.
func FixedRearm(d time.Duration) Rearm {
	return Rearm{Min: Duration(d), Max: Duration(d)}
}

// RangeRearm returns a rearm drawn uniformly from [min, max).
func RangeRearm(min, max time.Duration) Rearm {
	return Rearm{Min: Duration(min), Max: Duration(max)}
}

// IsFixed reports whether the rearm has no random component.
func (r Rearm) IsFixed() bool {
	return r.Max <= r.Min
}

// Timing is the persisted schedule of a time-gated module.
type Timing struct {
	NextTrigger time.Time `toml:"next_trigger"`
	Rearm       Rearm     `toml:"rearm"`
}

// BaseState is the process-wide configuration shared by all modules.
// Persisted as <home>/config.toml.
type BaseState struct {
	HomeDir               string          `toml:"home_dir"`
	TickInterval          Duration        `toml:"tick_interval"`
	AnnoyanceLevel        uint8           `toml:"annoyance_level"`
	NextAnnoyanceIncrease time.Time       `toml:"next_annoyance_increase"`
	ModuleStatuses        map[string]bool `toml:"module_statuses"`
}

// Clone returns a deep copy.
func (s BaseState) Clone() BaseState {
	c := s
	c.ModuleStatuses = make(map[string]bool, len(s.ModuleStatuses))
	for k, v := range s.ModuleStatuses {
		c.ModuleStatuses[k] = v
	}
	return c
}

// WallpaperState is the persisted document of the wallpaper module.
type WallpaperState struct {
	Enabled           bool   `toml:"enabled"`
	ModuleHome        string `toml:"module_home"`
	AssetPattern      string `toml:"asset_pattern"`
	OriginalWallpaper string `toml:"original_wallpaper,omitempty"`
	Timing            Timing `toml:"timing"`
}

// SysSoundState is the persisted document of the system sound module.
type SysSoundState struct {
	Enabled       bool              `toml:"enabled"`
	ModuleHome    string            `toml:"module_home"`
	Timing        Timing            `toml:"timing"`
	SoundMappings map[string]string `toml:"sound_mappings"`
}

// MouseState is the persisted document of the mouse module.
type MouseState struct {
	Enabled    bool   `toml:"enabled"`
	ModuleHome string `toml:"module_home"`
	Timing     Timing `toml:"timing"`
}

// ClipboardState is the persisted document of the clipboard module.
// Tamper actions themselves are rebuilt on every start.
type ClipboardState struct {
	Enabled         bool     `toml:"enabled"`
	ModuleHome      string   `toml:"module_home"`
	ReadContent     bool     `toml:"read_content"`
	WriteContent    bool     `toml:"write_content"` // false computes and journals without writing back
	SkipThreshold   float64  `toml:"skip_threshold"`
	DisabledActions []string `toml:"disabled_actions"`
}

// Well-known ActionRequest parameters.
const (
	// ParamAssetPattern is the glob of local assets a payload needs in the module home.
	ParamAssetPattern = "asset_pattern"
	// ParamSensitivityDelta is the signed step applied to mouse sensitivity.
	ParamSensitivityDelta = "sensitivity_delta"
)

// ActionRequest is what a module hands to its payload once the time gate passes.
type ActionRequest struct {
	Module string
	Home   string
	Level  uint8
	Params map[string]string
}

// ActionResult carries payload observations back to the module.
type ActionResult struct {
	// Previous is the setting that was replaced, when the payload can read it.
	Previous string
}

// Firing is one journaled module or tamper action execution.
type Firing struct {
	Module  string
	Action  string
	FiredAt time.Time
	Error   string
}

// ActionStatus describes one clipboard tamper action for display.
type ActionStatus struct {
	Name         string
	Enabled      bool
	Cooldown     time.Duration
	NextEligible time.Time
}

// ModuleStatus describes a module for the status command.
type ModuleStatus struct {
	Name        string
	Enabled     bool
	Home        string
	NextTrigger time.Time // zero for modules without a time gate
	Actions     []ActionStatus
}
