package domain

import (
	"context"
	"time"
)

// DocumentStore persists one structured document per entity.
// Implementation: one TOML file per document under its directory.
type DocumentStore interface {
	// Load decodes dir/name into v.
	// Returns an error wrapping ErrNotFound when the document does not exist
	// and ErrCorrupt when it exists but cannot be decoded.
	Load(dir, name string, v any) error

	// Save creates dir if missing and overwrites the document.
	Save(v any, dir, name string) error

	// Path returns the file backing dir/name.
	Path(dir, name string) string
}

// Clock abstracts wall-clock time so schedules can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

// Timer is a single recurring-loop wait.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// Random is the non-cryptographic source behind jitter and skip rolls.
type Random interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64

	// Int64N returns a value in [0, n). n must be > 0.
	Int64N(n int64) int64
}

// Clipboard reads and writes the host clipboard text.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// Payload performs the OS side effect of a module (wallpaper, sounds, mouse).
// Implementations must be safe to call again after a failure.
type Payload interface {
	Perform(ctx context.Context, req ActionRequest) (ActionResult, error)
}

// Journal records firings for later inspection.
// Implementation: SQLite database in the home directory.
type Journal interface {
	// Record appends a firing.
	Record(ctx context.Context, f Firing) error

	// Recent returns up to limit firings, newest first.
	Recent(ctx context.Context, limit int) ([]Firing, error)

	// Close releases resources.
	Close() error
}

// ProcessManager handles OS process queries.
// Implementation: uses gopsutil for cross-platform support.
type ProcessManager interface {
	// IsRunning checks if a PID exists and is running.
	IsRunning(pid int) bool

	// GetCurrentPID returns the current process PID.
	GetCurrentPID() int
}

// FileSystemManager handles filesystem operations.
type FileSystemManager interface {
	// Exists checks if a path exists.
	Exists(path string) bool

	// EnsureDir creates a directory and its parents.
	EnsureDir(path string) error

	// HasMatch reports whether any file in dir matches the glob pattern.
	HasMatch(dir, pattern string) (bool, error)

	// ExpandHome expands ~ to the user's home directory.
	ExpandHome(path string) string
}

// Module is an independently schedulable unit with its own persisted state.
type Module interface {
	// Name is the module identity, also its directory and document name.
	Name() string

	// OnBaseStateChanged recomputes derived paths and persists.
	OnBaseStateChanged(base BaseState) error

	// IsEnabled reports the module's own gate.
	IsEnabled() bool

	// SetEnabled mutates the module's own gate and persists.
	SetEnabled(enabled bool) error

	// Trigger is the per-tick entry point. It is a no-op while disabled
	// and acts at most once per due schedule.
	Trigger(ctx context.Context) error

	// Status describes the module for display.
	Status() ModuleStatus
}
