// Package state owns persisted documents: first-run initialization and the
// shared process-wide base state.
package state

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// Outcome tells how LoadOrInitialize produced a document.
type Outcome int

const (
	// OutcomeLoaded means the document was read from disk.
	OutcomeLoaded Outcome = iota
	// OutcomeCreated means no document existed and defaults were persisted.
	OutcomeCreated
	// OutcomeReset means the document was corrupt and defaults replaced it.
	OutcomeReset
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeCreated:
		return "created"
	case OutcomeReset:
		return "reset"
	default:
		return "unknown"
	}
}

// LoadOrInitialize loads dir/name, falling back to defaults() when the
// document is missing or corrupt. The document is decoded on top of
// defaults(), so keys it lacks keep their default values. The fallback is
// persisted immediately; a failed save is logged and the in-memory defaults
// are still returned. Read failures other than missing/corrupt are returned
// as errors.
func LoadOrInitialize[T any](
	store domain.DocumentStore,
	dir, name string,
	defaults func() T,
	logger *zap.Logger,
) (T, Outcome, error) {
	return loadOver(store, dir, name, defaults(), defaults, logger)
}

// loadOver is LoadOrInitialize with an explicit decode target.
func loadOver[T any](
	store domain.DocumentStore,
	dir, name string,
	seed T,
	defaults func() T,
	logger *zap.Logger,
) (T, Outcome, error) {
	doc := seed
	err := store.Load(dir, name, &doc)

	var outcome Outcome
	switch {
	case err == nil:
		return doc, OutcomeLoaded, nil
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("document does not exist, creating defaults",
			zap.String("document", name),
			zap.String("dir", dir))
		outcome = OutcomeCreated
	case errors.Is(err, domain.ErrCorrupt):
		logger.Warn("document is corrupt, replacing with defaults",
			zap.String("document", name),
			zap.String("dir", dir),
			zap.Error(err))
		outcome = OutcomeReset
	default:
		var zero T
		return zero, OutcomeLoaded, fmt.Errorf("failed to load %s: %w", name, err)
	}

	doc = defaults()
	if err := store.Save(doc, dir, name); err != nil {
		logger.Error("failed to persist default document",
			zap.String("document", name),
			zap.Error(err))
	}
	return doc, outcome, nil
}

// Peek reads dir/name on top of defaults() without creating or repairing
// anything. found is false when the document is missing or corrupt, in which
// case defaults() is returned.
func Peek[T any](store domain.DocumentStore, dir, name string, defaults func() T) (doc T, found bool, err error) {
	return peekOver(store, dir, name, defaults(), defaults)
}

func peekOver[T any](store domain.DocumentStore, dir, name string, seed T, defaults func() T) (T, bool, error) {
	doc := seed
	err := store.Load(dir, name, &doc)
	switch {
	case err == nil:
		return doc, true, nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrCorrupt):
		return defaults(), false, nil
	default:
		var zero T
		return zero, false, fmt.Errorf("failed to load %s: %w", name, err)
	}
}
