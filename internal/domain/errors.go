package domain

import "errors"

var (
	// ErrNotFound means a persisted document does not exist yet.
	ErrNotFound = errors.New("document not found")

	// ErrCorrupt means a persisted document exists but cannot be decoded.
	ErrCorrupt = errors.New("document corrupt")

	// ErrAlreadyRunning means another live process holds the instance lock.
	ErrAlreadyRunning = errors.New("another instance is already running")

	// ErrUnknownModule means a module name is not registered.
	ErrUnknownModule = errors.New("unknown module")

	// ErrAssetsMissing means a payload found no local assets to work with.
	ErrAssetsMissing = errors.New("no local assets")

	// ErrClipboardUnavailable means the host clipboard cannot be accessed.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)
