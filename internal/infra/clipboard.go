package infra

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

// SystemClipboard implements domain.Clipboard on the host clipboard.
type SystemClipboard struct{}

// NewSystemClipboard creates a host clipboard adapter.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// Read returns the current clipboard text.
func (c *SystemClipboard) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClipboardUnavailable, err)
	}
	return text, nil
}

// Write replaces the clipboard text.
func (c *SystemClipboard) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrClipboardUnavailable, err)
	}
	return nil
}

// Ensure SystemClipboard implements domain.Clipboard.
var _ domain.Clipboard = (*SystemClipboard)(nil)
