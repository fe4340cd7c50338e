// Package infra implements infrastructure concerns (documents, clipboard, journal, processes).
package infra

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const documentExt = ".toml"

// TOMLStore implements domain.DocumentStore with one TOML file per document.
// Unknown keys are tolerated: they are logged and dropped on the next save.
type TOMLStore struct {
	logger *zap.Logger
}

// NewTOMLStore creates a TOML-backed document store.
func NewTOMLStore(logger *zap.Logger) *TOMLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TOMLStore{logger: logger}
}

// Path returns dir/name.toml.
func (s *TOMLStore) Path(dir, name string) string {
	return filepath.Join(dir, name+documentExt)
}

// Load decodes the document into v.
func (s *TOMLStore) Load(dir, name string, v any) error {
	path := s.Path(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	md, err := toml.Decode(string(data), v)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w: %w", path, domain.ErrCorrupt, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		s.logger.Warn("ignoring unknown keys in document",
			zap.String("path", path),
			zap.Strings("keys", keys))
	}

	return nil
}

// Save encodes v and replaces the document (write + rename).
func (s *TOMLStore) Save(v any, dir, name string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := s.Path(dir, name)
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Ensure TOMLStore implements domain.DocumentStore.
var _ domain.DocumentStore = (*TOMLStore)(nil)
