package infra

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const (
	appDirName = "Evilyn"

	// HomeEnv overrides the default home directory.
	HomeEnv = "EVILYN_HOME"
)

// DefaultHomeDir returns $EVILYN_HOME, or <temp dir>/Evilyn.
func DefaultHomeDir() string {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return home
	}
	return filepath.Join(os.TempDir(), appDirName)
}

// FileSystemManagerImpl implements domain.FileSystemManager.
type FileSystemManagerImpl struct {
	homeDir string
}

// NewFileSystemManager creates a new filesystem manager.
func NewFileSystemManager() domain.FileSystemManager {
	home, _ := os.UserHomeDir()
	return &FileSystemManagerImpl{homeDir: home}
}

// NewFileSystemManagerWithHome creates a filesystem manager with custom home (for testing).
func NewFileSystemManagerWithHome(home string) domain.FileSystemManager {
	return &FileSystemManagerImpl{homeDir: home}
}

// Exists checks if a path exists.
func (fm *FileSystemManagerImpl) Exists(path string) bool {
	expanded := fm.ExpandHome(path)
	_, err := os.Stat(expanded)
	return err == nil
}

// EnsureDir creates a directory and its parents.
func (fm *FileSystemManagerImpl) EnsureDir(path string) error {
	return os.MkdirAll(fm.ExpandHome(path), 0755)
}

// HasMatch reports whether any entry in dir matches the glob pattern.
func (fm *FileSystemManagerImpl) HasMatch(dir, pattern string) (bool, error) {
	matches, err := filepath.Glob(filepath.Join(fm.ExpandHome(dir), pattern))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// ExpandHome expands ~ to the user's home directory.
func (fm *FileSystemManagerImpl) ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(fm.homeDir, path[2:])
	}
	if path == "~" {
		return fm.homeDir
	}
	return path
}

// Ensure FileSystemManagerImpl implements domain.FileSystemManager.
var _ domain.FileSystemManager = (*FileSystemManagerImpl)(nil)
