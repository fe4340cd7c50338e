package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eliteGoblin/evilyn/internal/domain"
)

const pidFileName = "evilyn.pid"

// InstanceLock keeps one daemon per home directory using a pid file.
// A pid file naming a dead process is stale and gets overwritten.
type InstanceLock struct {
	path           string
	processManager domain.ProcessManager
}

// NewInstanceLock creates a lock for the given home directory.
func NewInstanceLock(homeDir string, pm domain.ProcessManager) *InstanceLock {
	return &InstanceLock{
		path:           filepath.Join(homeDir, pidFileName),
		processManager: pm,
	}
}

// Path returns the pid file path.
func (l *InstanceLock) Path() string {
	return l.path
}

// Holder returns the recorded PID and whether that process is alive.
func (l *InstanceLock) Holder() (pid int, alive bool) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return 0, false
	}
	pid, err = strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, false
	}
	return pid, l.processManager.IsRunning(pid)
}

// Acquire records the current PID, failing with domain.ErrAlreadyRunning
// when another live process holds the lock.
func (l *InstanceLock) Acquire() error {
	self := l.processManager.GetCurrentPID()
	if pid, alive := l.Holder(); alive && pid != self {
		return fmt.Errorf("pid %d: %w", pid, domain.ErrAlreadyRunning)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", l.path, self)
	if err := os.WriteFile(tmpPath, []byte(strconv.Itoa(self)), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

// Release removes the pid file if it still names the current process.
func (l *InstanceLock) Release() error {
	pid, _ := l.Holder()
	if pid != l.processManager.GetCurrentPID() {
		return nil
	}
	if err := os.Remove(l.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
