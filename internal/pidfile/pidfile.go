// Package pidfile records the server's PID on disk so operators and
// process supervisors can find and signal a running instance.
package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// File is one PID file on disk
type File struct {
	path string
}

// New creates a File at the given path. Nothing is written until Acquire.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the file's location
func (f *File) Path() string {
	return f.path
}

// Acquire writes the current PID. It refuses to overwrite the file while
// the recorded process is still alive; a stale file from a crashed
// instance is replaced silently.
func (f *File) Acquire() error {
	if pid, err := f.read(); err == nil && processAlive(pid) {
		return fmt.Errorf("server already running with pid %d", pid)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create pidfile directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		return fmt.Errorf("failed to write pidfile: %w", err)
	}
	return nil
}

// Release removes the PID file. Missing files are not an error.
func (f *File) Release() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove pidfile: %w", err)
	}
	return nil
}

func (f *File) read() (int, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in pidfile: %w", err)
	}
	return pid, nil
}

// processAlive probes a PID with signal 0
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
