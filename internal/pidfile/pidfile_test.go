package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "server.pid")
	f := New(path)

	require.NoError(t, f.Acquire())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(data))
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	require.NoError(t, f.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFile_RefusesLivePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	// Our own PID is definitely alive
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0644))

	err := New(path).Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestFile_ReplacesStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.pid")

	// A PID that cannot belong to a live process
	require.NoError(t, os.WriteFile(path, []byte("999999999"), 0644))

	require.NoError(t, New(path).Acquire())
}

func TestFile_ReleaseMissingFile(t *testing.T) {
	f := New(filepath.Join(t.TempDir(), "absent.pid"))
	assert.NoError(t, f.Release())
}
