package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelNone, ParseLevel("none"))
	assert.Equal(t, LevelInfo, ParseLevel("bogus"))
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "NONE", LevelNone.String())
}

func TestNew_WritesToFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "server.log")

	l, err := New(LevelInfo, logPath, "")
	require.NoError(t, err)
	defer l.Close()

	l.Info("hello %s", "world")

	assert.FileExists(t, logPath)
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, err := New(LevelWarn, "", "test")
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, LevelWarn, l.GetLevel())

	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, l.GetLevel())
}

func TestLogger_WithPrefix(t *testing.T) {
	l, err := New(LevelInfo, "", "base")
	require.NoError(t, err)
	defer l.Close()

	child := l.WithPrefix("child")
	assert.Equal(t, "base:child", child.prefix)
}
