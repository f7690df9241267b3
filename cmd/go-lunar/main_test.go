package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-lunar/internal/config"
)

func TestLogPolicyFor(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		service bool
		want    logPolicy
	}{
		{"one-shot command stays quiet", false, false, logPolicy{level: slog.LevelWarn}},
		{"one-shot command with debug", true, false, logPolicy{level: slog.LevelDebug, source: true}},
		{"server", false, true, logPolicy{level: slog.LevelInfo, file: true}},
		{"server with debug", true, true, logPolicy{level: slog.LevelDebug, source: true, file: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logPolicyFor(tt.debug, tt.service))
		})
	}
}

func TestOpenLogFile_WritesAtEnd(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("cache directory override is XDG specific")
	}
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)

	f, err := openLogFile()
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("first line of a long record\n")
	require.NoError(t, err)

	path := filepath.Join(cache, config.AppID, config.LogFileName)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, config.FilePermUserRW, info.Mode().Perm())

	// Another process truncating the file must not leave a hole before our
	// next write.
	require.NoError(t, os.Truncate(path, 0))
	_, err = f.WriteString("second\n")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(data))
}
