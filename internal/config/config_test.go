package config

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("exercises the XDG default paths")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, "cache"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "config"))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, 0.7, cfg.Audio.DefaultVolume)
	assert.True(t, cfg.Library.Watch)
	assert.Equal(t, filepath.Join(home, "Music"), cfg.Library.MusicDir)
	assert.Equal(t, filepath.Join(home, "data", "tonearm", "library.db"), cfg.Library.DatabasePath)
	// Readline history is a cache, not data.
	assert.Equal(t, filepath.Join(home, "cache", "tonearm", "history"), cfg.Shell.HistoryFile)
	assert.Equal(t, 200, cfg.Shell.TickMs)
}
