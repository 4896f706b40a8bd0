package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheDir_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	require.Equal(t, filepath.Join(dir, "conceptnav"), CacheDir())
	require.Equal(t, filepath.Join(dir, "conceptnav", "responses.db"), DefaultCachePath())
}

func TestConfigDir_Home(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, ".config", "conceptnav"), ConfigDir())
	require.Equal(t, filepath.Join(home, ".config", "conceptnav", "config.yaml"), DefaultConfigPath())
	require.Equal(t, filepath.Join(home, ".config", "conceptnav", "traces", "traces.jsonl"), DefaultTracesPath())
}

func TestCacheDir_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	require.Equal(t, filepath.Join(home, ".cache", "conceptnav"), CacheDir())
}
