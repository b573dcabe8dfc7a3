package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := homedir.Dir()
	require.NoError(t, err)

	got, err := ExpandPath("~/shots")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "shots"), got)

	got, err = ExpandPath("relative/dir")
	require.NoError(t, err)
	assert.Equal(t, "relative/dir", got)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxytrace.toml")
	require.NoError(t, os.WriteFile(path, []byte("downscale = 2\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var downscale atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg Config) {
			downscale.Store(int64(cfg.Downscale))
		})
	}()

	// The watcher starts asynchronously, so keep rewriting until an event lands.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("downscale = 8\n"), 0o644)
		return downscale.Load() == 8
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_SkipsInvalidEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oxytrace.toml")
	other := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(path, []byte("downscale = 2\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	var last atomic.Int64
	go func() {
		_ = Watch(ctx, path, func(cfg Config) {
			calls.Add(1)
			last.Store(int64(cfg.Downscale))
		})
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("downscale = 0\n"), 0o644)
		_ = os.WriteFile(other, []byte("downscale = 9\n"), 0o644)
		_ = os.WriteFile(path, []byte("downscale = 3\n"), 0o644)
		return last.Load() == 3
	}, 5*time.Second, 50*time.Millisecond)

	// Only valid reloads of the watched file reach the callback.
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	assert.Equal(t, int64(3), last.Load())
}

func TestWatch_MissingDirectoryFails(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "oxytrace.toml"), func(Config) {})
	assert.Error(t, err)
}
