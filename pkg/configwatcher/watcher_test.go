package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lingua_edu_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
tracker:
  cache_driver: redis
  dismiss_after: 4s
`

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseConfig), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	require.NoError(t, Watch(ctx, dir, 50*time.Millisecond, func(cfg *config.Config) {
		reloaded <- cfg
	}))

	updated := `
tracker:
  cache_driver: redis
  dismiss_after: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 3*time.Second, cfg.Tracker.DismissAfter)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatch_IgnoresInvalidConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "configs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseConfig), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	require.NoError(t, Watch(ctx, dir, 50*time.Millisecond, func(cfg *config.Config) {
		reloaded <- cfg
	}))

	invalid := `
tracker:
  cache_driver: redis
  dismiss_after: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(invalid), 0o644))

	select {
	case <-reloaded:
		t.Fatal("invalid config must not be delivered")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Second, func(*config.Config) {})
	assert.Error(t, err)
}
