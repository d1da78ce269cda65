package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test,
// a tiny output geometry, and the software encoder.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.MusicDir = filepath.Join(base, "music")
	cfg.Paths.BackgroundsDir = filepath.Join(base, "backgrounds")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Render.Width = 64
	cfg.Render.Height = 36
	cfg.Render.FPS = 5
	cfg.Render.Hardware = "none"
	cfg.Render.Workers = 1

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	return &cfg
}

// WithWorkers overrides the worker-pool size on the test config.
func WithWorkers(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Render.Workers = n
	}
}

// WithAlbumPolicy switches the test config to album batching.
func WithAlbumPolicy(groupSize, targetSec int, untilExhausted bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.Policy = "album"
		cfg.Batch.GroupSize = groupSize
		cfg.Batch.TargetSeconds = targetSec
		cfg.Batch.UntilExhausted = untilExhausted
	}
}
