package effects_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/effects"
	"clipforge/internal/logging"
)

func starsParams() config.Stars {
	return config.Stars{
		Enabled:  true,
		Count:    40,
		Size:     2,
		Pulse:    40,
		Color:    "#FFFFFF",
		Opacity:  85,
		IntroSec: 0.5,
	}
}

func readFrames(t *testing.T, dir string) map[string][]byte {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read frames dir: %v", err)
	}
	frames := make(map[string][]byte, len(entries))
	for _, entry := range entries {
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			t.Fatalf("read frame %s: %v", entry.Name(), err)
		}
		frames[entry.Name()] = data
	}
	return frames
}

func TestEnsureStarsDeterministic(t *testing.T) {
	ctx := context.Background()

	first := effects.NewCache(t.TempDir(), logging.NewNop())
	second := effects.NewCache(t.TempDir(), logging.NewNop())

	seqA, err := first.EnsureStars(ctx, starsParams(), 64, 36, 5)
	if err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	seqB, err := second.EnsureStars(ctx, starsParams(), 64, 36, 5)
	if err != nil {
		t.Fatalf("second build failed: %v", err)
	}

	if seqA.FrameCount != 30 {
		t.Fatalf("expected 30 frames for 6s loop at 5fps, got %d", seqA.FrameCount)
	}

	framesA := readFrames(t, seqA.Dir)
	framesB := readFrames(t, seqB.Dir)
	if len(framesA) != seqA.FrameCount || len(framesB) != seqB.FrameCount {
		t.Fatalf("frame count mismatch: %d vs %d", len(framesA), len(framesB))
	}
	for name, data := range framesA {
		if !bytes.Equal(data, framesB[name]) {
			t.Fatalf("frame %s differs between independent builds", name)
		}
	}
}

func TestEnsureReusesCompletedSequence(t *testing.T) {
	ctx := context.Background()
	cache := effects.NewCache(t.TempDir(), logging.NewNop())

	seqA, err := cache.EnsureStars(ctx, starsParams(), 32, 18, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// Overwrite one frame; a reuse must not regenerate it.
	sentinel := filepath.Join(seqA.Dir, "f_0000.png")
	if err := os.WriteFile(sentinel, []byte("sentinel"), 0o644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	seqB, err := cache.EnsureStars(ctx, starsParams(), 32, 18, 2)
	if err != nil {
		t.Fatalf("reuse failed: %v", err)
	}
	if seqB.Dir != seqA.Dir {
		t.Fatalf("expected same sequence dir, got %q vs %q", seqB.Dir, seqA.Dir)
	}
	data, err := os.ReadFile(sentinel)
	if err != nil {
		t.Fatalf("read sentinel: %v", err)
	}
	if string(data) != "sentinel" {
		t.Fatal("second ensure regenerated a completed sequence")
	}
}

func TestEnsureRebuildsPartialSequence(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	cache := effects.NewCache(root, logging.NewNop())

	seq, err := cache.EnsureStars(ctx, starsParams(), 32, 18, 2)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	// Simulate a crashed build: frames exist but the marker does not.
	marker := filepath.Join(filepath.Dir(seq.Dir), "complete")
	if err := os.Remove(marker); err != nil {
		t.Fatalf("remove marker: %v", err)
	}
	if err := os.Remove(filepath.Join(seq.Dir, "f_0001.png")); err != nil {
		t.Fatalf("remove frame: %v", err)
	}

	rebuilt, err := cache.EnsureStars(ctx, starsParams(), 32, 18, 2)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(rebuilt.Dir, "f_0001.png")); err != nil {
		t.Fatalf("expected rebuilt frame: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected completion marker after rebuild: %v", err)
	}
}

func TestEnsureAllSkipsDisabledEffects(t *testing.T) {
	cfg := config.Default()
	cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS = 32, 18, 2
	cfg.Effects.Rain.Enabled = true
	cfg.Effects.Rain.Count = 200

	cache := effects.NewCache(t.TempDir(), logging.NewNop())
	sequences, err := cache.EnsureAll(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if len(sequences) != 1 {
		t.Fatalf("expected one sequence, got %d", len(sequences))
	}
	if sequences[0].Kind != effects.KindRain {
		t.Fatalf("unexpected kind: %s", sequences[0].Kind)
	}
	if sequences[0].FrameCount != 8 {
		t.Fatalf("expected 8 frames for 4s loop at 2fps, got %d", sequences[0].FrameCount)
	}
}

func TestClearRemovesSequences(t *testing.T) {
	root := t.TempDir()
	cache := effects.NewCache(root, logging.NewNop())

	if _, err := cache.EnsureStars(context.Background(), starsParams(), 32, 18, 2); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			t.Fatalf("expected no sequence dirs after Clear, found %s", entry.Name())
		}
	}
}
