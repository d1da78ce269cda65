package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.MusicDir != filepath.Join(tempHome, "music") {
		t.Fatalf("unexpected music dir: %q", cfg.Paths.MusicDir)
	}
	if cfg.Paths.BackgroundsDir != filepath.Join(tempHome, "backgrounds") {
		t.Fatalf("unexpected backgrounds dir: %q", cfg.Paths.BackgroundsDir)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, ".cache", "clipforge") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Render.Width != 1920 || cfg.Render.Height != 1080 || cfg.Render.FPS != 30 {
		t.Fatalf("unexpected render defaults: %dx%d@%d", cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS)
	}
	if cfg.Render.Hardware != "auto" {
		t.Fatalf("unexpected hardware default: %q", cfg.Render.Hardware)
	}
	if cfg.Visualizer.Height != cfg.Render.Height/2 {
		t.Fatalf("expected visualizer height to default to half output height, got %d", cfg.Visualizer.Height)
	}
	if cfg.Batch.Policy != "single" {
		t.Fatalf("unexpected batch policy: %q", cfg.Batch.Policy)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.CacheDir, cfg.Paths.LogDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if _, err := os.Stat(cfg.Paths.MusicDir); !os.IsNotExist(err) {
		t.Fatalf("music dir should not be created by EnsureDirectories")
	}
}

func TestLoadExplicitFileOverridesAndNormalizes(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[paths]
music_dir = "~/tracks"

[render]
hardware = "NVIDIA"
quality = "Quality"
workers = 3

[visualizer]
color = "9be2ff"
opacity = 250

[batch]
policy = "album"
group_size = 4
target_seconds = 600
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.MusicDir != filepath.Join(tempHome, "tracks") {
		t.Fatalf("unexpected music dir: %q", cfg.Paths.MusicDir)
	}
	if cfg.Render.Hardware != "nvidia" {
		t.Fatalf("expected hardware lowercased, got %q", cfg.Render.Hardware)
	}
	if cfg.Render.Quality != "quality" {
		t.Fatalf("expected quality lowercased, got %q", cfg.Render.Quality)
	}
	if cfg.Render.Workers != 3 {
		t.Fatalf("unexpected workers: %d", cfg.Render.Workers)
	}
	if cfg.Visualizer.Color != "#9BE2FF" {
		t.Fatalf("expected color canonicalized, got %q", cfg.Visualizer.Color)
	}
	if cfg.Visualizer.Opacity != 100 {
		t.Fatalf("expected opacity clamped to 100, got %d", cfg.Visualizer.Opacity)
	}
	if cfg.Batch.Policy != "album" || cfg.Batch.GroupSize != 4 || cfg.Batch.TargetSeconds != 600 {
		t.Fatalf("unexpected batch settings: %+v", cfg.Batch)
	}
}

func TestLoadRejectsInvalidEnums(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"hardware", "[render]\nhardware = \"fpga\"\n", "render.hardware"},
		{"quality", "[render]\nquality = \"extreme\"\n", "render.quality"},
		{"mode", "[visualizer]\nmode = \"spiral\"\n", "visualizer.mode"},
		{"scale", "[visualizer]\nscale = \"exp\"\n", "visualizer.scale"},
		{"motion", "[motion]\nenabled = true\nkind = \"wobble\"\n", "motion.kind"},
		{"policy", "[batch]\npolicy = \"playlist\"\n", "batch.policy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[render]") {
		t.Fatal("sample config missing render section")
	}
}
