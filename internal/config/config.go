package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	MusicDir       string `toml:"music_dir"`
	BackgroundsDir string `toml:"backgrounds_dir"`
	OutputDir      string `toml:"output_dir"`
	CacheDir       string `toml:"cache_dir"`
	LogDir         string `toml:"log_dir"`
	StateDir       string `toml:"state_dir"`
}

// Render contains output format, encoder and worker-pool settings.
type Render struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	FPS      int    `toml:"fps"`
	Hardware string `toml:"hardware"` // auto, nvidia, amd, intel, none
	Quality  string `toml:"quality"`  // speed, balanced, quality
	Workers  int    `toml:"workers"`
	Threads  int    `toml:"threads"`
	Verbose  bool   `toml:"verbose"`
}

// Visualizer contains the audio-reactive overlay settings.
type Visualizer struct {
	Enabled    bool   `toml:"enabled"`
	Mode       string `toml:"mode"`  // bar, line
	Scale      string `toml:"scale"` // log, sqrt, lin
	Bars       int    `toml:"bars"`
	Height     int    `toml:"height"`
	Mirror     bool   `toml:"mirror"`
	Fullscreen bool   `toml:"fullscreen"`
	Color      string `toml:"color"`
	Opacity    int    `toml:"opacity"`  // 0..100
	YOffset    int    `toml:"y_offset"` // -100..100, baseline shift from center
}

// Motion contains camera-motion settings applied to the background.
type Motion struct {
	Enabled   bool    `toml:"enabled"`
	Kind      string  `toml:"kind"` // pan-lr, pan-rl, pan-up, pan-down, zoom-in, zoom-out, rotate, shake
	Amount    float64 `toml:"amount"`
	Speed     float64 `toml:"speed"`
	RotateDeg float64 `toml:"rotate_deg"`
	RotateHz  float64 `toml:"rotate_hz"`
	ShakePx   float64 `toml:"shake_px"`
	ShakeHz   float64 `toml:"shake_hz"`
}

// Stars configures the particle-field effect overlay.
type Stars struct {
	Enabled  bool    `toml:"enabled"`
	Count    int     `toml:"count"`
	Size     int     `toml:"size"`
	Pulse    int     `toml:"pulse"`   // 0..100
	Color    string  `toml:"color"`
	Opacity  int     `toml:"opacity"` // 0..100
	IntroSec float64 `toml:"intro_sec"`
}

// Rain configures the falling-streak effect overlay.
type Rain struct {
	Enabled   bool    `toml:"enabled"`
	Count     int     `toml:"count"`
	Length    int     `toml:"length"`
	Thickness int     `toml:"thickness"`
	AngleDeg  float64 `toml:"angle_deg"`
	Speed     float64 `toml:"speed"`
	Color     string  `toml:"color"`
	Opacity   int     `toml:"opacity"` // 0..100
}

// Smoke configures the drifting-haze effect overlay.
type Smoke struct {
	Enabled bool    `toml:"enabled"`
	Density int     `toml:"density"`
	Speed   float64 `toml:"speed"`
	Color   string  `toml:"color"`
	Opacity int     `toml:"opacity"` // 0..100
}

// Effects groups the procedural overlay settings.
type Effects struct {
	Stars Stars `toml:"stars"`
	Rain  Rain  `toml:"rain"`
	Smoke Smoke `toml:"smoke"`
}

// Batch contains the batching policy.
type Batch struct {
	Policy         string `toml:"policy"` // single, album
	GroupSize      int    `toml:"group_size"`
	TargetSeconds  int    `toml:"target_seconds"`
	UntilExhausted bool   `toml:"until_exhausted"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for clipforge.
//
// Sections by subsystem:
//   - Paths: input, output, cache and state directories
//   - Render: output format, encoder preference and worker pool
//   - Visualizer: audio-reactive overlay
//   - Motion: background camera motion
//   - Effects: procedural overlay sequences (stars, rain, smoke)
//   - Batch: batching policy and album settings
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Render     Render     `toml:"render"`
	Visualizer Visualizer `toml:"visualizer"`
	Motion     Motion     `toml:"motion"`
	Effects    Effects    `toml:"effects"`
	Batch      Batch      `toml:"batch"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("clipforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories batch runs need. The music and
// backgrounds directories are inputs and are not created here.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.CacheDir, c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the compositing engine executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
