package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRender()
	c.normalizeVisualizer()
	c.normalizeMotion()
	c.normalizeEffects()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MusicDir, err = expandPath(c.Paths.MusicDir); err != nil {
		return fmt.Errorf("paths.music_dir: %w", err)
	}
	if c.Paths.BackgroundsDir, err = expandPath(c.Paths.BackgroundsDir); err != nil {
		return fmt.Errorf("paths.backgrounds_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.Width <= 0 {
		c.Render.Width = defaultWidth
	}
	if c.Render.Height <= 0 {
		c.Render.Height = defaultHeight
	}
	if c.Render.FPS <= 0 {
		c.Render.FPS = defaultFPS
	}
	c.Render.Hardware = strings.ToLower(strings.TrimSpace(c.Render.Hardware))
	if c.Render.Hardware == "" {
		c.Render.Hardware = defaultHardware
	}
	c.Render.Quality = strings.ToLower(strings.TrimSpace(c.Render.Quality))
	if c.Render.Quality == "" {
		c.Render.Quality = defaultQuality
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = defaultWorkers
	}
	if c.Render.Threads < 0 {
		c.Render.Threads = 0
	}
}

func (c *Config) normalizeVisualizer() {
	c.Visualizer.Mode = strings.ToLower(strings.TrimSpace(c.Visualizer.Mode))
	if c.Visualizer.Mode == "" {
		c.Visualizer.Mode = defaultVisualizerMode
	}
	c.Visualizer.Scale = strings.ToLower(strings.TrimSpace(c.Visualizer.Scale))
	if c.Visualizer.Scale == "" {
		c.Visualizer.Scale = defaultVisualizerScale
	}
	if c.Visualizer.Bars <= 0 {
		c.Visualizer.Bars = defaultVisualizerBars
	}
	if c.Visualizer.Height <= 0 {
		c.Visualizer.Height = c.Render.Height / 2
	}
	c.Visualizer.Color = normalizeColor(c.Visualizer.Color, defaultVisualizerColor)
	c.Visualizer.Opacity = clampPercent(c.Visualizer.Opacity, defaultVisualizerOpacity)
	if c.Visualizer.YOffset < -100 {
		c.Visualizer.YOffset = -100
	}
	if c.Visualizer.YOffset > 100 {
		c.Visualizer.YOffset = 100
	}
}

func (c *Config) normalizeMotion() {
	c.Motion.Kind = strings.ToLower(strings.TrimSpace(c.Motion.Kind))
	if c.Motion.Kind == "" {
		c.Motion.Kind = defaultMotionKind
	}
	if c.Motion.Amount < 0 {
		c.Motion.Amount = 0
	}
	if c.Motion.Speed <= 0 {
		c.Motion.Speed = 40
	}
}

func (c *Config) normalizeEffects() {
	c.Effects.Stars.Color = normalizeColor(c.Effects.Stars.Color, "#FFFFFF")
	c.Effects.Stars.Opacity = clampPercent(c.Effects.Stars.Opacity, 85)
	if c.Effects.Stars.Count <= 0 {
		c.Effects.Stars.Count = 700
	}
	if c.Effects.Stars.Size <= 0 {
		c.Effects.Stars.Size = 2
	}
	c.Effects.Stars.Pulse = clampPercent(c.Effects.Stars.Pulse, 40)

	c.Effects.Rain.Color = normalizeColor(c.Effects.Rain.Color, "#9BE2FF")
	c.Effects.Rain.Opacity = clampPercent(c.Effects.Rain.Opacity, 55)
	if c.Effects.Rain.Count <= 0 {
		c.Effects.Rain.Count = 1200
	}
	if c.Effects.Rain.Length <= 0 {
		c.Effects.Rain.Length = 40
	}
	if c.Effects.Rain.Thickness <= 0 {
		c.Effects.Rain.Thickness = 2
	}
	if c.Effects.Rain.Speed <= 0 {
		c.Effects.Rain.Speed = 160
	}

	c.Effects.Smoke.Color = normalizeColor(c.Effects.Smoke.Color, "#A0A0A0")
	c.Effects.Smoke.Opacity = clampPercent(c.Effects.Smoke.Opacity, 40)
	if c.Effects.Smoke.Density <= 0 {
		c.Effects.Smoke.Density = 90
	}
	if c.Effects.Smoke.Speed <= 0 {
		c.Effects.Smoke.Speed = 18
	}
}

func (c *Config) normalizeBatch() {
	c.Batch.Policy = strings.ToLower(strings.TrimSpace(c.Batch.Policy))
	if c.Batch.Policy == "" {
		c.Batch.Policy = "single"
	}
	if c.Batch.GroupSize <= 0 {
		c.Batch.GroupSize = 1
	}
	if c.Batch.TargetSeconds < 0 {
		c.Batch.TargetSeconds = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeColor(value, fallback string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, "#") {
		value = "#" + value
	}
	return value
}

func clampPercent(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}
