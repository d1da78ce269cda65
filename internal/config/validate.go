package config

import (
	"errors"
	"fmt"
)

var validHardware = map[string]struct{}{
	"auto":   {},
	"nvidia": {},
	"amd":    {},
	"intel":  {},
	"none":   {},
}

var validQuality = map[string]struct{}{
	"speed":    {},
	"balanced": {},
	"quality":  {},
}

var validMotionKinds = map[string]struct{}{
	"pan-lr":   {},
	"pan-rl":   {},
	"pan-up":   {},
	"pan-down": {},
	"zoom-in":  {},
	"zoom-out": {},
	"rotate":   {},
	"shake":    {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateVisualizer(); err != nil {
		return err
	}
	if err := c.validateMotion(); err != nil {
		return err
	}
	if err := c.validateBatch(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRender() error {
	if _, ok := validHardware[c.Render.Hardware]; !ok {
		return fmt.Errorf("render.hardware must be one of auto, nvidia, amd, intel, none; got %q", c.Render.Hardware)
	}
	if _, ok := validQuality[c.Render.Quality]; !ok {
		return fmt.Errorf("render.quality must be one of speed, balanced, quality; got %q", c.Render.Quality)
	}
	if c.Render.Workers > 10 {
		return errors.New("render.workers must be between 1 and 10")
	}
	if c.Render.Width%2 != 0 || c.Render.Height%2 != 0 {
		return errors.New("render.width and render.height must be even")
	}
	return nil
}

func (c *Config) validateVisualizer() error {
	switch c.Visualizer.Mode {
	case "bar", "line":
	default:
		return fmt.Errorf("visualizer.mode must be bar or line; got %q", c.Visualizer.Mode)
	}
	switch c.Visualizer.Scale {
	case "log", "sqrt", "lin":
	default:
		return fmt.Errorf("visualizer.scale must be log, sqrt or lin; got %q", c.Visualizer.Scale)
	}
	if c.Visualizer.Bars < 8 || c.Visualizer.Bars > 256 {
		return errors.New("visualizer.bars must be between 8 and 256")
	}
	return nil
}

func (c *Config) validateMotion() error {
	if !c.Motion.Enabled {
		return nil
	}
	if _, ok := validMotionKinds[c.Motion.Kind]; !ok {
		return fmt.Errorf("motion.kind must be one of pan-lr, pan-rl, pan-up, pan-down, zoom-in, zoom-out, rotate, shake; got %q", c.Motion.Kind)
	}
	return nil
}

func (c *Config) validateBatch() error {
	switch c.Batch.Policy {
	case "single", "album":
	default:
		return fmt.Errorf("batch.policy must be single or album; got %q", c.Batch.Policy)
	}
	return nil
}
