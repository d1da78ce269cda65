// Package media wraps the external compositing engine's executables: ffprobe
// for input inspection and ffmpeg for render processes whose output is
// streamed as structured progress.
package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// CommandRunner executes a probe command and returns its stdout. Tests
// substitute canned output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Prober inspects media files via ffprobe.
type Prober struct {
	binary string
	run    CommandRunner
}

// NewProber returns a prober for the given ffprobe binary. A nil runner
// executes the real binary.
func NewProber(binary string, run CommandRunner) *Prober {
	if run == nil {
		run = defaultRunner
	}
	return &Prober{binary: binary, run: run}
}

// ffprobe JSON wire types, limited to what the pipeline needs.
type probeOutput struct {
	Format probeFormat `json:"format"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Duration returns the duration of the file in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: %w", path, err)
	}

	var raw probeOutput
	if err := json.Unmarshal(out, &raw); err != nil {
		return 0, fmt.Errorf("parse ffprobe JSON for %q: %w", path, err)
	}
	if raw.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe %q: no duration in format section", path)
	}
	seconds, err := strconv.ParseFloat(raw.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %q: malformed duration %q: %w", path, raw.Format.Duration, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("ffprobe %q: non-positive duration %v", path, seconds)
	}
	return seconds, nil
}
