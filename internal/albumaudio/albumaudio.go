// Package albumaudio builds the combined audio asset for album render jobs:
// the batch's tracks concatenated in order and truncated to land exactly on
// the configured target duration.
package albumaudio

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/services"
)

// Result describes the built album asset.
type Result struct {
	Path        string
	DurationSec float64
	TrackCount  int  // tracks included, the last possibly truncated
	Truncated   bool // true when the final track was cut at the target
}

func defaultRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Builder assembles album audio in a cache directory.
type Builder struct {
	prober *media.Prober
	ffmpeg string
	run    media.CommandRunner
	dir    string
	logger *slog.Logger
}

// NewBuilder returns a builder writing assets under dir. A nil run executes
// the real engine binary.
func NewBuilder(prober *media.Prober, ffmpeg, dir string, run media.CommandRunner, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		prober: prober,
		ffmpeg: ffmpeg,
		run:    run,
		dir:    dir,
		logger: logging.NewComponentLogger(logger, "albumaudio"),
	}
}

// Build concatenates tracks into one asset. A zero target keeps every track
// in full; a positive target accumulates tracks in order and truncates the
// one crossing the boundary so the output lands exactly on target, or
// shorter if the tracks run out first. Tracks that fail to probe are skipped
// with a warning; the build fails only when none remain.
func (b *Builder) Build(ctx context.Context, tracks []library.Track, targetSec int) (Result, error) {
	type probed struct {
		track    library.Track
		duration float64
	}

	var usable []probed
	for _, track := range tracks {
		duration, err := b.prober.Duration(ctx, track.Path)
		if err != nil {
			b.logger.Warn("skipping unreadable track",
				logging.String("track", track.Path),
				logging.Error(err))
			continue
		}
		usable = append(usable, probed{track: track, duration: duration})
	}
	if len(usable) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "albumaudio", "build",
			"no readable tracks in album group", nil)
	}

	target := float64(targetSec)
	var selected []probed
	var total float64
	truncated := false
	for _, p := range usable {
		if target > 0 && total >= target {
			break
		}
		selected = append(selected, p)
		total += p.duration
		if target > 0 && total > target {
			truncated = true
			total = target
			break
		}
	}

	outPath := filepath.Join(b.dir, fmt.Sprintf("album_audio_%s.wav", uuid.NewString()))
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, p := range selected {
		args = append(args, "-i", p.track.Path)
	}
	filter := ""
	for i := range selected {
		filter += fmt.Sprintf("[%d:a]", i)
	}
	filter += fmt.Sprintf("concat=n=%d:v=0:a=1[aout]", len(selected))
	args = append(args, "-filter_complex", filter, "-map", "[aout]")
	if truncated {
		args = append(args, "-t", strconv.Itoa(targetSec))
	}
	args = append(args, "-c:a", "pcm_s16le", outPath)

	run := b.run
	if run == nil {
		run = defaultRun
	}
	if _, err := run(ctx, b.ffmpeg, args...); err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "albumaudio", "build",
			"concatenate album audio", err)
	}

	b.logger.Info("album audio built",
		logging.Int("tracks", len(selected)),
		logging.Float64("duration_sec", total),
		logging.Bool("truncated", truncated),
		logging.String("path", outPath))
	return Result{
		Path:        outPath,
		DurationSec: total,
		TrackCount:  len(selected),
		Truncated:   truncated,
	}, nil
}
