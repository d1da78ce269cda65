package albumaudio_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"clipforge/internal/albumaudio"
	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/media"
)

// fakeEngine answers ffprobe duration queries from a table and records the
// ffmpeg concat invocation.
type fakeEngine struct {
	durations map[string]float64
	lastArgs  []string
}

func (f *fakeEngine) probe(ctx context.Context, name string, args ...string) ([]byte, error) {
	path := args[len(args)-1]
	duration, ok := f.durations[path]
	if !ok {
		return nil, errors.New("unreadable")
	}
	return []byte(fmt.Sprintf(`{"format":{"duration":"%f"}}`, duration)), nil
}

func (f *fakeEngine) render(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.lastArgs = args
	return nil, nil
}

func (f *fakeEngine) builder(t *testing.T) *albumaudio.Builder {
	t.Helper()
	prober := media.NewProber("ffprobe", f.probe)
	return albumaudio.NewBuilder(prober, "ffmpeg", t.TempDir(), f.render, logging.NewNop())
}

func tracks(paths ...string) []library.Track {
	out := make([]library.Track, len(paths))
	for i, p := range paths {
		out[i] = library.Track{Path: p, Name: p}
	}
	return out
}

func TestBuildTruncatesExactlyAtTarget(t *testing.T) {
	engine := &fakeEngine{durations: map[string]float64{
		"a.mp3": 60,
		"b.mp3": 90,
		"c.mp3": 20,
	}}
	builder := engine.builder(t)

	result, err := builder.Build(context.Background(), tracks("a.mp3", "b.mp3", "c.mp3"), 120)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.DurationSec != 120 {
		t.Fatalf("expected exactly 120s, got %v", result.DurationSec)
	}
	if result.TrackCount != 2 || !result.Truncated {
		t.Fatalf("expected a and truncated b, got %+v", result)
	}

	joined := strings.Join(engine.lastArgs, " ")
	if !strings.Contains(joined, "-i a.mp3 -i b.mp3") {
		t.Fatalf("unexpected inputs: %s", joined)
	}
	if strings.Contains(joined, "c.mp3") {
		t.Fatalf("track beyond the target must be unused: %s", joined)
	}
	if !strings.Contains(joined, "concat=n=2:v=0:a=1") {
		t.Fatalf("missing concat filter: %s", joined)
	}
	if !strings.Contains(joined, "-t 120") {
		t.Fatalf("missing truncation: %s", joined)
	}
}

func TestBuildZeroTargetConcatenatesAll(t *testing.T) {
	engine := &fakeEngine{durations: map[string]float64{
		"a.mp3": 60,
		"b.mp3": 90,
	}}
	result, err := engine.builder(t).Build(context.Background(), tracks("a.mp3", "b.mp3"), 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.DurationSec != 150 || result.TrackCount != 2 || result.Truncated {
		t.Fatalf("unexpected result: %+v", result)
	}
	if strings.Contains(strings.Join(engine.lastArgs, " "), "-t ") {
		t.Fatal("zero target must not truncate")
	}
}

func TestBuildShorterThanTargetWhenExhausted(t *testing.T) {
	engine := &fakeEngine{durations: map[string]float64{"a.mp3": 45}}
	result, err := engine.builder(t).Build(context.Background(), tracks("a.mp3"), 300)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.DurationSec != 45 || result.Truncated {
		t.Fatalf("exhausted library should yield a shorter asset: %+v", result)
	}
}

func TestBuildSkipsUnreadableTracks(t *testing.T) {
	engine := &fakeEngine{durations: map[string]float64{"good.mp3": 30}}
	result, err := engine.builder(t).Build(context.Background(), tracks("broken.mp3", "good.mp3"), 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.TrackCount != 1 {
		t.Fatalf("expected one surviving track, got %+v", result)
	}
}

func TestBuildFailsWhenNoTracksRemain(t *testing.T) {
	engine := &fakeEngine{durations: map[string]float64{}}
	if _, err := engine.builder(t).Build(context.Background(), tracks("x.mp3", "y.mp3"), 0); err == nil {
		t.Fatal("expected failure when every track is unreadable")
	}
}
