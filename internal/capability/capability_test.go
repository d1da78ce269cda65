package capability_test

import (
	"context"
	"errors"
	"testing"

	"clipforge/internal/capability"
	"clipforge/internal/logging"
)

const sampleListing = `Filters:
  T.. = Timeline support
  .S. = Slice threading
  ..C = Command support
 ... hwupload_cuda     V->V       Upload a system memory frame to a CUDA device.
 ... overlay_cuda      VV->V      Overlay one video on top of another using CUDA
 ... scale_npp         V->V       NVIDIA Performance Primitives video scaling
 T.C scale             V->V       Scale the input video size and/or convert the image format.
`

func TestProbeDetectsHardwarePrimitives(t *testing.T) {
	runner := func(ctx context.Context) (string, error) {
		return sampleListing, nil
	}
	prober := capability.NewProber("ffmpeg", runner, logging.NewNop())

	snap := prober.Probe(context.Background())
	if !snap.HWOverlay {
		t.Fatal("expected hardware overlay to be available")
	}
	if snap.HWScaleFilter != "scale_npp" {
		t.Fatalf("expected scale_npp, got %q", snap.HWScaleFilter)
	}
	if !snap.Has("scale") {
		t.Fatal("expected plain scale filter to be listed")
	}
}

func TestProbePrefersScaleCUDA(t *testing.T) {
	runner := func(ctx context.Context) (string, error) {
		return " ... hwupload_cuda V->V x\n ... overlay_cuda VV->V x\n ... scale_npp V->V x\n ... scale_cuda V->V x\n", nil
	}
	snap := capability.NewProber("ffmpeg", runner, nil).Probe(context.Background())
	if snap.HWScaleFilter != "scale_cuda" {
		t.Fatalf("expected scale_cuda preferred over scale_npp, got %q", snap.HWScaleFilter)
	}
}

func TestProbeOverlayNeedsBothPrimitives(t *testing.T) {
	runner := func(ctx context.Context) (string, error) {
		return " ... overlay_cuda VV->V x\n", nil
	}
	snap := capability.NewProber("ffmpeg", runner, nil).Probe(context.Background())
	if snap.HWOverlay {
		t.Fatal("overlay without hwupload_cuda must not enable the hardware path")
	}
}

func TestProbeFailureYieldsEmptySnapshot(t *testing.T) {
	calls := 0
	runner := func(ctx context.Context) (string, error) {
		calls++
		return "", errors.New("exec: not found")
	}
	prober := capability.NewProber("ffmpeg", runner, logging.NewNop())

	snap := prober.Probe(context.Background())
	if snap.HWOverlay || snap.HWScaleFilter != "" || len(snap.Filters) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}

	prober.Probe(context.Background())
	if calls != 1 {
		t.Fatalf("probe must run once, ran %d times", calls)
	}
}
