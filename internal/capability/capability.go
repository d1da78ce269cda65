// Package capability probes the compositing engine for the filters it can
// run. The probe executes once per process; every later call returns the
// cached snapshot.
package capability

import (
	"context"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"clipforge/internal/logging"
)

// Runner executes the engine's filter-listing command and returns its
// combined output. Tests substitute a canned runner.
type Runner func(ctx context.Context) (string, error)

// Snapshot describes the engine features relevant to path selection.
type Snapshot struct {
	Filters map[string]struct{}

	// HWOverlay is true when both the hardware upload and hardware overlay
	// primitives are present.
	HWOverlay bool

	// HWScaleFilter names the preferred hardware scaler, or "" when frames
	// must be downloaded to host memory before final scaling.
	HWScaleFilter string
}

// Has reports whether the engine advertises the named filter.
func (s Snapshot) Has(name string) bool {
	_, ok := s.Filters[name]
	return ok
}

// FilterNames returns the probed filter names in sorted order.
func (s Snapshot) FilterNames() []string {
	names := make([]string, 0, len(s.Filters))
	for name := range s.Filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prober runs the engine's filter listing exactly once and caches the result.
type Prober struct {
	runner Runner
	logger *slog.Logger

	once     sync.Once
	snapshot Snapshot
}

// NewProber returns a prober using the given runner. A nil runner executes
// "<binary> -hide_banner -filters".
func NewProber(binary string, runner Runner, logger *slog.Logger) *Prober {
	if runner == nil {
		runner = func(ctx context.Context) (string, error) {
			out, err := exec.CommandContext(ctx, binary, "-hide_banner", "-filters").CombinedOutput()
			return string(out), err
		}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Prober{runner: runner, logger: logging.NewComponentLogger(logger, "capability")}
}

// Probe returns the capability snapshot, probing the engine on first call.
// A failed probe yields an empty snapshot so rendering falls back to the
// software path instead of aborting.
func (p *Prober) Probe(ctx context.Context) Snapshot {
	p.once.Do(func() {
		output, err := p.runner(ctx)
		if err != nil {
			p.logger.Warn("filter probe failed, assuming software-only engine", logging.Error(err))
			p.snapshot = Snapshot{Filters: map[string]struct{}{}}
			return
		}
		p.snapshot = parseFilters(output)
		p.logger.Info("engine capabilities probed",
			logging.Int("filters", len(p.snapshot.Filters)),
			logging.Bool("hw_overlay", p.snapshot.HWOverlay),
			logging.String("hw_scale", p.snapshot.HWScaleFilter))
	})
	return p.snapshot
}

// parseFilters reads the engine's filter listing. Each filter line carries a
// flags column followed by the filter name, so the second token of every
// multi-token line is collected. Header and legend lines contribute junk
// tokens, which is harmless because lookups are by exact name.
func parseFilters(output string) Snapshot {
	filters := make(map[string]struct{})
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		filters[fields[1]] = struct{}{}
	}
	return snapshotFromFilters(filters)
}

func snapshotFromFilters(filters map[string]struct{}) Snapshot {
	snap := Snapshot{Filters: filters}
	_, upload := filters["hwupload_cuda"]
	_, overlay := filters["overlay_cuda"]
	snap.HWOverlay = upload && overlay
	for _, candidate := range []string{"scale_cuda", "scale_npp"} {
		if _, ok := filters[candidate]; ok {
			snap.HWScaleFilter = candidate
			break
		}
	}
	return snap
}
