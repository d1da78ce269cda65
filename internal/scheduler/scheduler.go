// Package scheduler drives batch rendering: it plans jobs from the library
// and resume state, runs them on a fixed worker pool against the external
// compositing engine, streams status events, and persists the advanced
// cursor exactly once per run.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"clipforge/internal/albumaudio"
	"clipforge/internal/capability"
	"clipforge/internal/config"
	"clipforge/internal/effects"
	"clipforge/internal/filtergraph"
	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/planner"
	"clipforge/internal/services"
	"clipforge/internal/state"
)

// StartProcessFunc launches an engine process. Tests substitute a stub.
type StartProcessFunc func(binary string, args []string) (*media.Process, error)

// Deps bundles the collaborators a scheduler needs.
type Deps struct {
	Capability *capability.Prober
	Effects    *effects.Cache
	Albums     *albumaudio.Builder
	Media      *media.Prober
	Store      *state.Store
	Start      StartProcessFunc // nil runs the real engine
}

// Summary reports the outcome of one batch run.
type Summary struct {
	JobsTotal     int
	JobsDone      int
	JobsFailed    int
	JobsCancelled int
	Cancelled     bool
	Cursor        int
	TrackTotal    int
}

// Scheduler owns one batch run at a time. Concurrent runs against the same
// state directory are rejected via a file lock.
type Scheduler struct {
	cfg    *config.Config
	logger *slog.Logger
	deps   Deps

	cancelled atomic.Bool
	registry  *processRegistry

	sinkMu sync.Mutex
	sink   EventSink
}

// New returns a scheduler for the given configuration.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if deps.Start == nil {
		deps.Start = media.StartProcess
	}
	return &Scheduler{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
		deps:     deps,
		registry: newProcessRegistry(),
	}
}

// Cancel sets the shared cancellation token and forcibly terminates every
// running engine process. No new jobs start afterwards; end-of-run state
// persistence still happens before Run returns.
func (s *Scheduler) Cancel() {
	if s.cancelled.CompareAndSwap(false, true) {
		s.logger.Info("cancellation requested, terminating running jobs")
	}
	s.registry.killAll()
}

func (s *Scheduler) emit(ev Event) {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if s.sink != nil {
		s.sink(ev)
	}
}

// job is one unit of work handed to the pool.
type job struct {
	id         string
	index      int
	batch      planner.Batch
	background string
	output     string
	sequences  []effects.Sequence
}

// Run executes one full batch pass and blocks until every queued job has
// drained or cancellation completes. The sink receives the ordered status
// stream. Configuration problems surface as an error before any job starts.
func (s *Scheduler) Run(ctx context.Context, sink EventSink) (Summary, error) {
	s.sink = sink
	startedAt := time.Now()

	lock := flock.New(filepath.Join(s.cfg.Paths.StateDir, "batch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scheduler", "run", "acquire batch lock", err)
	}
	if !locked {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scheduler", "run",
			"another batch is already running against this state directory", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tracks, err := library.ScanAudio(s.cfg.Paths.MusicDir)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scheduler", "run", "scan music directory", err)
	}
	if len(tracks) == 0 {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scheduler", "run",
			fmt.Sprintf("no audio tracks in %s", s.cfg.Paths.MusicDir), nil)
	}
	backgrounds, err := library.ScanBackgrounds(s.cfg.Paths.BackgroundsDir)
	if err != nil {
		s.logger.Warn("backgrounds unavailable, using solid color", logging.Error(err))
		backgrounds = nil
	}

	persisted, err := s.deps.Store.Load(ctx)
	if err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "scheduler", "run", "load batch state", err)
	}
	cursor := persisted.LastProcessedIndex
	if cursor > len(tracks) {
		s.logger.Warn("library shrank below persisted cursor, clamping",
			logging.Int("cursor", cursor), logging.Int("tracks", len(tracks)))
		cursor = len(tracks)
	}
	s.logger.Info("resume position loaded",
		logging.Int("cursor", cursor), logging.Int("tracks", len(tracks)))

	// Probe and effect generation happen before any job is queued so workers
	// share one snapshot and one completed cache.
	s.deps.Capability.Probe(ctx)
	sequences, err := s.deps.Effects.EnsureAll(ctx, s.cfg)
	if err != nil {
		return Summary{}, err
	}

	policy := planner.Policy{
		Kind:           s.cfg.Batch.Policy,
		GroupSize:      s.cfg.Batch.GroupSize,
		TargetSeconds:  s.cfg.Batch.TargetSeconds,
		UntilExhausted: s.cfg.Batch.UntilExhausted,
	}
	batches, newCursor := planner.NextBatches(tracks, policy, cursor)
	s.logger.Info("batch plan ready",
		logging.String("policy", policy.Kind),
		logging.Int("batches", len(batches)))

	summary := Summary{JobsTotal: len(batches), TrackTotal: len(tracks)}

	bgPool := library.NewBackgroundPool(backgrounds)
	stamp := startedAt.Format("20060102_150405")
	jobs := make(chan job, maxInt(1, s.cfg.Render.Workers*2))

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		<-watchCtx.Done()
		if ctx.Err() != nil {
			s.Cancel()
		}
	}()

	var mu sync.Mutex
	var wg sync.WaitGroup
	for w := 1; w <= maxInt(1, s.cfg.Render.Workers); w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for jb := range jobs {
				if s.cancelled.Load() {
					mu.Lock()
					summary.JobsCancelled++
					mu.Unlock()
					continue
				}
				outcome := s.runJob(ctx, workerID, jb)
				mu.Lock()
				switch outcome {
				case jobDone:
					summary.JobsDone++
				case jobFailed:
					summary.JobsFailed++
				case jobCancelled:
					summary.JobsCancelled++
				}
				mu.Unlock()
			}
		}(w)
	}

	for _, batch := range batches {
		kind := "render"
		if batch.Album {
			kind = "album"
		}
		jobs <- job{
			id:         uuid.NewString(),
			index:      batch.Index,
			batch:      batch,
			background: bgPool.Next(),
			output: filepath.Join(s.cfg.Paths.OutputDir, fmt.Sprintf("%s_%03d_%dx%d_%s.mp4",
				kind, batch.Index, s.cfg.Render.Width, s.cfg.Render.Height, stamp)),
			sequences: sequences,
		}
	}
	close(jobs)
	wg.Wait()

	summary.Cancelled = s.cancelled.Load()
	summary.Cursor = newCursor

	// The cursor advances for completed and explicitly cancelled passes
	// alike, written exactly once per run.
	if err := s.deps.Store.Save(ctx, state.BatchState{
		LastProcessedIndex: newCursor,
		TotalTrackCount:    len(tracks),
		ProcessedTracks:    trackPaths(tracks[:newCursor]),
	}); err != nil {
		return summary, services.Wrap(services.ErrTransient, "scheduler", "run", "persist batch state", err)
	}
	if err := s.deps.Store.RecordRun(ctx, state.RunRecord{
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
		Policy:        policy.Kind,
		JobsTotal:     summary.JobsTotal,
		JobsDone:      summary.JobsDone,
		JobsFailed:    summary.JobsFailed,
		JobsCancelled: summary.JobsCancelled,
		Cancelled:     summary.Cancelled,
	}); err != nil {
		s.logger.Warn("run history not recorded", logging.Error(err))
	}

	s.emit(Event{Type: EventAllDone, Message: fmt.Sprintf(
		"%d done, %d failed, %d cancelled", summary.JobsDone, summary.JobsFailed, summary.JobsCancelled)})
	return summary, nil
}

type jobOutcome int

const (
	jobDone jobOutcome = iota
	jobFailed
	jobCancelled
)

func (s *Scheduler) runJob(ctx context.Context, workerID int, jb job) jobOutcome {
	trackName := jb.batch.Tracks[0].Name
	if jb.batch.Album {
		trackName = fmt.Sprintf("album of %d tracks", len(jb.batch.Tracks))
	}
	s.emit(Event{Type: EventLog, JobID: jb.id, Worker: workerID, Track: trackName,
		Message: fmt.Sprintf("starting %s", filepath.Base(jb.output))})

	audioPath := jb.batch.Tracks[0].Path
	durationSec := 0.0
	loopAudio := false
	var albumAsset string

	if jb.batch.Album && len(jb.batch.Tracks) == 1 && jb.batch.TargetSeconds > 0 {
		// A one-track group needs no concat asset; the engine loops the
		// track itself up to the duration cap.
		loopAudio = true
		durationSec = float64(jb.batch.TargetSeconds)
	} else if jb.batch.Album {
		result, err := s.deps.Albums.Build(ctx, jb.batch.Tracks, jb.batch.TargetSeconds)
		if err != nil {
			s.emit(Event{Type: EventError, JobID: jb.id, Worker: workerID, Track: trackName,
				Message: fmt.Sprintf("album audio: %v", err)})
			return jobFailed
		}
		audioPath = result.Path
		albumAsset = result.Path
		durationSec = result.DurationSec
	} else if d, err := s.deps.Media.Duration(ctx, audioPath); err == nil {
		durationSec = d
	} else {
		s.logger.Warn("track duration unknown, progress will be indeterminate",
			logging.String("track", audioPath), logging.Error(err))
	}

	if s.cancelled.Load() {
		return jobCancelled
	}

	req := filtergraph.Request{
		AudioPath:      audioPath,
		BackgroundPath: jb.background,
		Effects:        jb.sequences,
		OutputPath:     jb.output + ".part",
		LoopAudio:      loopAudio,
	}
	if jb.batch.Album && jb.batch.TargetSeconds > 0 {
		req.DurationSec = jb.batch.TargetSeconds
	}
	inv, err := filtergraph.Compile(s.cfg, req, s.deps.Capability.Probe(ctx), s.logger)
	if err != nil {
		s.emit(Event{Type: EventError, JobID: jb.id, Worker: workerID, Track: trackName,
			Message: fmt.Sprintf("compile: %v", err)})
		return jobFailed
	}

	proc, err := s.deps.Start(s.cfg.FFmpegBinary(), inv.Args)
	if err != nil {
		s.emit(Event{Type: EventError, JobID: jb.id, Worker: workerID, Track: trackName,
			Message: fmt.Sprintf("spawn engine: %v", err)})
		return jobFailed
	}
	s.registry.add(jb.id, proc)
	defer s.registry.remove(jb.id)

	// A Cancel between Start and add misses this process in killAll, and a
	// silent engine emits no output line for Stream's poll to catch. Re-check
	// after registration so the kill cannot be skipped.
	if s.cancelled.Load() {
		proc.Kill()
	}

	sampler := logging.NewProgressSampler(5)
	streamErr := proc.Stream(s.cancelled.Load,
		func(p media.Progress) {
			percent := -1.0
			if durationSec > 0 {
				percent = minFloat(100, p.OutTimeSec/durationSec*100)
			}
			if sampler.ShouldLog(percent) {
				s.emit(Event{Type: EventProgress, JobID: jb.id, Worker: workerID,
					Track: trackName, Percent: percent, Message: p.Speed})
			}
		},
		func(line string) {
			s.emit(Event{Type: EventLog, JobID: jb.id, Worker: workerID, Message: line})
		})

	if s.cancelled.Load() {
		_ = os.Remove(jb.output + ".part")
		s.emit(Event{Type: EventCancelled, JobID: jb.id, Worker: workerID, Track: trackName})
		return jobCancelled
	}
	if streamErr != nil {
		_ = os.Remove(jb.output + ".part")
		s.emit(Event{Type: EventError, JobID: jb.id, Worker: workerID, Track: trackName,
			Message: fmt.Sprintf("engine failed: %v", streamErr)})
		return jobFailed
	}
	if err := os.Rename(jb.output+".part", jb.output); err != nil {
		s.emit(Event{Type: EventError, JobID: jb.id, Worker: workerID, Track: trackName,
			Message: fmt.Sprintf("finalize output: %v", err)})
		return jobFailed
	}
	if albumAsset != "" {
		if err := os.Remove(albumAsset); err != nil {
			s.logger.Warn("album asset not removed", logging.String("path", albumAsset), logging.Error(err))
		}
	}
	s.emit(Event{Type: EventDone, JobID: jb.id, Worker: workerID, Track: trackName,
		Output: jb.output, Percent: 100})
	return jobDone
}

func trackPaths(tracks []library.Track) []string {
	paths := make([]string, len(tracks))
	for i, t := range tracks {
		paths[i] = t.Path
	}
	return paths
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
