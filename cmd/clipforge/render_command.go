package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/albumaudio"
	"clipforge/internal/capability"
	"clipforge/internal/effects"
	"clipforge/internal/logging"
	"clipforge/internal/media"
	"clipforge/internal/scheduler"
	"clipforge/internal/state"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var workersFlag int
	var policyFlag string

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Run one batch of renders and advance the resume position",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if workersFlag > 0 {
				cfg.Render.Workers = workersFlag
			}
			if policyFlag != "" {
				cfg.Batch.Policy = policyFlag
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runID := time.Now().Format("20060102_150405")
			logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("clipforge-%s.log", runID))
			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{logPath},
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := state.Open(filepath.Join(cfg.Paths.StateDir, "clipforge.db"), logger)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			prober := media.NewProber(cfg.FFprobeBinary(), nil)
			sched := scheduler.New(cfg, scheduler.Deps{
				Capability: capability.NewProber(cfg.FFmpegBinary(), nil, logger),
				Effects:    effects.NewCache(cfg.Paths.CacheDir, logger),
				Albums:     albumaudio.NewBuilder(prober, cfg.FFmpegBinary(), cfg.Paths.CacheDir, nil, logger),
				Media:      prober,
				Store:      store,
			}, logger)

			out := cmd.OutOrStdout()
			printer := newEventPrinter(out)
			fmt.Fprintf(out, "Rendering with %s policy, log at %s\n", cfg.Batch.Policy, logPath)

			summary, err := sched.Run(signalCtx, printer.print)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Jobs", strconv.Itoa(summary.JobsTotal)},
				{"Completed", strconv.Itoa(summary.JobsDone)},
				{"Failed", strconv.Itoa(summary.JobsFailed)},
				{"Cancelled", strconv.Itoa(summary.JobsCancelled)},
				{"Resume position", fmt.Sprintf("%d of %d tracks", summary.Cursor, summary.TrackTotal)},
			}
			fmt.Fprintln(out, renderTable([]string{"Result", "Value"}, rows, 2))

			if summary.Cancelled {
				fmt.Fprintln(out, "Batch cancelled")
			}
			if summary.JobsFailed > 0 {
				return fmt.Errorf("%d of %d jobs failed; see %s", summary.JobsFailed, summary.JobsTotal, logPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Override the configured worker count")
	cmd.Flags().StringVar(&policyFlag, "policy", "", "Override the batching policy (single or album)")
	return cmd
}
