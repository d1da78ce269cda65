package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clipforge/internal/library"
	"clipforge/internal/logging"
	"clipforge/internal/planner"
	"clipforge/internal/state"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the next batch without rendering anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			tracks, err := library.ScanAudio(cfg.Paths.MusicDir)
			if err != nil {
				return fmt.Errorf("scan music directory: %w", err)
			}

			store, err := state.Open(filepath.Join(cfg.Paths.StateDir, "clipforge.db"), logging.NewNop())
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			persisted, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load batch state: %w", err)
			}
			cursor := persisted.LastProcessedIndex
			if cursor > len(tracks) {
				cursor = len(tracks)
			}

			batches, newCursor := planner.NextBatches(tracks, planner.Policy{
				Kind:           cfg.Batch.Policy,
				GroupSize:      cfg.Batch.GroupSize,
				TargetSeconds:  cfg.Batch.TargetSeconds,
				UntilExhausted: cfg.Batch.UntilExhausted,
			}, cursor)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Library: %d tracks, resume position %d\n", len(tracks), cursor)
			if len(batches) == 0 {
				fmt.Fprintln(out, "Nothing left to render; reset the state to start over")
				return nil
			}

			rows := make([][]string, 0, len(batches))
			for _, batch := range batches {
				kind := "single"
				target := "-"
				if batch.Album {
					kind = "album"
					if batch.TargetSeconds > 0 {
						target = fmt.Sprintf("%ds", batch.TargetSeconds)
					} else {
						target = "full"
					}
				}
				rows = append(rows, []string{
					strconv.Itoa(batch.Index),
					kind,
					trackSummary(batch.Tracks),
					target,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"#", "Type", "Tracks", "Target"}, rows, 1, 4))
			fmt.Fprintf(out, "Resume position after this batch: %d of %d\n", newCursor, len(tracks))
			return nil
		},
	}
}

func trackSummary(tracks []library.Track) string {
	names := make([]string, 0, 3)
	for i, track := range tracks {
		if i == 3 {
			names = append(names, fmt.Sprintf("+%d more", len(tracks)-i))
			break
		}
		names = append(names, track.DisplayName())
	}
	return strings.Join(names, ", ")
}
