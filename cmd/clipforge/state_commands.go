package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/logging"
	"clipforge/internal/state"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect or reset batch resume state",
	}

	stateCmd.AddCommand(newStateShowCommand(ctx))
	stateCmd.AddCommand(newStateResetCommand(ctx))

	return stateCmd
}

func openStore(ctx *commandContext) (*state.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := state.Open(filepath.Join(cfg.Paths.StateDir, "clipforge.db"), logging.NewNop())
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return store, nil
}

func newStateShowCommand(ctx *commandContext) *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the resume position and recent run history",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			persisted, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load batch state: %w", err)
			}

			out := cmd.OutOrStdout()
			updated := "never"
			if !persisted.UpdatedAt.IsZero() {
				updated = persisted.UpdatedAt.Local().Format(time.RFC1123)
			}
			rows := [][]string{
				{"State database", store.Path()},
				{"Resume position", strconv.Itoa(persisted.LastProcessedIndex)},
				{"Library size at last run", strconv.Itoa(persisted.TotalTrackCount)},
				{"Processed tracks", strconv.Itoa(len(persisted.ProcessedTracks))},
				{"Updated", updated},
			}
			fmt.Fprintln(out, renderTable([]string{"State", "Value"}, rows))

			history, err := store.RunHistory(cmd.Context(), historyLimit)
			if err != nil {
				return fmt.Errorf("load run history: %w", err)
			}
			if len(history) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			historyRows := make([][]string, 0, len(history))
			for _, rec := range history {
				outcome := "ok"
				if rec.Cancelled {
					outcome = "cancelled"
				} else if rec.JobsFailed > 0 {
					outcome = "failed"
				}
				historyRows = append(historyRows, []string{
					rec.StartedAt.Local().Format("2006-01-02 15:04:05"),
					rec.Policy,
					strconv.Itoa(rec.JobsTotal),
					strconv.Itoa(rec.JobsDone),
					strconv.Itoa(rec.JobsFailed),
					strconv.Itoa(rec.JobsCancelled),
					outcome,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Policy", "Jobs", "Done", "Failed", "Cancelled", "Outcome"},
				historyRows, 3, 4, 5, 6))
			return nil
		},
	}

	cmd.Flags().IntVar(&historyLimit, "history", 10, "Number of recent runs to show")
	return cmd
}

func newStateResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the resume position to the start of the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("reset batch state: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Resume position reset; the next batch starts from the first track")
			return nil
		},
	}
}
