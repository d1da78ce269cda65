package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/effects"
	"clipforge/internal/logging"
)

func newEffectsCommand(ctx *commandContext) *cobra.Command {
	effectsCmd := &cobra.Command{
		Use:   "effects",
		Short: "Manage the cached overlay frame sequences",
	}

	effectsCmd.AddCommand(newEffectsBuildCommand(ctx))
	effectsCmd.AddCommand(newEffectsClearCommand(ctx))

	return effectsCmd
}

func newEffectsBuildCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Generate frame sequences for every enabled effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cache := effects.NewCache(cfg.Paths.CacheDir, logging.NewNop())
			sequences, err := cache.EnsureAll(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sequences) == 0 {
				fmt.Fprintln(out, "No effects enabled in the configuration")
				return nil
			}
			rows := make([][]string, 0, len(sequences))
			for _, seq := range sequences {
				rows = append(rows, []string{
					string(seq.Kind),
					strconv.Itoa(seq.FrameCount),
					strconv.Itoa(seq.FrameRate),
					strconv.Itoa(seq.LoopSec) + "s",
					seq.Dir,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Effect", "Frames", "FPS", "Loop", "Directory"}, rows, 2, 3, 4))
			return nil
		},
	}
}

func newEffectsClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached frame sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			cache := effects.NewCache(cfg.Paths.CacheDir, logging.NewNop())
			if err := cache.Clear(); err != nil {
				return fmt.Errorf("clear effect cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared effect sequences under %s\n", cache.Root())
			return nil
		},
	}
}
