package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"clipforge/internal/capability"
	"clipforge/internal/logging"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var listFilters bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Inspect the compositing engine's filter capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			prober := capability.NewProber(cfg.FFmpegBinary(), nil, logging.NewNop())
			snap := prober.Probe(cmd.Context())

			out := cmd.OutOrStdout()
			scale := snap.HWScaleFilter
			if scale == "" {
				scale = "none (frames downloaded for final scale)"
			}
			rows := [][]string{
				{"Engine binary", cfg.FFmpegBinary()},
				{"Filters reported", strconv.Itoa(len(snap.FilterNames()))},
				{"Hardware overlay", yesNo(snap.HWOverlay)},
				{"Hardware scale filter", scale},
			}
			fmt.Fprintln(out, renderTable([]string{"Capability", "Value"}, rows))

			if listFilters {
				for _, name := range snap.FilterNames() {
					fmt.Fprintln(out, name)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listFilters, "filters", false, "List every filter the engine reports")
	return cmd
}
