package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediasort/internal/batch"
	"mediasort/internal/journal"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Preview the organization plan without touching any files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			coordinator, err := batch.New(cfg, store, logger, nil)
			if err != nil {
				return err
			}
			built, scanned, err := coordinator.Plan(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sectionHeader(out, "Organization plan")
			fmt.Fprintf(out, "Scanned %d media files (%s), %d unsupported\n",
				scanned.Stats.MediaFiles,
				humanize.IBytes(uint64(scanned.Stats.TotalBytes)),
				scanned.Stats.Unsupported)

			if len(built.Items) > 0 {
				rows := make([][]string, 0, len(built.Items))
				for _, item := range built.Items {
					rows = append(rows, []string{
						item.File.Path,
						item.DestPath,
						humanize.IBytes(uint64(item.File.Size)),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]column{col("Source"), col("Destination"), numCol("Size")},
					rows,
				))
			}
			for _, exclusion := range built.Excluded {
				fmt.Fprintf(out, "excluded %s (%s)\n", exclusion.File.Path, exclusion.Reason)
			}
			fmt.Fprintf(out, "%d moves planned, %d excluded\n", len(built.Items), len(built.Excluded))
			return nil
		},
	}
}
