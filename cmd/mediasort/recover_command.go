package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediasort/internal/batch"
	"mediasort/internal/journal"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Replay the journal after a crash and finish or undo interrupted moves",
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
			report, err := coordinator.Recover(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Finalized %d, re-attempted %d, failed %d, partial copies removed %d\n",
				report.Finalized, report.Reattempted, report.Failed, report.PartialsCleaned)
			return nil
		},
	}
}
