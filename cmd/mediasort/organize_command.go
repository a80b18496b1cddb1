package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediasort/internal/batch"
	"mediasort/internal/journal"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Plan and execute a full organization run",
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

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, err := coordinator.Run(runCtx)
			if err != nil {
				if errors.Is(err, batch.ErrAlreadyRunning) {
					return fmt.Errorf("another run holds the batch lock; wait for it or run 'mediasort recover'")
				}
				return err
			}

			out := cmd.OutOrStdout()
			progress := coordinator.Progress()
			sectionHeader(out, "Run summary")
			fmt.Fprintf(out, "Run %s: %s\n", result.RunID, result.Status)
			fmt.Fprintf(out, "Moved %d files (%s), excluded %d, failed %d\n",
				result.Moved, humanize.IBytes(uint64(progress.BytesMoved)), result.Excluded, result.Failed)
			fmt.Fprintf(out, "Manifest: %s\n", result.ManifestPath)
			if result.Status == journal.RunCompletedWithErrors {
				return fmt.Errorf("run completed with %d failed files", result.Failed)
			}
			return nil
		},
	}
}
