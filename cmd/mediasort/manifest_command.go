package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediasort/internal/journal"
	"mediasort/internal/manifest"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest [run-id]",
		Short: "Show a run's manifest, or list runs when no run is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := journal.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 0 {
				return listRuns(cmd, store)
			}
			return showManifest(cmd, store, strings.TrimSpace(args[0]))
		},
	}
	return cmd
}

func listRuns(cmd *cobra.Command, store *journal.Store) error {
	runs, err := store.ListRuns(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Format(time.RFC3339)
		}
		rows = append(rows, []string{
			run.ID,
			string(run.Status),
			run.StartedAt.Format(time.RFC3339),
			finished,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]column{col("Run"), col("Status"), col("Started"), col("Finished")},
		rows,
	))
	return nil
}

func showManifest(cmd *cobra.Command, store *journal.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}
	outcomes, err := store.OutcomesByRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), manifest.FromJournal(run, outcomes).Render())
	return nil
}
