package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediasort/internal/naming"
)

func newVariablesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "variables",
		Short: "List the template variables available to naming and folder templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry := naming.DefaultRegistry(cfg)

			rows := make([][]string, 0)
			for _, def := range registry.Definitions() {
				required := ""
				if def.Required {
					required = "yes"
				}
				fallback := def.Fallback
				if !def.HasFallback {
					fallback = ""
				}
				rows = append(rows, []string{
					def.Name,
					string(def.Source),
					required,
					fallback,
					def.Example,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]column{col("Variable"), col("Source"), col("Required"), col("Fallback"), col("Example")},
				rows,
			))
			return nil
		},
	}
}
