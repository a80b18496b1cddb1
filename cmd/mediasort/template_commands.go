package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/naming"
)

func newTemplateCommand(ctx *commandContext) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Template utilities",
	}
	templateCmd.AddCommand(newTemplateValidateCommand(ctx))
	templateCmd.AddCommand(newTemplatePreviewCommand(ctx))
	return templateCmd
}

func newTemplateValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [template]",
		Short: "Check a template against the variable registry",
		Long:  "Validates the given template, or the configured naming and folder templates when none is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry := naming.DefaultRegistry(cfg)
			out := cmd.OutOrStdout()

			templates := map[string]string{}
			if len(args) == 1 {
				templates["template"] = args[0]
			} else {
				templates["naming_template"] = cfg.Organize.NamingTemplate
				templates["folder_template"] = cfg.Organize.FolderTemplate
			}

			for label, source := range templates {
				compiled, err := naming.Compile(source, registry)
				if err != nil {
					return fmt.Errorf("%s %q: %w", label, source, err)
				}
				fmt.Fprintf(out, "%s %q ok (variables: %s)\n",
					label, source, strings.Join(compiled.Variables(), ", "))
			}
			return nil
		},
	}
}

func newTemplatePreviewCommand(ctx *commandContext) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "preview [template]",
		Short: "Render sample filenames for a template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry := naming.DefaultRegistry(cfg)

			source := cfg.Organize.NamingTemplate
			if len(args) == 1 {
				source = args[0]
			}
			compiled, err := naming.Compile(source, registry)
			if err != nil {
				return err
			}

			renderCtx := &naming.Context{
				User:            previewUserFields(cfg.User.EventName, cfg.User.ArtistNames, cfg.User.Extra),
				SequencePadding: cfg.Organize.SequencePadding,
			}
			out := cmd.OutOrStdout()
			for _, sample := range naming.Preview(compiled, registry, renderCtx, count, cfg.Organize.MaxComponentBytes) {
				fmt.Fprintln(out, sample)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of sample filenames to render")
	return cmd
}

func previewUserFields(eventName, artistNames string, extra map[string]string) map[string]string {
	fields := make(map[string]string, len(extra)+2)
	for name, value := range extra {
		fields[name] = value
	}
	if eventName != "" {
		fields["event_name"] = eventName
	}
	if artistNames != "" {
		fields["artist_names"] = artistNames
	}
	return fields
}
