package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/utils"
)

func newCleanCommand(global *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clean [directories...]",
		Short: "Delete generated builder files",
		Long: `Delete the generated builder files in the given directories.

Only files carrying the buildergen header are removed. Directories accept
the same patterns as generate and default to ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err == nil && cmd.Flags().Changed("output") {
				cfg.Output = output
				err = cfg.Validate()
			}
			if err != nil {
				reportSetupError(global, err)
				return err
			}

			diagnostics := global.diagnostics(cli.FormatText)
			if len(args) == 0 {
				args = []string{"./..."}
			}

			processor := utils.NewFileProcessor(
				utils.WithOutputName(cfg.Output),
				utils.WithExcludes(cfg.Exclude...),
			)
			removed, err := cli.NewCleaner(cli.NewDirectoryScanner(processor)).CleanGeneratedFiles(args)
			for _, file := range removed {
				diagnostics.PhaseItem("Removed %s", file)
			}
			if err != nil {
				diagnostics.Error("Clean failed: %v", err)
				return err
			}

			diagnostics.Success("Removed %d generated %s", len(removed), pluralFiles(len(removed)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Name of the generated file to remove (default "+utils.DefaultOutputName+")")
	return cmd
}

func pluralFiles(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
