package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/generator"
)

const defaultServeAddr = "127.0.0.1:7878"

func newServeCommand(global *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve builder generation over HTTP",
		Long: `Serve builder generation over HTTP.

POST /v1/generate accepts {"filename": "...", "source": "..."} and returns the
generated file, or the located diagnostics of the source. GET /healthz reports
liveness.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				reportSetupError(global, err)
				return err
			}

			diagnostics := global.diagnostics(cli.FormatText)
			server := cli.NewServer(generator.NewGenerator(generator.WithOutputName(cfg.Output)), diagnostics)
			if err := server.Start(cmd.Context(), addr); err != nil {
				diagnostics.Error("Server failed: %v", err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "Address to listen on")
	return cmd
}
