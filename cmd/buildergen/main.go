package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/utils"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// globalOptions are shared by every subcommand
type globalOptions struct {
	verbose    bool
	quiet      bool
	configPath string

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "buildergen",
		Short: "Generate builder types for annotated Go structs",
		Long: `buildergen scans Go packages for struct types marked with //builder:derive
and writes a fluent builder for each of them into autogen_builder.go.

Fields annotated with //builder(required) must be set before Build succeeds.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output and detailed error reporting")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "Only show errors and final results")
	flags.StringVar(&opts.configPath, "config", "", "Path to the configuration file (defaults to the nearest "+cli.ConfigFileName+")")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(
		newGenerateCommand(opts),
		newCleanCommand(opts),
		newServeCommand(opts),
		newVersionCommand(opts),
	)
	return root
}

// diagnostics builds the console output for the selected verbosity. With
// JSON output the regular stream moves to stderr so stdout stays parseable.
func (o *globalOptions) diagnostics(format string) *utils.DiagnosticSystem {
	level := utils.DiagnosticInfo
	switch {
	case o.quiet:
		level = utils.DiagnosticError
	case o.verbose:
		level = utils.DiagnosticVerbose
	}

	diagnostics := utils.NewDiagnosticSystem(level)
	if format == cli.FormatJSON {
		diagnostics.SetOutput(o.stderr, o.stderr)
	} else {
		diagnostics.SetOutput(o.stdout, o.stderr)
	}
	return diagnostics
}

// loadConfig reads the configuration relative to the working directory
func (o *globalOptions) loadConfig() (*cli.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return cli.LoadConfig(o.configPath, cwd)
}
