package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/toyz/buildergen/internal/cli"
	"github.com/toyz/buildergen/internal/utils"
)

type generateOptions struct {
	output   string
	exclude  []string
	format   string
	jobs     int
	dryRun   bool
	check    bool
	watch    bool
	noCache  bool
	debounce time.Duration
}

func newGenerateCommand(global *globalOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [directories...]",
		Short: "Generate builders for the packages in the given directories",
		Long: `Generate builders for every package found in the given directories.

Directories accept Go-style patterns:
  ./...              the current directory and everything below it (default)
  ./internal/...     the internal directory recursively
  ./pkg/models       only that directory

Packages with builder errors are reported and skipped, every other package
is still generated.`,
		Example: `  buildergen generate
  buildergen generate ./internal/... ./pkg/models
  buildergen generate --check ./...
  buildergen generate --format json ./... > diagnostics.json
  buildergen generate --watch ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, global, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "Name of the generated file in every package (default "+utils.DefaultOutputName+")")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "Directory patterns to skip, relative to each scanned root")
	flags.StringVar(&opts.format, "format", "", "Diagnostic format: text or json")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "Number of packages generated in parallel (default the number of CPUs)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Print generated files instead of writing them")
	flags.BoolVar(&opts.check, "check", false, "Fail when a generated file is missing or out of date, without writing")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "Regenerate whenever a source file changes")
	flags.BoolVar(&opts.noCache, "no-cache", false, "Disable the on-disk generation cache")
	flags.DurationVar(&opts.debounce, "debounce", cli.DefaultWatchDebounce, "Quiet period before regenerating in watch mode")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "check", "watch")

	return cmd
}

// applyFlags overrides the configuration with the flags that were set explicitly
func (o *generateOptions) applyFlags(cmd *cobra.Command, cfg *cli.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output = o.output
	}
	if flags.Changed("exclude") {
		cfg.Exclude = o.exclude
	}
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("jobs") {
		cfg.Jobs = o.jobs
	}
	if o.noCache {
		cfg.Cache = false
	}
	return cfg.Validate()
}

func runGenerate(cmd *cobra.Command, global *globalOptions, opts *generateOptions, args []string) error {
	cfg, err := global.loadConfig()
	if err == nil {
		err = opts.applyFlags(cmd, cfg)
	}
	if err != nil {
		reportSetupError(global, err)
		return err
	}

	diagnostics := global.diagnostics(cfg.Format)
	if cfg.Source != "" {
		diagnostics.Verbose("Using configuration %s", cfg.Source)
	}

	genOpts := []cli.GeneratorOption{cli.WithVersion(version)}
	if cfg.Format == cli.FormatJSON {
		genOpts = append(genOpts, cli.WithReporter(
			cli.NewDiagnosticReporter(global.stdout, cli.FormatJSON, global.verbose, false)))
	}
	if cfg.Cache && !opts.dryRun {
		cache, err := openCache(cfg, diagnostics)
		if err != nil {
			diagnostics.Warn("generation cache disabled: %v", err)
		} else {
			genOpts = append(genOpts, cli.WithDiskCache(cache))
		}
	}

	generator := cli.NewGenerator(cfg, diagnostics, genOpts...)
	runOpts := cli.GenerateOptions{
		Directories: args,
		DryRun:      opts.dryRun,
		Check:       opts.check,
	}

	if opts.watch {
		diagnostics.Header("Watching for changes")
		return cli.NewWatcher(generator, diagnostics, opts.debounce).Watch(cmd.Context(), runOpts)
	}

	diagnostics.Header("Generating builders")
	summary, err := generator.Run(cmd.Context(), runOpts)
	if err != nil {
		diagnostics.Error("%v", err)
		return err
	}

	if opts.dryRun {
		return nil
	}
	diagnostics.Summary("Summary", summary.Stats())
	if global.verbose && len(summary.GeneratedFiles) > 0 {
		diagnostics.PhaseHeader("Generated files")
		for _, file := range summary.GeneratedFiles {
			diagnostics.List("%s", file)
		}
	}
	if !opts.check {
		diagnostics.GenerationComplete()
	}
	return nil
}

func openCache(cfg *cli.Config, diagnostics *utils.DiagnosticSystem) (*cli.DiskCache, error) {
	dir, err := cfg.ResolveCacheDir()
	if err != nil {
		return nil, err
	}
	cache, err := cli.OpenDiskCache(dir)
	if err != nil {
		return nil, err
	}
	diagnostics.Debug("Using generation cache %s", cache.Dir())
	return cache, nil
}

// reportSetupError prints configuration failures before any generator exists
func reportSetupError(global *globalOptions, err error) {
	cli.NewDiagnosticReporter(global.stderr, cli.FormatText, global.verbose, false).ReportError(err)
}
