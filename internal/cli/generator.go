package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/generator"
	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/parser"
	"github.com/toyz/buildergen/internal/utils"
)

// GenerateOptions controls one generation run
type GenerateOptions struct {
	Directories []string // directory patterns, "./..." walks recursively
	DryRun      bool     // print generated files instead of writing them
	Check       bool     // fail when a generated file is missing or out of date
}

// GenerationSummary describes the outcome of a run
type GenerationSummary struct {
	PackagesProcessed int
	PackagesFailed    int
	RecordsFound      int
	FilesWritten      int
	FilesUnchanged    int
	FilesRemoved      int
	CacheHits         int
	GeneratedFiles    []string
	StaleFiles        []string
	Duration          time.Duration
}

// Stats returns the summary as labelled values for DiagnosticSystem.Summary
func (s GenerationSummary) Stats() map[string]any {
	return map[string]any{
		"Packages processed": s.PackagesProcessed,
		"Records found":      s.RecordsFound,
		"Files written":      s.FilesWritten,
		"Files unchanged":    s.FilesUnchanged,
		"Files removed":      s.FilesRemoved,
		"Cache hits":         s.CacheHits,
		"Duration":           s.Duration.Round(time.Millisecond),
	}
}

// Generator coordinates the CLI generation process
type Generator struct {
	config         *Config
	version        string
	fileReader     *utils.FileReader
	fileProcessor  *utils.FileProcessor
	scanner        *DirectoryScanner
	moduleResolver *ModuleResolver
	reader         *parser.SourceReader
	codeGenerator  generator.CodeGenerator
	cache          *DiskCache
	reporter       *DiagnosticReporter
	diagnostics    *utils.DiagnosticSystem

	// serializes runs started by the watcher and by callers
	runMu sync.Mutex
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithDiskCache enables the on-disk generation cache
func WithDiskCache(cache *DiskCache) GeneratorOption {
	return func(g *Generator) {
		g.cache = cache
	}
}

// WithVersion sets the tool version mixed into cache keys
func WithVersion(version string) GeneratorOption {
	return func(g *Generator) {
		g.version = version
	}
}

// WithReporter sets where located diagnostics are printed
func WithReporter(reporter *DiagnosticReporter) GeneratorOption {
	return func(g *Generator) {
		g.reporter = reporter
	}
}

// NewGenerator creates a new CLI generator
func NewGenerator(config *Config, diagnostics *utils.DiagnosticSystem, opts ...GeneratorOption) *Generator {
	if config == nil {
		config = DefaultConfig()
	}
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	fileReader := utils.NewFileReader()
	fileProcessor := utils.NewFileProcessorWithReader(fileReader,
		utils.WithOutputName(config.Output),
		utils.WithExcludes(config.Exclude...),
	)

	g := &Generator{
		config:         config,
		version:        "dev",
		fileReader:     fileReader,
		fileProcessor:  fileProcessor,
		scanner:        NewDirectoryScanner(fileProcessor),
		moduleResolver: NewModuleResolver(fileReader),
		reader:         parser.NewSourceReaderWithFileReader(fileReader),
		codeGenerator:  generator.NewGenerator(generator.WithOutputName(config.Output)),
		diagnostics:    diagnostics,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.reporter == nil {
		g.reporter = NewDiagnosticReporter(diagnostics.ErrorOutput(), config.Format,
			diagnostics.Level() >= utils.DiagnosticVerbose, diagnostics.UseColors())
	}
	return g
}

// Scanner returns the scanner used to find packages
func (g *Generator) Scanner() *DirectoryScanner {
	return g.scanner
}

// FileReader returns the shared source cache
func (g *Generator) FileReader() *utils.FileReader {
	return g.fileReader
}

type packageStatus int

const (
	statusSkipped   packageStatus = iota // no records and no generated file
	statusWritten                        // generated file written
	statusUnchanged                      // generated file already up to date
	statusStale                          // check mode found a difference
	statusRemoved                        // generated file of a package without records removed
	statusPreview                        // dry run
	statusFailed                         // diagnostics or a tool error
)

type packageResult struct {
	dir         string
	status      packageStatus
	file        *models.GeneratedFile
	records     []string
	cacheHit    bool
	diagnostics []*errors.Diagnostic
	warnings    []string
	err         error
}

// Run executes the complete generation process. Packages are generated in
// parallel up to the configured job count; output is reported in package
// order once every package is done.
func (g *Generator) Run(ctx context.Context, opts GenerateOptions) (GenerationSummary, error) {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	startTime := time.Now()
	summary := GenerationSummary{}

	if len(opts.Directories) == 0 {
		opts.Directories = []string{"./..."}
	}
	g.diagnostics.Debug("Scanning directories: %v", opts.Directories)

	packageDirs, err := g.scanner.ScanDirectories(opts.Directories)
	if err != nil {
		return summary, err
	}
	if len(packageDirs) == 0 {
		return summary, errors.Newf(errors.FileSystemErrorCode, "no Go packages found in %s", strings.Join(opts.Directories, ", ")).
			WithSuggestions(
				"ensure the directories contain non-test Go files",
				"use the ./... pattern to scan subdirectories",
			)
	}
	g.diagnostics.Verbose("Found %d packages to process", len(packageDirs))

	results := make([]packageResult, len(packageDirs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(g.config.Jobs)

	for i, dir := range packageDirs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = g.processPackage(dir, opts)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return summary, err
	}

	var diags []*errors.Diagnostic
	var failures []error
	for _, res := range results {
		summary.PackagesProcessed++
		if res.cacheHit {
			summary.CacheHits++
		}
		for _, warning := range res.warnings {
			g.diagnostics.Warn("%s", warning)
		}

		display := relativePath(g.reporter.baseDir, res.dir)
		switch res.status {
		case statusFailed:
			summary.PackagesFailed++
			diags = append(diags, res.diagnostics...)
			if res.err != nil {
				failures = append(failures, res.err)
			}
			continue
		case statusSkipped:
			g.diagnostics.Debug("%s: no builder records", display)
			continue
		case statusRemoved:
			summary.FilesRemoved++
			g.diagnostics.PhaseItem("Removed %s", relativePath(g.reporter.baseDir, g.fileProcessor.OutputPath(res.dir)))
			continue
		}

		summary.RecordsFound += len(res.records)
		path := relativePath(g.reporter.baseDir, res.file.FilePath)
		g.diagnostics.Verbose("%s: %s", g.moduleResolver.ImportPath(res.dir), strings.Join(res.records, ", "))

		switch res.status {
		case statusWritten:
			summary.FilesWritten++
			summary.GeneratedFiles = append(summary.GeneratedFiles, res.file.FilePath)
			g.diagnostics.PhaseProgress("Writing %s", path)
		case statusUnchanged:
			summary.FilesUnchanged++
			g.diagnostics.Verbose("%s is up to date", path)
		case statusStale:
			summary.StaleFiles = append(summary.StaleFiles, res.file.FilePath)
			g.diagnostics.Warn("%s is out of date", path)
		case statusPreview:
			fmt.Fprintf(g.diagnostics.Output(), "==> %s <==\n%s\n", path, res.file.Content)
		}
	}

	summary.Duration = time.Since(startTime)

	if len(diags) > 0 || g.config.Format == FormatJSON {
		if g.config.Format == FormatJSON {
			for _, failure := range failures {
				diags = append(diags, errors.Diagnostics(failure)...)
			}
			failures = nil
		}
		if err := g.reporter.Report(diags); err != nil {
			return summary, err
		}
	}
	for _, failure := range failures {
		g.reporter.ReportError(failure)
	}

	if summary.PackagesFailed > 0 {
		return summary, errors.Newf(errors.GenerationErrorCode, "%d of %d %s failed",
			summary.PackagesFailed, summary.PackagesProcessed, plural(summary.PackagesProcessed, "package", "packages"))
	}
	if opts.Check && len(summary.StaleFiles) > 0 {
		return summary, errors.Newf(errors.GenerationErrorCode, "%d generated %s out of date",
			len(summary.StaleFiles), plural(len(summary.StaleFiles), "file is", "files are")).
			WithSuggestion("run `buildergen generate` to update them")
	}
	return summary, nil
}

// processPackage generates one package. It never returns early with an
// error; failures are carried in the result so sibling packages still run.
func (g *Generator) processPackage(dir string, opts GenerateOptions) packageResult {
	res := packageResult{dir: dir}

	sources, err := g.readSources(dir)
	if err != nil {
		res.status = statusFailed
		res.err = err
		return res
	}

	key := PackageDigest(g.version, g.config.Output, sources)
	entry, hit, err := g.cache.Get(key)
	if err != nil {
		res.warnings = append(res.warnings, fmt.Sprintf("ignoring unreadable cache entry %s: %v", key, err))
	}

	if hit {
		res.cacheHit = true
	} else {
		entry, res.diagnostics, res.err = g.generate(dir)
		if res.err != nil || len(res.diagnostics) > 0 {
			res.status = statusFailed
			return res
		}
		if err := g.cache.Put(key, entry); err != nil {
			res.warnings = append(res.warnings, fmt.Sprintf("failed to cache %s: %v", dir, err))
		}
	}

	path := g.fileProcessor.OutputPath(dir)
	res.records = entry.Records

	if len(entry.Records) == 0 {
		return g.removeStale(path, opts, res)
	}

	res.file = &models.GeneratedFile{
		PackageName: entry.PackageName,
		FilePath:    path,
		Content:     entry.Content,
		Records:     entry.Records,
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil && bytes.Equal(existing, entry.Content):
		res.status = statusUnchanged
		return res
	case err != nil && !os.IsNotExist(err):
		res.status = statusFailed
		res.err = errors.WrapFileSystemError("read", path, err)
		return res
	case err == nil:
		if generated, _ := utils.IsGeneratedFile(path); !generated {
			res.status = statusFailed
			res.err = errors.Newf(errors.FileSystemErrorCode, "refusing to overwrite %s: it was not generated by buildergen", path).
				WithSuggestion("rename the file or choose another output name")
			return res
		}
	}

	switch {
	case opts.Check:
		res.status = statusStale
	case opts.DryRun:
		res.status = statusPreview
	default:
		if err := utils.WriteFileAtomic(path, entry.Content, 0o644); err != nil {
			res.status = statusFailed
			res.err = err
			return res
		}
		res.status = statusWritten
	}
	return res
}

// generate runs the declaration pipeline for one package directory
func (g *Generator) generate(dir string) (*CacheEntry, []*errors.Diagnostic, error) {
	pkg, err := g.reader.ParseDirectory(dir)
	if err != nil {
		return nil, nil, err
	}

	records, err := parser.ParseRecords(pkg.Declarations)
	if err != nil {
		return nil, errors.Diagnostics(err), nil
	}

	entry := &CacheEntry{PackageName: pkg.Name}
	if len(records) == 0 {
		return entry, nil, nil
	}

	file, err := g.codeGenerator.GenerateFile(pkg.Name, dir, records)
	if err != nil {
		var multi *errors.MultipleErrors
		if stderrors.As(err, &multi) {
			return nil, multi.Errors, nil
		}
		return nil, nil, err
	}

	entry.Records = file.Records
	entry.Content = file.Content
	return entry, nil, nil
}

// removeStale deletes the generated file of a package that no longer has records
func (g *Generator) removeStale(path string, opts GenerateOptions, res packageResult) packageResult {
	generated, err := utils.IsGeneratedFile(path)
	if err != nil || !generated {
		res.status = statusSkipped
		return res
	}

	switch {
	case opts.Check:
		res.status = statusStale
		res.file = &models.GeneratedFile{FilePath: path}
	case opts.DryRun:
		res.status = statusSkipped
		res.warnings = append(res.warnings, fmt.Sprintf("would remove %s", path))
	default:
		if err := os.Remove(path); err != nil {
			res.status = statusFailed
			res.err = errors.WrapFileSystemError("remove", path, err)
			return res
		}
		res.status = statusRemoved
	}
	return res
}

// readSources reads the files that feed generation in dir
func (g *Generator) readSources(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	filter := utils.DefaultGoFileFilter()
	sources := make(map[string][]byte)
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !filter(path, entry) {
			continue
		}
		content, err := g.fileReader.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources[path] = []byte(content)
	}
	return sources, nil
}
