package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"

	"github.com/toyz/buildergen/internal/utils"
)

// DefaultWatchDebounce coalesces bursts of file events into one run
const DefaultWatchDebounce = 200 * time.Millisecond

// Watcher re-runs generation whenever a source file in a watched package changes
type Watcher struct {
	generator   *Generator
	diagnostics *utils.DiagnosticSystem
	wait        time.Duration

	// onRun is called after every run, used by tests
	onRun func(GenerationSummary, error)
}

// NewWatcher creates a watcher for the generator
func NewWatcher(generator *Generator, diagnostics *utils.DiagnosticSystem, wait time.Duration) *Watcher {
	if wait <= 0 {
		wait = DefaultWatchDebounce
	}
	return &Watcher{
		generator:   generator,
		diagnostics: diagnostics,
		wait:        wait,
	}
}

// Watch runs generation once, then again after every batch of relevant
// changes, until ctx is cancelled
func (w *Watcher) Watch(ctx context.Context, opts GenerateOptions) error {
	if len(opts.Directories) == 0 {
		opts.Directories = []string{"./..."}
	}

	patterns, err := w.generator.Scanner().Roots(opts.Directories)
	if err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return utils.WrapLoadError("file watcher", err)
	}
	defer fsWatcher.Close()

	for _, pattern := range patterns {
		if err := w.addTree(fsWatcher, pattern); err != nil {
			return err
		}
	}
	w.diagnostics.Info("Watching %d %s for changes", len(fsWatcher.WatchList()),
		plural(len(fsWatcher.WatchList()), "directory", "directories"))

	trigger := make(chan struct{}, 1)
	debounced, cancel := debounce.New(w.wait, func() {
		select {
		case trigger <- struct{}{}:
		default:
			// a run is already pending
		}
	})
	defer cancel()

	w.run(ctx, opts)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.handleEvent(fsWatcher, patterns, event) {
				debounced()
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.diagnostics.Warn("watch error: %v", err)
		case <-trigger:
			w.run(ctx, opts)
		}
	}
}

func (w *Watcher) run(ctx context.Context, opts GenerateOptions) {
	summary, err := w.generator.Run(ctx, opts)
	if err != nil {
		w.diagnostics.Error("%v", err)
	} else {
		w.diagnostics.Success("Generated %d %s in %s", summary.FilesWritten,
			plural(summary.FilesWritten, "file", "files"), summary.Duration.Round(time.Millisecond))
	}
	if w.onRun != nil {
		w.onRun(summary, err)
	}
}

// handleEvent reports whether event should trigger a run. New directories
// below recursive roots are added to the watch list.
func (w *Watcher) handleEvent(fsWatcher *fsnotify.Watcher, patterns []Pattern, event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			for _, pattern := range patterns {
				if pattern.Recursive && isBelow(pattern.Dir, event.Name) {
					if err := w.addTree(fsWatcher, Pattern{Dir: event.Name, Recursive: true}); err != nil {
						w.diagnostics.Warn("failed to watch %s: %v", event.Name, err)
					}
					return true
				}
			}
			return false
		}
	}

	if !isSourceFile(event.Name) {
		return false
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.generator.FileReader().InvalidateFile(event.Name)
	w.diagnostics.Debug("changed: %s", event.Name)
	return true
}

// addTree watches pattern.Dir and, for recursive patterns, every directory
// below it that the scanner would visit
func (w *Watcher) addTree(fsWatcher *fsnotify.Watcher, pattern Pattern) error {
	if !pattern.Recursive {
		return fsWatcher.Add(pattern.Dir)
	}

	processor := w.generator.Scanner().FileProcessor()
	directoryFilter := utils.DefaultDirectoryFilter()

	return filepath.WalkDir(pattern.Dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != pattern.Dir {
			rel, _ := filepath.Rel(pattern.Dir, path)
			if !directoryFilter(path, entry) || processor.IsExcluded(rel) {
				return filepath.SkipDir
			}
		}
		return fsWatcher.Add(path)
	})
}

// isSourceFile matches the files that feed generation, never the generated output
func isSourceFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasPrefix(name, "autogen_") &&
		!strings.HasPrefix(name, ".")
}

func isBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}
