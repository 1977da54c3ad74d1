package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/utils"
)

// DirectoryScanner turns command-line patterns into package directories
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner(fileProcessor *utils.FileProcessor) *DirectoryScanner {
	if fileProcessor == nil {
		fileProcessor = utils.NewFileProcessor()
	}
	return &DirectoryScanner{fileProcessor: fileProcessor}
}

// Pattern is one parsed directory argument
type Pattern struct {
	Dir       string // absolute directory
	Recursive bool   // true for "dir/..."
}

// ParsePattern resolves a directory argument. "./..." and "dir/..." walk
// every subdirectory; any other argument names a single package directory.
func ParsePattern(arg string) (Pattern, error) {
	dir := arg
	recursive := false

	if arg == "..." || strings.HasSuffix(arg, "/...") {
		recursive = true
		dir = strings.TrimSuffix(strings.TrimSuffix(arg, "..."), "/")
		if dir == "" {
			dir = "."
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Pattern{}, errors.WrapWithOperation("resolve", fmt.Sprintf("path %s", dir), err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Pattern{}, errors.WrapFileSystemError("stat", dir, err).
			WithSuggestion("check that the directory exists")
	}
	if !info.IsDir() {
		return Pattern{}, errors.Newf(errors.FileSystemErrorCode, "%s is not a directory", dir)
	}

	return Pattern{Dir: abs, Recursive: recursive}, nil
}

// ScanDirectories returns the sorted, de-duplicated package directories
// matched by the given patterns
func (s *DirectoryScanner) ScanDirectories(args []string) ([]string, error) {
	var recursiveRoots []string
	seen := make(map[string]bool)
	var packageDirs []string

	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			packageDirs = append(packageDirs, dir)
		}
	}

	for _, arg := range args {
		pattern, err := ParsePattern(arg)
		if err != nil {
			return nil, err
		}

		if pattern.Recursive {
			recursiveRoots = append(recursiveRoots, pattern.Dir)
			continue
		}

		ok, err := s.fileProcessor.HasGoFiles(pattern.Dir)
		if err != nil {
			return nil, errors.WrapFileSystemError("read directory", pattern.Dir, err)
		}
		if ok {
			add(pattern.Dir)
		}
	}

	if len(recursiveRoots) > 0 {
		dirs, err := s.fileProcessor.ScanDirectoriesWithGoFiles(recursiveRoots)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			add(dir)
		}
	}

	sort.Strings(packageDirs)
	return packageDirs, nil
}

// Roots returns the directories named by the patterns, for walking and watching
func (s *DirectoryScanner) Roots(args []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(args))
	for _, arg := range args {
		pattern, err := ParsePattern(arg)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, pattern)
	}
	return patterns, nil
}

// FileProcessor returns the file processor used for scanning
func (s *DirectoryScanner) FileProcessor() *utils.FileProcessor {
	return s.fileProcessor
}
