package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// DefaultOutputName is the file generated into every package with records
	DefaultOutputName = "autogen_builder.go"

	// GeneratedHeader is the first line of every generated file
	GeneratedHeader = "// Code generated by buildergen. DO NOT EDIT."
)

// FileProcessor finds package directories and manages generated files in them
type FileProcessor struct {
	fileReader *FileReader
	outputName string
	excludes   []string
}

// FileProcessorOption configures a FileProcessor
type FileProcessorOption func(*FileProcessor)

// WithOutputName sets the generated file name used by CleanDirectories and OutputPath
func WithOutputName(name string) FileProcessorOption {
	return func(fp *FileProcessor) {
		if name != "" {
			fp.outputName = name
		}
	}
}

// WithExcludes skips directories matching any of the doublestar patterns.
// Patterns are matched against slash-separated paths relative to the walk root.
func WithExcludes(patterns ...string) FileProcessorOption {
	return func(fp *FileProcessor) {
		fp.excludes = append(fp.excludes, patterns...)
	}
}

// NewFileProcessor creates a new file processor
func NewFileProcessor(opts ...FileProcessorOption) *FileProcessor {
	return NewFileProcessorWithReader(NewFileReader(), opts...)
}

// NewFileProcessorWithReader creates a file processor with an existing FileReader
func NewFileProcessorWithReader(reader *FileReader, opts ...FileProcessorOption) *FileProcessor {
	fp := &FileProcessor{
		fileReader: reader,
		outputName: DefaultOutputName,
	}
	for _, opt := range opts {
		opt(fp)
	}
	return fp
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter accepts .go files, excluding tests and generated autogen_ files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasPrefix(name, "autogen_")
	}
}

// DefaultDirectoryFilter skips hidden, vendored and build output directories
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return false
		}
		return !skipDirs[name]
	}
}

// OutputName returns the generated file name
func (fp *FileProcessor) OutputName() string {
	return fp.outputName
}

// OutputPath returns the generated file path for a package directory
func (fp *FileProcessor) OutputPath(dir string) string {
	return filepath.Join(dir, fp.outputName)
}

// IsExcluded reports whether a root-relative path matches one of the exclude patterns
func (fp *FileProcessor) IsExcluded(path string) bool {
	slashed := filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range fp.excludes {
		if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
			return true
		}
	}
	return false
}

func (fp *FileProcessor) isExcludedBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return fp.IsExcluded(rel)
}

// ScanDirectoriesWithGoFiles walks each root and returns every directory
// holding at least one non-test, non-generated Go file. Roots are always
// walked; filters and excludes only apply below them.
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		root := filepath.Clean(rootDir)
		dirs, err := fp.scanDirectoryRecursive(root, root, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectoryRecursive(root, dir string, visited map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("path resolution %s", dir), err)
	}
	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	if dir != root && fp.isExcludedBelow(root, dir) {
		return nil, nil
	}

	var packageDirs []string

	hasGoFiles, err := fp.HasGoFiles(dir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("Go file check in %s", dir), err)
	}
	if hasGoFiles {
		packageDirs = append(packageDirs, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("directory read %s", dir), err)
	}

	directoryFilter := DefaultDirectoryFilter()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		entryPath := filepath.Join(dir, entry.Name())
		if !directoryFilter(entryPath, entry) {
			continue
		}

		subDirs, err := fp.scanDirectoryRecursive(root, entryPath, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains any .go files (excluding test files and autogen files)
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	fileFilter := DefaultGoFileFilter()
	for _, entry := range entries {
		if fileFilter(filepath.Join(dir, entry.Name()), entry) {
			return true, nil
		}
	}

	return false, nil
}

// CleanDirectories removes generated files below each base directory.
// A file with the output name that lacks the generated header is left alone.
func (fp *FileProcessor) CleanDirectories(baseDirs []string) ([]string, error) {
	var removedFiles []string

	for _, baseDir := range baseDirs {
		if baseDir == "" {
			baseDir = "."
		}
		if err := fp.cleanDirectory(baseDir, &removedFiles); err != nil {
			return removedFiles, WrapProcessError(fmt.Sprintf("directory clean %s", baseDir), err)
		}
	}

	return removedFiles, nil
}

func (fp *FileProcessor) cleanDirectory(baseDir string, removedFiles *[]string) error {
	directoryFilter := DefaultDirectoryFilter()

	return filepath.WalkDir(baseDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped, not fatal
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != baseDir && (!directoryFilter(path, entry) || fp.isExcludedBelow(baseDir, path)) {
			return filepath.SkipDir
		}
		return fp.cleanSingleDirectory(path, removedFiles)
	})
}

func (fp *FileProcessor) cleanSingleDirectory(dir string, removedFiles *[]string) error {
	target := fp.OutputPath(dir)

	generated, err := IsGeneratedFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return WrapProcessError(fmt.Sprintf("file check %s", target), err)
	}
	if !generated {
		return nil
	}

	if err := os.Remove(target); err != nil {
		return WrapProcessError(fmt.Sprintf("file removal %s", target), err)
	}

	*removedFiles = append(*removedFiles, target)
	return nil
}

// IsGeneratedFile reports whether the first line of path is the generated header
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == GeneratedHeader, nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partially written file
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return WrapWriteError(path, err)
	}
	tmpName := tmp.Name()

	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return WrapWriteError(path, cause)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(perm); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return WrapWriteError(path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return WrapWriteError(path, err)
	}
	return nil
}

// GetFileReader returns the underlying FileReader for advanced operations
func (fp *FileProcessor) GetFileReader() *FileReader {
	return fp.fileReader
}
