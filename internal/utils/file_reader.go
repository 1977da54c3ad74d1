package utils

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// FileReader reads and parses the source files of a generation run. Contents
// and syntax trees are cached per path until the file changes on disk, and all
// positions share one token.FileSet.
type FileReader struct {
	fileSet  *token.FileSet
	contents *stampedCache[string]
	syntax   *stampedCache[*ast.File]
}

// NewFileReader creates an empty FileReader
func NewFileReader() *FileReader {
	return &FileReader{
		fileSet:  token.NewFileSet(),
		contents: newStampedCache[string](),
		syntax:   newStampedCache[*ast.File](),
	}
}

// ParseGoFile parses a Go source file, comments included. The contents come
// from ReadFile and share its cache.
func (fr *FileReader) ParseGoFile(filePath string) (*ast.File, error) {
	cleanPath, err := cleanExistingPath(filePath)
	if err != nil {
		return nil, err
	}

	if cached, ok := fr.syntax.load(cleanPath); ok {
		return cached, nil
	}

	content, err := fr.ReadFile(cleanPath)
	if err != nil {
		return nil, err
	}

	file, err := parser.ParseFile(fr.fileSet, cleanPath, content, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go file %s: %w", filepath.Base(cleanPath), err)
	}

	fr.syntax.store(cleanPath, file)
	return file, nil
}

// ParseGoSource parses in-memory Go source under the given file name
func (fr *FileReader) ParseGoSource(filename, source string) (*ast.File, error) {
	file, err := parser.ParseFile(fr.fileSet, filename, source, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Go source: %w", err)
	}
	return file, nil
}

// ReadFile returns the contents of a file
func (fr *FileReader) ReadFile(filePath string) (string, error) {
	cleanPath, err := cleanExistingPath(filePath)
	if err != nil {
		return "", err
	}

	if cached, ok := fr.contents.load(cleanPath); ok {
		return cached, nil
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filepath.Base(cleanPath), err)
	}

	fr.contents.store(cleanPath, string(content))
	return string(content), nil
}

// GetFileSet returns the token.FileSet used by this reader
func (fr *FileReader) GetFileSet() *token.FileSet {
	return fr.fileSet
}

// InvalidateFile drops everything cached for a file
func (fr *FileReader) InvalidateFile(filePath string) {
	cleanPath := filepath.Clean(filePath)
	fr.contents.forget(cleanPath)
	fr.syntax.forget(cleanPath)
}

func cleanExistingPath(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}

	cleanPath := filepath.Clean(filePath)
	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return "", fmt.Errorf("file does not exist: %s", cleanPath)
	}

	return cleanPath, nil
}
