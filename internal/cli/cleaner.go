package cli

import (
	"os"

	"github.com/toyz/buildergen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	scanner *DirectoryScanner
}

// NewCleaner creates a new cleaner
func NewCleaner(scanner *DirectoryScanner) *Cleaner {
	if scanner == nil {
		scanner = NewDirectoryScanner(nil)
	}
	return &Cleaner{scanner: scanner}
}

// CleanGeneratedFiles removes the generated builder files matched by the
// directory patterns and returns their paths. Files with the output name
// that were not written by buildergen are kept.
func (c *Cleaner) CleanGeneratedFiles(args []string) ([]string, error) {
	patterns, err := c.scanner.Roots(args)
	if err != nil {
		return nil, err
	}

	processor := c.scanner.FileProcessor()
	var removed []string

	for _, pattern := range patterns {
		if pattern.Recursive {
			files, err := processor.CleanDirectories([]string{pattern.Dir})
			removed = append(removed, files...)
			if err != nil {
				return removed, err
			}
			continue
		}

		file, ok, err := removeGenerated(processor.OutputPath(pattern.Dir))
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, file)
		}
	}

	return removed, nil
}

// removeGenerated deletes path if it carries the generated header
func removeGenerated(path string) (string, bool, error) {
	generated, err := utils.IsGeneratedFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, utils.WrapProcessError("file check "+path, err)
	}
	if !generated {
		return "", false, nil
	}
	if err := os.Remove(path); err != nil {
		return "", false, utils.WrapProcessError("file removal "+path, err)
	}
	return path, true, nil
}
