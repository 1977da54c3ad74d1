package utils

import (
	"fmt"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModuleInfo describes the module enclosing a directory
type ModuleInfo struct {
	Path      string
	GoVersion string
	Dir       string
}

// GoModParser reads go.mod files through a caching FileReader
type GoModParser struct {
	fileReader *FileReader
}

// NewGoModParser creates a new go.mod parser with caching
func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{fileReader: fileReader}
}

// ParseModule parses a go.mod file
func (p *GoModParser) ParseModule(goModPath string) (*ModuleInfo, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return nil, fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(cleanPath)
	if err != nil {
		return nil, WrapLoadError("go.mod", err)
	}

	modFile, err := modfile.ParseLax(cleanPath, []byte(content), nil)
	if err != nil {
		return nil, WrapParseError("go.mod", err)
	}
	if modFile.Module == nil {
		return nil, fmt.Errorf("no module declaration found in %s", cleanPath)
	}

	info := &ModuleInfo{
		Path: modFile.Module.Mod.Path,
		Dir:  filepath.Dir(cleanPath),
	}
	if modFile.Go != nil {
		info.GoVersion = modFile.Go.Version
	}
	return info, nil
}

// ParseModuleName extracts the module path from a go.mod file
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	info, err := p.ParseModule(goModPath)
	if err != nil {
		return "", err
	}
	return info.Path, nil
}

// FindGoModFile searches for go.mod starting from startDir and walking up
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if content, err := p.fileReader.ReadFile(goModPath); err == nil && content != "" {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// FindModule locates and parses the go.mod enclosing startDir
func (p *GoModParser) FindModule(startDir string) (*ModuleInfo, error) {
	path, err := p.FindGoModFile(startDir)
	if err != nil {
		return nil, err
	}
	return p.ParseModule(path)
}
