package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/buildergen/internal/utils"
)

// ModuleResolver maps package directories to import paths using go.mod
type ModuleResolver struct {
	goMod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver(fileReader *utils.FileReader) *ModuleResolver {
	if fileReader == nil {
		fileReader = utils.NewFileReader()
	}
	return &ModuleResolver{goMod: utils.NewGoModParser(fileReader)}
}

// ResolveModule finds the module enclosing dir
func (r *ModuleResolver) ResolveModule(dir string) (*utils.ModuleInfo, error) {
	module, err := r.goMod.FindModule(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to determine module for %s: %w", dir, err)
	}
	return module, nil
}

// BuildPackagePath builds the full import path for a package directory of module
func (r *ModuleResolver) BuildPackagePath(module *utils.ModuleInfo, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	relPath, err := filepath.Rel(module.Dir, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return module.Path, nil
	}
	if importPath == ".." || strings.HasPrefix(importPath, "../") {
		return "", fmt.Errorf("directory %s is outside module %s", packageDir, module.Path)
	}

	return module.Path + "/" + importPath, nil
}

// ImportPath resolves the import path of packageDir, falling back to the
// directory itself when it is not inside a module
func (r *ModuleResolver) ImportPath(packageDir string) string {
	module, err := r.ResolveModule(packageDir)
	if err != nil {
		return packageDir
	}
	path, err := r.BuildPackagePath(module, packageDir)
	if err != nil {
		return packageDir
	}
	return path
}
