package templates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/toyz/buildergen/internal/models"
)

// ImportManager collects the imports of a generated file, keyed by the local
// name the generated code uses for each package
type ImportManager struct {
	imports map[string]models.ImportSpec
}

// NewImportManager creates a new import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		imports: make(map[string]models.ImportSpec),
	}
}

// Add registers the import bound to local. Adding the same binding twice is
// a no-op; binding local to a second path is an error.
func (im *ImportManager) Add(local string, spec models.ImportSpec) error {
	if existing, ok := im.imports[local]; ok {
		if existing.Path != spec.Path {
			return fmt.Errorf("package name %s refers to both %q and %q", local, existing.Path, spec.Path)
		}
		if existing.Name == "" && spec.Name != "" {
			im.imports[local] = spec
		}
		return nil
	}
	im.imports[local] = spec
	return nil
}

// Specs returns the imports with standard library packages first, each
// group sorted by path
func (im *ImportManager) Specs() []models.ImportSpec {
	specs := make([]models.ImportSpec, 0, len(im.imports))
	for _, spec := range im.imports {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool {
		gi, gj := importGroup(specs[i].Path), importGroup(specs[j].Path)
		if gi != gj {
			return gi < gj
		}
		if specs[i].Path != specs[j].Path {
			return specs[i].Path < specs[j].Path
		}
		return specs[i].Name < specs[j].Name
	})
	return specs
}

// Groups splits Specs into the standard library group and the rest,
// dropping empty groups
func (im *ImportManager) Groups() [][]models.ImportSpec {
	var groups [][]models.ImportSpec
	last := -1
	for _, spec := range im.Specs() {
		group := importGroup(spec.Path)
		if group != last {
			groups = append(groups, nil)
			last = group
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], spec)
	}
	return groups
}

// importGroup is 0 for standard library paths, whose first element has no dot
func importGroup(path string) int {
	first, _, _ := strings.Cut(path, "/")
	if strings.Contains(first, ".") {
		return 1
	}
	return 0
}
