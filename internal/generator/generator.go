package generator

import (
	"path/filepath"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/templates"
	"github.com/toyz/buildergen/internal/utils"
)

// Generator implements the CodeGenerator interface
type Generator struct {
	outputName string
}

// Option configures a Generator
type Option func(*Generator)

// WithOutputName sets the name of the generated file
func WithOutputName(name string) Option {
	return func(g *Generator) {
		if name != "" {
			g.outputName = name
		}
	}
}

// NewGenerator creates a new code generator instance
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{outputName: utils.DefaultOutputName}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OutputName returns the name of the generated file
func (g *Generator) OutputName() string {
	return g.outputName
}

// GenerateFile synthesizes a builder for every record and renders them into
// one formatted file for the package in dir. Package qualifiers used by field
// types and constraints are resolved against the imports of each record's
// declaring file; unresolvable or conflicting ones are reported as located
// diagnostics.
func (g *Generator) GenerateFile(packageName, dir string, records []*models.RecordDescriptor) (*models.GeneratedFile, error) {
	if len(records) == 0 {
		return nil, errors.Newf(errors.GenerationErrorCode, "no records to generate for package %s", packageName)
	}

	imports, err := resolveImports(records)
	if err != nil {
		return nil, err
	}

	builders := make([]*models.BuilderDefinition, 0, len(records))
	names := make([]string, 0, len(records))
	for _, record := range records {
		builders = append(builders, Synthesize(record))
		names = append(names, record.Name)
	}

	source, err := templates.RenderFile(templates.FileData{
		Header:       utils.GeneratedHeader,
		PackageName:  packageName,
		ImportGroups: imports.Groups(),
	}, builders)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, g.outputName)
	formatted, err := utils.FormatGoCode(path, []byte(source))
	if err != nil {
		return nil, errors.WrapGenerateError(path, err)
	}

	return &models.GeneratedFile{
		PackageName: packageName,
		FilePath:    path,
		Content:     formatted,
		Records:     names,
	}, nil
}

// resolveImports maps every package qualifier used by the records to an import
func resolveImports(records []*models.RecordDescriptor) (*templates.ImportManager, error) {
	manager := templates.NewImportManager()
	collector := errors.NewCollector()

	resolve := func(record *models.RecordDescriptor, typ models.TypeExpr, span errors.Span, subject string) {
		for _, qualifier := range typ.Qualifiers {
			spec, ok := record.Imports[qualifier]
			if !ok {
				collector.Addf(span, errors.GenerationErrorCode,
					"cannot resolve package `%s` used by %s of `%s`", qualifier, subject, record.Name).
					WithHint("only packages imported by the file declaring the record can be used")
				continue
			}
			if err := manager.Add(qualifier, spec); err != nil {
				collector.Add(span, errors.GenerationErrorCode, err.Error()).
					WithHint("use the same import name for the package in every file of the package")
			}
		}
	}

	for _, record := range records {
		for _, param := range record.TypeParams {
			resolve(record, param.Constraint, param.Span, "the constraint of "+param.Name)
		}
		for _, field := range record.Fields {
			resolve(record, field.Type, field.Span, "field "+field.Name)
		}
	}

	if err := collector.Finish(); err != nil {
		return nil, err
	}
	return manager, nil
}
