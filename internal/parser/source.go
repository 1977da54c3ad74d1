package parser

import (
	"fmt"
	"bytes"
	"go/ast"
	"go/printer"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/toyz/buildergen/internal/annotations"
	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
	"github.com/toyz/buildergen/internal/utils"
)

// SourceReader turns Go source files into candidate builder declarations
type SourceReader struct {
	fileReader *utils.FileReader
}

// NewSourceReader creates a new source reader
func NewSourceReader() *SourceReader {
	return NewSourceReaderWithFileReader(utils.NewFileReader())
}

// NewSourceReaderWithFileReader creates a source reader sharing an existing FileReader cache
func NewSourceReaderWithFileReader(reader *utils.FileReader) *SourceReader {
	return &SourceReader{fileReader: reader}
}

// ParseSource parses source code from a string
func (r *SourceReader) ParseSource(filename, source string) (*models.PackageDeclarations, error) {
	file, err := r.fileReader.ParseGoSource(filename, source)
	if err != nil {
		return nil, err
	}

	decls, err := r.declarationsFromFile(file)
	if err != nil {
		return nil, utils.WrapProcessError(filename, err)
	}

	return &models.PackageDeclarations{
		Dir:          filepath.Dir(filename),
		Name:         file.Name.Name,
		Files:        []string{filename},
		Declarations: decls,
	}, nil
}

// ParseDirectory parses the non-test, non-generated Go files of one package directory
func (r *SourceReader) ParseDirectory(dir string) (*models.PackageDeclarations, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapFileSystemError("read directory", dir, err)
	}

	pkg := &models.PackageDeclarations{Dir: dir}
	filter := utils.DefaultGoFileFilter()

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if !filter(path, entry) {
			continue
		}

		file, err := r.fileReader.ParseGoFile(path)
		if err != nil {
			return nil, err
		}

		if pkg.Name == "" {
			pkg.Name = file.Name.Name
		} else if file.Name.Name != pkg.Name {
			return nil, fmt.Errorf("multiple packages found in directory %s: %s and %s", dir, pkg.Name, file.Name.Name)
		}

		decls, err := r.declarationsFromFile(file)
		if err != nil {
			return nil, utils.WrapProcessError(path, err)
		}

		pkg.Files = append(pkg.Files, path)
		pkg.Declarations = append(pkg.Declarations, decls...)
	}

	if len(pkg.Files) == 0 {
		return nil, fmt.Errorf("no Go files found in directory %s", dir)
	}

	return pkg, nil
}

// declarationsFromFile collects every type declaration marked with the derive marker
func (r *SourceReader) declarationsFromFile(file *ast.File) ([]models.Declaration, error) {
	imports := fileImports(file)
	var decls []models.Declaration

	for _, d := range file.Decls {
		genDecl, ok := d.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}

		for _, spec := range genDecl.Specs {
			typeSpec := spec.(*ast.TypeSpec)

			doc := typeSpec.Doc
			if doc == nil && len(genDecl.Specs) == 1 {
				doc = genDecl.Doc
			}
			if !hasDeriveMarker(doc) {
				continue
			}

			decl, err := r.buildDeclaration(typeSpec, doc, imports)
			if err != nil {
				return nil, err
			}
			decls = append(decls, decl)
		}
	}

	return decls, nil
}

func (r *SourceReader) buildDeclaration(spec *ast.TypeSpec, doc *ast.CommentGroup, imports map[string]models.ImportSpec) (models.Declaration, error) {
	entries, err := r.entries(doc, spec.Comment)
	if err != nil {
		return models.Declaration{}, err
	}

	decl := models.Declaration{
		Name:        spec.Name.Name,
		NameSpan:    r.span(spec.Name),
		Span:        r.span(spec),
		Kind:        declKind(spec),
		TypeParams:  r.typeParams(spec.TypeParams),
		Annotations: entries,
		Imports:     imports,
	}

	structType, ok := spec.Type.(*ast.StructType)
	if !ok || decl.Kind != models.DeclStruct {
		return decl, nil
	}

	for _, field := range structType.Fields.List {
		fieldEntries, err := r.entries(field.Doc, field.Comment)
		if err != nil {
			return models.Declaration{}, err
		}

		typ := r.typeExpr(field.Type)
		if len(field.Names) == 0 {
			decl.Fields = append(decl.Fields, models.FieldDecl{
				Type:        typ,
				Span:        r.span(field),
				Annotations: fieldEntries,
			})
			continue
		}

		for _, name := range field.Names {
			decl.Fields = append(decl.Fields, models.FieldDecl{
				Name:        name.Name,
				Type:        typ,
				Span:        errors.NewSpan(r.location(name.Pos()), r.location(field.Type.End())),
				Annotations: fieldEntries,
			})
		}
	}

	return decl, nil
}

// entries collects the annotation entries of the given comment groups in source order
func (r *SourceReader) entries(groups ...*ast.CommentGroup) ([]models.AnnotationEntry, error) {
	var entries []models.AnnotationEntry
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			entry, ok, err := annotations.ParseEntry(comment.Text, r.location(comment.Pos()))
			if err != nil {
				return nil, err
			}
			if ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries, nil
}

// typeParams expands grouped parameters such as [K, V any] into one entry per name
func (r *SourceReader) typeParams(list *ast.FieldList) []models.TypeParam {
	if list == nil {
		return nil
	}

	var params []models.TypeParam
	for _, field := range list.List {
		constraint := r.typeExpr(field.Type)
		for _, name := range field.Names {
			params = append(params, models.TypeParam{
				Name:       name.Name,
				Constraint: constraint,
				Span:       r.span(name),
			})
		}
	}
	return params
}

func (r *SourceReader) location(pos token.Pos) errors.SourceLocation {
	p := r.fileReader.GetFileSet().Position(pos)
	return errors.SourceLocation{
		File:   p.Filename,
		Line:   p.Line,
		Column: p.Column,
		Offset: p.Offset,
	}
}

func (r *SourceReader) span(node ast.Node) errors.Span {
	return errors.NewSpan(r.location(node.Pos()), r.location(node.End()))
}

func hasDeriveMarker(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, comment := range doc.List {
		if annotations.IsDeriveMarker(comment.Text) {
			return true
		}
	}
	return false
}

func declKind(spec *ast.TypeSpec) models.DeclKind {
	if spec.Assign.IsValid() {
		return models.DeclAlias
	}
	switch spec.Type.(type) {
	case *ast.StructType:
		return models.DeclStruct
	case *ast.InterfaceType:
		return models.DeclInterface
	default:
		return models.DeclDefined
	}
}

// typeExpr renders a type expression as written, struct tags included, and
// collects the package selectors it uses
func (r *SourceReader) typeExpr(expr ast.Expr) models.TypeExpr {
	var qualifiers []string
	seen := make(map[string]bool)

	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if ident, ok := sel.X.(*ast.Ident); ok && !seen[ident.Name] {
			seen[ident.Name] = true
			qualifiers = append(qualifiers, ident.Name)
		}
		return true
	})

	var buf bytes.Buffer
	// printing into a bytes.Buffer cannot fail
	_ = printer.Fprint(&buf, r.fileReader.GetFileSet(), expr)

	return models.TypeExpr{
		Text:       buf.String(),
		Qualifiers: qualifiers,
	}
}

// fileImports maps each local package name of a file to its import
func fileImports(file *ast.File) map[string]models.ImportSpec {
	imports := make(map[string]models.ImportSpec)
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		if spec.Name != nil {
			if spec.Name.Name == "_" || spec.Name.Name == "." {
				continue
			}
			imports[spec.Name.Name] = models.ImportSpec{Name: spec.Name.Name, Path: path}
			continue
		}

		imports[PackageNameFromPath(path)] = models.ImportSpec{Path: path}
	}
	return imports
}

// PackageNameFromPath guesses the package name an unaliased import binds,
// following the usual conventions: "gopkg.in/yaml.v3" is yaml,
// "github.com/labstack/echo/v4" is echo, "github.com/mattn/go-isatty" is isatty.
func PackageNameFromPath(path string) string {
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]

	if isMajorVersion(name) && len(parts) > 1 {
		name = parts[len(parts)-2]
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}

	name = strings.TrimPrefix(name, "go-")
	name = strings.TrimSuffix(name, "-go")
	name = strings.TrimSuffix(name, ".go")
	return strings.NewReplacer("-", "", ".", "").Replace(name)
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.Atoi(s[1:])
	return err == nil
}
