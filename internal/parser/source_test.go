package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/models"
)

const catalogSource = `package catalog

import (
	"time"

	uuidpkg "github.com/google/uuid"
	_ "embed"
)

// Item is a catalog item.
//
//builder:derive
type Item[T any, K comparable] struct {
	//builder(required)
	ID    uuidpkg.UUID
	Name  string //builder(required)
	Tags  []string
	Added time.Time
	Meta  map[K]T
	a, b  int
}

// Plain has no marker.
type Plain struct{ X int }

//builder:derive
type Shape interface{ Area() float64 }

//builder:derive
type Alias = Plain

type (
	// Pair holds two values.
	//
	//builder:derive
	Pair[K, V any] struct {
		Key   K
		Value V
	}

	Ignored struct{}
)
`

func parseCatalog(t *testing.T) *models.PackageDeclarations {
	t.Helper()
	pkg, err := NewSourceReader().ParseSource("catalog.go", catalogSource)
	require.NoError(t, err)
	return pkg
}

func TestParseSource_MarkedDeclarations(t *testing.T) {
	pkg := parseCatalog(t)

	assert.Equal(t, "catalog", pkg.Name)
	assert.Equal(t, []string{"catalog.go"}, pkg.Files)

	names := make([]string, 0, len(pkg.Declarations))
	for _, decl := range pkg.Declarations {
		names = append(names, decl.Name)
	}
	assert.Equal(t, []string{"Item", "Shape", "Alias", "Pair"}, names)

	assert.Equal(t, models.DeclStruct, pkg.Declarations[0].Kind)
	assert.Equal(t, models.DeclInterface, pkg.Declarations[1].Kind)
	assert.Equal(t, models.DeclAlias, pkg.Declarations[2].Kind)
	assert.Equal(t, models.DeclStruct, pkg.Declarations[3].Kind)
}

func TestParseSource_Fields(t *testing.T) {
	item := parseCatalog(t).Declarations[0]

	assert.Equal(t, 13, item.NameSpan.Start.Line)
	assert.Equal(t, 6, item.NameSpan.Start.Column)
	assert.Empty(t, item.Annotations)

	require.Len(t, item.Fields, 7)

	id := item.Fields[0]
	assert.Equal(t, "ID", id.Name)
	assert.Equal(t, "uuidpkg.UUID", id.Type.Text)
	assert.Equal(t, []string{"uuidpkg"}, id.Type.Qualifiers)
	assert.Equal(t, 15, id.Span.Start.Line)
	require.Len(t, id.Annotations, 1)
	assert.Equal(t, models.BuilderNamespace, id.Annotations[0].Namespace)
	assert.Equal(t, 14, id.Annotations[0].Span.Start.Line)

	name := item.Fields[1]
	assert.Equal(t, "Name", name.Name)
	require.Len(t, name.Annotations, 1)
	assert.Equal(t, 16, name.Annotations[0].Span.Start.Line)

	assert.Equal(t, "[]string", item.Fields[2].Type.Text)
	assert.Empty(t, item.Fields[2].Annotations)
	assert.Equal(t, []string{"time"}, item.Fields[3].Type.Qualifiers)
	assert.Equal(t, "map[K]T", item.Fields[4].Type.Text)

	assert.Equal(t, "a", item.Fields[5].Name)
	assert.Equal(t, "b", item.Fields[6].Name)
	assert.Equal(t, "int", item.Fields[6].Type.Text)
}

func TestParseSource_TypeParams(t *testing.T) {
	pkg := parseCatalog(t)

	item := pkg.Declarations[0]
	require.Len(t, item.TypeParams, 2)
	assert.Equal(t, "T", item.TypeParams[0].Name)
	assert.Equal(t, "any", item.TypeParams[0].Constraint.Text)
	assert.Equal(t, "K", item.TypeParams[1].Name)
	assert.Equal(t, "comparable", item.TypeParams[1].Constraint.Text)

	pair := pkg.Declarations[3]
	require.Len(t, pair.TypeParams, 2)
	assert.Equal(t, "K", pair.TypeParams[0].Name)
	assert.Equal(t, "V", pair.TypeParams[1].Name)
	assert.Equal(t, "any", pair.TypeParams[1].Constraint.Text)
	assert.Equal(t, "[K any, V any]", models.TypeParamList(pair.TypeParams))
}

func TestParseSource_Imports(t *testing.T) {
	item := parseCatalog(t).Declarations[0]

	require.Len(t, item.Imports, 2)
	assert.Equal(t, models.ImportSpec{Path: "time"}, item.Imports["time"])
	assert.Equal(t, models.ImportSpec{Name: "uuidpkg", Path: "github.com/google/uuid"}, item.Imports["uuidpkg"])
}

func TestParseSource_EndToEnd(t *testing.T) {
	pkg := parseCatalog(t)

	records, err := ParseRecords(pkg.Declarations)
	require.Error(t, err)
	require.Len(t, records, 2)

	item := records[0]
	assert.Equal(t, "Item", item.Name)
	assert.True(t, item.Fields[0].IsRequired())
	assert.True(t, item.Fields[1].IsRequired())
	assert.False(t, item.Fields[2].IsRequired())

	diags := diagnosticsOf(t, err)
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "`Shape` is an interface type")
	assert.Contains(t, diags[1].Message, "`Alias` is a type alias")
}

func TestParseSource_InvalidGo(t *testing.T) {
	_, err := NewSourceReader().ParseSource("broken.go", "package broken\ntype X struct {")
	assert.Error(t, err)
}

func TestParseDirectory(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	write("model.go", "package shop\n\n//builder:derive\ntype Order struct {\n\tID int //builder(required)\n}\n")
	write("other.go", "package shop\n\n//builder:derive\ntype Line struct{ Qty int }\n")
	write("model_test.go", "package shop\n\n//builder:derive\ntype Fixture struct{}\n")
	write("autogen_builder.go", "package shop\n\n//builder:derive\ntype Generated struct{}\n")
	write("README.md", "not go")

	pkg, err := NewSourceReader().ParseDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, "shop", pkg.Name)
	assert.Len(t, pkg.Files, 2)

	names := make([]string, 0, len(pkg.Declarations))
	for _, decl := range pkg.Declarations {
		names = append(names, decl.Name)
	}
	assert.ElementsMatch(t, []string{"Order", "Line"}, names)
}

func TestParseDirectory_Errors(t *testing.T) {
	t.Run("no go files", func(t *testing.T) {
		_, err := NewSourceReader().ParseDirectory(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("mixed packages", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.go"), []byte("package a\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.go"), []byte("package b\n"), 0o644))

		_, err := NewSourceReader().ParseDirectory(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple packages")
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewSourceReader().ParseDirectory(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})
}

func TestPackageNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"time", "time"},
		{"encoding/json", "json"},
		{"github.com/google/uuid", "uuid"},
		{"github.com/labstack/echo/v4", "echo"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/mattn/go-isatty", "isatty"},
		{"github.com/romdo/go-debounce", "debounce"},
		{"github.com/vmihailenco/msgpack/v5", "msgpack"},
		{"github.com/go-playground/validator/v10", "validator"},
		{"github.com/bmatcuk/doublestar/v4", "doublestar"},
		{"github.com/example/client-go", "client"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, PackageNameFromPath(tt.path))
		})
	}
}
