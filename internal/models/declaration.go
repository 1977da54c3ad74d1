package models

import (
	"strings"

	"github.com/toyz/buildergen/internal/errors"
)

// DeclKind represents the shape of a type declaration
type DeclKind int

const (
	DeclStruct DeclKind = iota
	DeclInterface
	DeclAlias
	DeclDefined
)

// String returns the string representation of the declaration kind
func (k DeclKind) String() string {
	switch k {
	case DeclStruct:
		return "struct type"
	case DeclInterface:
		return "interface type"
	case DeclAlias:
		return "type alias"
	default:
		return "defined type"
	}
}

// TypeExpr is a type expression as written in source
type TypeExpr struct {
	Text       string   // canonical source text, e.g. "map[string]time.Duration"
	Qualifiers []string // package selectors used by Text, e.g. ["time"]
}

// String returns the type expression text
func (t TypeExpr) String() string {
	return t.Text
}

// TypeParam is one generic type parameter of a declaration
type TypeParam struct {
	Name       string      // parameter name
	Constraint TypeExpr    // constraint expression
	Span       errors.Span // where the parameter is declared
}

// ImportSpec is an import visible from the declaring file
type ImportSpec struct {
	Name string // explicit alias, empty when the package name is used
	Path string // import path
}

// Declaration is a raw candidate type declaration handed to the record builder
type Declaration struct {
	Name        string                // declared type name
	NameSpan    errors.Span           // span of the name identifier
	Span        errors.Span           // span of the whole declaration
	Kind        DeclKind              // declaration shape
	TypeParams  []TypeParam           // generic parameters in order
	Annotations []AnnotationEntry     // entries attached to the declaration itself
	Fields      []FieldDecl           // struct fields in order (struct kinds only)
	Imports     map[string]ImportSpec // imports of the declaring file keyed by local name
}

// FieldDecl is a raw struct field
type FieldDecl struct {
	Name        string            // field name, empty for an embedded field
	Type        TypeExpr          // declared type
	Span        errors.Span       // span of the field
	Annotations []AnnotationEntry // entries attached to the field
}

// IsEmbedded reports whether the field has no name
func (f FieldDecl) IsEmbedded() bool {
	return f.Name == ""
}

// TypeParamList renders params as a declaration list, e.g. "[T any, K comparable]".
// A lone parameter whose constraint starts with * or ( keeps a trailing comma,
// otherwise "type B[T *int] struct" parses as an array type.
func TypeParamList(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + " " + p.Constraint.Text
	}
	list := strings.Join(parts, ", ")
	if len(params) == 1 && strings.IndexAny(params[0].Constraint.Text, "*(") == 0 {
		list += ","
	}
	return "[" + list + "]"
}

// TypeArgList renders params as an instantiation list, e.g. "[T, K]"
func TypeArgList(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return "[" + strings.Join(names, ", ") + "]"
}
