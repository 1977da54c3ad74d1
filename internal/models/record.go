package models

import "github.com/toyz/buildergen/internal/errors"

// DirectiveKind identifies a recognized builder directive
type DirectiveKind int

const (
	// DirectiveRequired marks a field that must be set before Build
	DirectiveRequired DirectiveKind = iota
)

// String returns the directive keyword
func (k DirectiveKind) String() string {
	switch k {
	case DirectiveRequired:
		return "required"
	default:
		return "unknown"
	}
}

// Directive is one parsed generation instruction
type Directive struct {
	Kind DirectiveKind
	Span errors.Span // span of the keyword token
}

// RecordDescriptor is a validated struct declaration ready for synthesis
type RecordDescriptor struct {
	Name       string                // record type name
	TypeParams []TypeParam           // generic parameters in declaration order
	Fields     []Field               // fields in declaration order
	Span       errors.Span           // span of the declaration
	Imports    map[string]ImportSpec // imports of the declaring file
}

// Field is one named record field with its directives
type Field struct {
	Name       string      // field name
	Type       TypeExpr    // declared type
	Directives []Directive // directives in source order
	Span       errors.Span // span of the field
}

// IsRequired reports whether the field carries the required directive
func (f Field) IsRequired() bool {
	return f.Has(DirectiveRequired)
}

// Has reports whether the field carries a directive of the given kind
func (f Field) Has(kind DirectiveKind) bool {
	for _, d := range f.Directives {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
