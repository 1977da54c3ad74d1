package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeParamLists(t *testing.T) {
	params := []TypeParam{
		{Name: "K", Constraint: TypeExpr{Text: "comparable"}},
		{Name: "V", Constraint: TypeExpr{Text: "fmt.Stringer", Qualifiers: []string{"fmt"}}},
	}

	assert.Equal(t, "[K comparable, V fmt.Stringer]", TypeParamList(params))
	assert.Equal(t, "[K, V]", TypeArgList(params))
	assert.Equal(t, "", TypeParamList(nil))
	assert.Equal(t, "", TypeArgList(nil))
}

func TestTypeParamList_AmbiguousConstraint(t *testing.T) {
	tests := []struct {
		constraint string
		want       string
	}{
		{"*int", "[T *int,]"},
		{"*int | *string", "[T *int | *string,]"},
		{"(int)", "[T (int),]"},
		{"~int", "[T ~int]"},
		{"interface{ *int }", "[T interface{ *int }]"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			params := []TypeParam{{Name: "T", Constraint: TypeExpr{Text: tt.constraint}}}
			assert.Equal(t, tt.want, TypeParamList(params))
		})
	}

	two := []TypeParam{
		{Name: "T", Constraint: TypeExpr{Text: "*int"}},
		{Name: "U", Constraint: TypeExpr{Text: "any"}},
	}
	assert.Equal(t, "[T *int, U any]", TypeParamList(two))
}

func TestField_IsRequired(t *testing.T) {
	plain := Field{Name: "Label", Type: TypeExpr{Text: "string"}}
	assert.False(t, plain.IsRequired())

	required := Field{Name: "ID", Directives: []Directive{{Kind: DirectiveRequired}}}
	assert.True(t, required.IsRequired())
	assert.Equal(t, "required", DirectiveRequired.String())
}

func TestBuilderDefinition_Types(t *testing.T) {
	def := &BuilderDefinition{
		Record:     "Pair",
		Name:       "PairBuilder",
		TypeParams: []TypeParam{{Name: "T", Constraint: TypeExpr{Text: "any"}}},
		Finalizer: Finalizer{Steps: []FinalizeStep{
			{Field: "A", Policy: PolicyZero},
			{Field: "B", Policy: PolicyRequired},
		}},
	}

	assert.Equal(t, "[T any]", def.TypeParamList())
	assert.Equal(t, "PairBuilder[T]", def.BuilderType())
	assert.Equal(t, "Pair[T]", def.RecordType())
	assert.True(t, def.HasRequired())

	def.TypeParams = nil
	assert.Equal(t, "PairBuilder", def.BuilderType())
}

func TestAnnotationEntry_BodyText(t *testing.T) {
	entry := AnnotationEntry{
		Namespace: BuilderNamespace,
		Body: []Token{
			{Kind: TokenPunct, Text: "("},
			{Kind: TokenIdent, Text: "required"},
			{Kind: TokenPunct, Text: ")"},
		},
	}
	assert.Equal(t, "( required )", entry.BodyText())
	assert.True(t, entry.Body[1].Is("required"))
	assert.Equal(t, "identifier", TokenIdent.String())
}

func TestDeclKind_String(t *testing.T) {
	assert.Equal(t, "struct type", DeclStruct.String())
	assert.Equal(t, "interface type", DeclInterface.String())
	assert.Equal(t, "type alias", DeclAlias.String())
	assert.Equal(t, "defined type", DeclDefined.String())
}
