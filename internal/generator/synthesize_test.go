package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/buildergen/internal/models"
)

func required() []models.Directive {
	return []models.Directive{{Kind: models.DirectiveRequired}}
}

func TestSynthesize(t *testing.T) {
	record := &models.RecordDescriptor{
		Name: "Order",
		TypeParams: []models.TypeParam{
			{Name: "T", Constraint: models.TypeExpr{Text: "any"}},
		},
		Fields: []models.Field{
			{Name: "ID", Type: models.TypeExpr{Text: "int"}, Directives: required()},
			{Name: "Items", Type: models.TypeExpr{Text: "[]T"}, Directives: []models.Directive{}},
			{Name: "note", Type: models.TypeExpr{Text: "string"}, Directives: required()},
		},
	}

	def := Synthesize(record)

	assert.Equal(t, "Order", def.Record)
	assert.Equal(t, "OrderBuilder", def.Name)
	assert.Equal(t, record.TypeParams, def.TypeParams)
	assert.Equal(t, "Builder", def.Factory.Name)
	assert.Equal(t, "NewOrderBuilder", def.Constructor.Name)
	assert.Equal(t, "Build", def.Finalizer.Name)
	assert.Equal(t, "OrderBuilder[T]", def.BuilderType())
	assert.Equal(t, "Order[T]", def.RecordType())
	assert.True(t, def.HasRequired())

	assert.Equal(t, []models.StorageSlot{
		{Name: "ID", Type: models.TypeExpr{Text: "int"}},
		{Name: "Items", Type: models.TypeExpr{Text: "[]T"}},
		{Name: "note", Type: models.TypeExpr{Text: "string"}},
	}, def.Slots)

	assert.Equal(t, []models.Setter{
		{Name: "WithID", Slot: "ID", Param: models.TypeExpr{Text: "int"}},
		{Name: "WithItems", Slot: "Items", Param: models.TypeExpr{Text: "[]T"}},
		{Name: "withNote", Slot: "note", Param: models.TypeExpr{Text: "string"}},
	}, def.Setters)

	assert.Equal(t, []models.FinalizeStep{
		{Field: "ID", Slot: "ID", Policy: models.PolicyRequired, Label: "Order.ID"},
		{Field: "Items", Slot: "Items", Policy: models.PolicyZero, Label: "Order.Items"},
		{Field: "note", Slot: "note", Policy: models.PolicyRequired, Label: "Order.note"},
	}, def.Finalizer.Steps)
}

func TestSynthesize_RepeatedRequiredIsIdempotent(t *testing.T) {
	record := &models.RecordDescriptor{
		Name: "Tag",
		Fields: []models.Field{
			{Name: "Name", Type: models.TypeExpr{Text: "string"}, Directives: append(required(), required()...)},
		},
	}

	def := Synthesize(record)
	require.Len(t, def.Finalizer.Steps, 1)
	assert.Equal(t, models.PolicyRequired, def.Finalizer.Steps[0].Policy)
}

func TestSynthesize_EmptyRecord(t *testing.T) {
	def := Synthesize(&models.RecordDescriptor{Name: "Empty"})

	assert.Equal(t, "EmptyBuilder", def.BuilderType())
	assert.Empty(t, def.Slots)
	assert.Empty(t, def.Setters)
	assert.Empty(t, def.Finalizer.Steps)
	assert.False(t, def.HasRequired())
}

func TestSetterName(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"Name", "WithName"},
		{"ID", "WithID"},
		{"name", "withName"},
		{"createdAt", "withCreatedAt"},
		{"x", "withX"},
		{"_private", "with_private"},
		{"éclair", "withÉclair"},
		{"Émile", "WithÉmile"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, SetterName(tt.field))
		})
	}
}
