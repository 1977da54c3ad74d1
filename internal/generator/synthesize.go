package generator

import (
	"go/token"
	"unicode"
	"unicode/utf8"

	"github.com/toyz/buildergen/internal/models"
)

const (
	builderSuffix = "Builder"
	factoryName   = "Builder"
	finalizerName = "Build"
)

// Synthesize derives the builder definition of a validated record.
// It cannot fail: every record descriptor has exactly one builder.
func Synthesize(record *models.RecordDescriptor) *models.BuilderDefinition {
	def := &models.BuilderDefinition{
		Record:      record.Name,
		Name:        record.Name + builderSuffix,
		TypeParams:  record.TypeParams,
		Slots:       make([]models.StorageSlot, 0, len(record.Fields)),
		Factory:     models.FactoryMethod{Name: factoryName},
		Constructor: models.Constructor{Name: "New" + record.Name + builderSuffix},
		Setters:     make([]models.Setter, 0, len(record.Fields)),
		Finalizer: models.Finalizer{
			Name:  finalizerName,
			Steps: make([]models.FinalizeStep, 0, len(record.Fields)),
		},
	}

	for _, field := range record.Fields {
		def.Slots = append(def.Slots, models.StorageSlot{
			Name: field.Name,
			Type: field.Type,
		})

		def.Setters = append(def.Setters, models.Setter{
			Name:  SetterName(field.Name),
			Slot:  field.Name,
			Param: field.Type,
		})

		policy := models.PolicyZero
		if field.IsRequired() {
			policy = models.PolicyRequired
		}
		def.Finalizer.Steps = append(def.Finalizer.Steps, models.FinalizeStep{
			Field:  field.Name,
			Slot:   field.Name,
			Policy: policy,
			Label:  record.Name + "." + field.Name,
		})
	}

	return def
}

// SetterName returns the setter for a field: WithName for exported fields,
// withName for unexported ones, so the setter keeps the field's visibility
func SetterName(field string) string {
	if token.IsExported(field) {
		return "With" + field
	}

	r, size := utf8.DecodeRuneInString(field)
	return "with" + string(unicode.ToUpper(r)) + field[size:]
}
