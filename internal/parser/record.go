package parser

import (
	"fmt"

	"github.com/toyz/buildergen/internal/annotations"
	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

// ParseRecord validates one candidate declaration and builds its record descriptor.
//
// An unsupported shape fails at once with a single diagnostic. Otherwise every
// misplaced directive and every malformed field directive is collected, and the
// descriptor is only returned when none were found.
func ParseRecord(decl models.Declaration) (*models.RecordDescriptor, error) {
	if err := checkShape(decl); err != nil {
		return nil, err
	}

	collector := errors.NewCollector()
	rejectRecordDirectives(decl.Annotations, collector)

	fields := make([]models.Field, 0, len(decl.Fields))
	for _, fd := range decl.Fields {
		directives, err := annotations.ExtractDirectives(fd.Annotations)
		if err != nil {
			collector.Extend(err)
			directives = []models.Directive{}
		}

		fields = append(fields, models.Field{
			Name:       fd.Name,
			Type:       fd.Type,
			Directives: directives,
			Span:       fd.Span,
		})
	}

	if err := collector.Finish(); err != nil {
		return nil, err
	}

	return &models.RecordDescriptor{
		Name:       decl.Name,
		TypeParams: decl.TypeParams,
		Fields:     fields,
		Span:       decl.Span,
		Imports:    decl.Imports,
	}, nil
}

// ParseRecords parses every declaration independently. Descriptors for the
// valid declarations are returned alongside the diagnostics of the others.
func ParseRecords(decls []models.Declaration) ([]*models.RecordDescriptor, error) {
	collector := errors.NewCollector()
	records := make([]*models.RecordDescriptor, 0, len(decls))

	for _, decl := range decls {
		record, err := ParseRecord(decl)
		if err != nil {
			collector.Extend(err)
			continue
		}
		records = append(records, record)
	}

	return records, collector.Finish()
}

// checkShape rejects declarations that cannot carry a builder
func checkShape(decl models.Declaration) error {
	collector := errors.NewCollector()

	if decl.Kind != models.DeclStruct {
		collector.Addf(decl.NameSpan, errors.StructuralErrorCode,
			"can only generate a builder for a struct type, `%s` is %s", decl.Name, article(decl.Kind)).
			WithHint(fmt.Sprintf("remove the %s marker from `%s`", annotations.DeriveMarker, decl.Name))
		return collector.Finish()
	}

	for _, field := range decl.Fields {
		if field.IsEmbedded() {
			collector.Add(field.Span, errors.StructuralErrorCode, "only named fields are supported").
				WithHint(fmt.Sprintf("give the embedded %s field a name", field.Type.Text))
			return collector.Finish()
		}
		if field.Name == "_" {
			collector.Add(field.Span, errors.StructuralErrorCode, "only named fields are supported").
				WithHint("a blank field cannot be assigned by a builder")
			return collector.Finish()
		}
	}

	return collector.Finish()
}

// rejectRecordDirectives reports every directive attached to the record itself.
// Entries are extracted one at a time so a malformed entry does not hide the
// misplaced directives of its siblings.
func rejectRecordDirectives(entries []models.AnnotationEntry, collector *errors.Collector) {
	for _, entry := range entries {
		directives, err := annotations.ExtractDirectives([]models.AnnotationEntry{entry})
		if err != nil {
			collector.Extend(err)
			continue
		}
		for _, d := range directives {
			collector.Addf(d.Span, errors.MisplacedDirectiveErrorCode, "`%s` is only valid on a field", d.Kind).
				WithHint("move the directive to the doc comment of the field it applies to")
		}
	}
}

func article(kind models.DeclKind) string {
	switch kind {
	case models.DeclInterface:
		return "an interface type"
	case models.DeclAlias:
		return "a type alias"
	default:
		return "a defined type"
	}
}
