package annotations

import (
	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

// ExtractDirectives parses every builder entry in entries. Entries from other
// namespaces are ignored. Each entry is parsed independently: on failure the
// result is a *errors.MultipleErrors with one diagnostic per bad entry,
// otherwise the directives are returned in entry order, then body order.
func ExtractDirectives(entries []models.AnnotationEntry) ([]models.Directive, error) {
	collector := errors.NewCollector()
	directives := make([]models.Directive, 0)

	for _, entry := range entries {
		if entry.Namespace != models.BuilderNamespace {
			continue
		}

		parsed, err := ParseDirectiveBody(entry.Body, entry.Span)
		if err != nil {
			collector.Extend(err)
			continue
		}
		directives = append(directives, parsed...)
	}

	if err := collector.Finish(); err != nil {
		return nil, err
	}
	return directives, nil
}
