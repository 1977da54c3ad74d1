package templates

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/toyz/buildergen/internal/errors"
	"github.com/toyz/buildergen/internal/models"
)

// FileData is the input of the file-header template
type FileData struct {
	Header       string
	PackageName  string
	ImportGroups [][]models.ImportSpec // rendered as blank-line separated blocks
}

type setterData struct {
	BuilderType string
	Setter      models.Setter
}

// RenderFile renders a complete, unformatted builder file: the header, the
// runtime helpers the builders need, then every builder in order
func RenderFile(data FileData, builders []*models.BuilderDefinition) (string, error) {
	header, err := executeTemplate("file-header", DefaultTemplateRegistry.MustGet("file-header"), data)
	if err != nil {
		return "", err
	}

	sections := []string{header}

	needsRequired, needsZero := helpersFor(builders)
	if needsRequired {
		section, err := executeTemplate("required-helper", DefaultTemplateRegistry.MustGet("required-helper"), nil)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}
	if needsZero {
		section, err := executeTemplate("zero-helper", DefaultTemplateRegistry.MustGet("zero-helper"), nil)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}

	for _, def := range builders {
		section, err := RenderBuilder(def)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}

	return strings.Join(sections, "\n"), nil
}

// RenderBuilder renders the type, factory, constructor, setters and
// finalizer of one builder
func RenderBuilder(def *models.BuilderDefinition) (string, error) {
	var sections []string

	for _, name := range []string{"builder-type", "builder-factory", "builder-constructor"} {
		section, err := executeTemplate(name, DefaultTemplateRegistry.MustGet(name), def)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}

	for _, setter := range def.Setters {
		data := setterData{BuilderType: def.BuilderType(), Setter: setter}
		section, err := executeTemplate("builder-setter", DefaultTemplateRegistry.MustGet("builder-setter"), data)
		if err != nil {
			return "", err
		}
		sections = append(sections, section)
	}

	section, err := executeTemplate("builder-finalizer", DefaultTemplateRegistry.MustGet("builder-finalizer"), def)
	if err != nil {
		return "", err
	}
	sections = append(sections, section)

	return strings.Join(sections, "\n"), nil
}

// helpersFor reports which runtime helpers the builders reference
func helpersFor(builders []*models.BuilderDefinition) (required, zero bool) {
	for _, def := range builders {
		for _, step := range def.Finalizer.Steps {
			if step.IsRequired() {
				required = true
			} else {
				zero = true
			}
		}
	}
	return required, zero
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return "", errors.WrapTemplateError(name, "parse", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}
