package templates

// TemplateRegistry provides a centralized way to access all templates
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all templates
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}

	registry.registerFileTemplates()
	registry.registerHelperTemplates()
	registry.registerBuilderTemplates()

	return registry
}

// MustGet retrieves a template by name, panics if not found
func (tr *TemplateRegistry) MustGet(name string) string {
	template, exists := tr.templates[name]
	if !exists {
		panic("template not found: " + name)
	}
	return template
}

func (tr *TemplateRegistry) registerFileTemplates() {
	tr.templates["file-header"] = `{{.Header}}

package {{.PackageName}}
{{- if .ImportGroups}}

import (
{{- range $i, $group := .ImportGroups}}{{if $i}}
{{end}}
{{- range $group}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
{{- end}}
)
{{- end}}
`
}

// registerHelperTemplates registers the runtime helpers shared by every
// builder of a file. Each one is emitted at most once per file.
func (tr *TemplateRegistry) registerHelperTemplates() {
	tr.templates["required-helper"] = `func builderRequired[T any](p *T, name string) T {
	if p == nil {
		panic("required field " + name + " was not set")
	}
	return *p
}
`

	tr.templates["zero-helper"] = `func builderOrZero[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
`
}

func (tr *TemplateRegistry) registerBuilderTemplates() {
	tr.templates["builder-type"] = `// {{.Name}} assembles a {{.Record}} one field at a time.
type {{.Name}}{{.TypeParamList}} struct {
{{- range .Slots}}
	{{.Name}} *{{.Type.Text}}
{{- end}}
}
`

	tr.templates["builder-factory"] = `// {{.Factory.Name}} returns an empty {{.Name}}.
func ({{.RecordType}}) {{.Factory.Name}}() {{.BuilderType}} {
	return {{.BuilderType}}{}
}
`

	tr.templates["builder-constructor"] = `// {{.Constructor.Name}} returns an empty {{.Name}}.
func {{.Constructor.Name}}{{.TypeParamList}}() {{.BuilderType}} {
	return {{.BuilderType}}{}
}
`

	tr.templates["builder-setter"] = `// {{.Setter.Name}} sets {{.Setter.Slot}}.
func (b {{.BuilderType}}) {{.Setter.Name}}(v {{.Setter.Param.Text}}) {{.BuilderType}} {
	b.{{.Setter.Slot}} = &v
	return b
}
`

	tr.templates["builder-finalizer"] = `// {{.Finalizer.Name}} returns the assembled {{.Record}}.
{{- if .HasRequired}}
// It panics if a required field was not set.
{{- end}}
func (b {{.BuilderType}}) {{.Finalizer.Name}}() {{.RecordType}} {
	return {{.RecordType}}{
{{- range .Finalizer.Steps}}
		{{.Field}}: {{if .IsRequired}}builderRequired(b.{{.Slot}}, "{{.Label}}"){{else}}builderOrZero(b.{{.Slot}}){{end}},
{{- end}}
	}
}
`
}

// DefaultTemplateRegistry is the registry used by the generator
var DefaultTemplateRegistry = NewTemplateRegistry()
