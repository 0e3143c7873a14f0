package config

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
)

// Field is the data passed to a field template.
type Field struct {
	Index       int
	Placeholder string
}

// FieldTemplate compiles a fieldTemplate setting such as
// "${{ .Index }}{{ if .Placeholder }}:{{ .Placeholder }}{{ end }}" into a
// field function. The template has the sprig function set and is executed
// once with sample data so that runtime errors surface here. A failure at
// expansion time falls back to the snippet field format.
func FieldTemplate(text string) (emmet.FieldFunc, error) {
	tmpl, err := template.New("fieldTemplate").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing field template: %w", err)
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, Field{Index: 1, Placeholder: "value"}); err != nil {
		return nil, fmt.Errorf("executing field template: %w", err)
	}

	return func(index int, placeholder string) string {
		var b strings.Builder
		if err := tmpl.Execute(&b, Field{Index: index, Placeholder: placeholder}); err != nil {
			return emmet.SnippetField(index, placeholder)
		}

		return b.String()
	}, nil
}
