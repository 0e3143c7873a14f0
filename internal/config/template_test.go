package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldTemplate(t *testing.T) {
	tests := []struct {
		name        string
		template    string
		index       int
		placeholder string
		want        string
	}{
		{
			name:        "snippet style",
			template:    "${{ .Index }}{{ if .Placeholder }}:{{ .Placeholder }}{{ end }}",
			index:       2,
			placeholder: "x",
			want:        "$2:x",
		},
		{
			name:     "sprig function",
			template: "[{{ .Index | add 10 }}]",
			index:    1,
			want:     "[11]",
		},
		{
			name:        "sprig string function",
			template:    "{{ .Placeholder | upper | default \"_\" }}",
			index:       1,
			placeholder: "abc",
			want:        "ABC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, err := FieldTemplate(tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, field(tt.index, tt.placeholder))
		})
	}
}

func TestFieldTemplateErrors(t *testing.T) {
	for _, text := range []string{
		"{{ .Index",
		"{{ .Missing }}",
		"{{ nosuchfunc .Index }}",
	} {
		_, err := FieldTemplate(text)
		assert.Error(t, err, text)
	}
}
