package config

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// SchemaJSON returns the JSON Schema for the settings.
func SchemaJSON() string {
	return schemaJSON
}

var schema = mustSchema()

func mustSchema() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}

	return s
}

// OptionError reports a setting that failed validation and was dropped.
type OptionError struct {
	Option string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("setting %s ignored: %s", e.Option, e.Reason)
}

// validate checks the merged settings against the schema and deletes every
// offending option so that its default applies.
func validate(k *koanf.Koanf) ([]error, error) {
	var errs []error

	// Each pass removes at least one option, so the loop terminates.
	for range len(k.Keys()) + 1 {
		result, err := schema.Validate(gojsonschema.NewGoLoader(k.Raw()))
		if err != nil {
			return errs, fmt.Errorf("validating settings: %w", err)
		}

		if result.Valid() {
			return errs, nil
		}

		for _, re := range result.Errors() {
			option := optionPath(re.Field())
			if option == "" {
				return errs, fmt.Errorf("settings: %s", re.Description())
			}

			if k.Exists(option) {
				k.Delete(option)
				errs = append(errs, &OptionError{Option: option, Reason: re.Description()})
			}
		}
	}

	return errs, fmt.Errorf("settings did not validate")
}

// optionPath maps a schema error location to the option that owns it:
// "stylesheetLanguages.0" belongs to "stylesheetLanguages", and entries of
// the map options are dropped one by one.
func optionPath(field string) string {
	if field == "" || field == "(root)" {
		return ""
	}

	parts := strings.Split(field, ".")

	switch {
	case parts[0] == "snippets":
		return strings.Join(parts[:min(len(parts), 3)], ".")
	case parts[0] == "unitAliases" && len(parts) >= 2:
		return strings.Join(parts[:2], ".")
	default:
		return parts[0]
	}
}
