// Package config loads the server settings: built-in defaults, an optional
// settings file and the "emmet" section of the client's LSP settings, in
// that order. Every option is validated on its own; an invalid option is
// dropped and its default kept.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/gjson"

	"github.com/CWBudde/go-emmet-lsp/internal/emmet"
)

// Namespace is the key of this server's section in the LSP settings.
const Namespace = "emmet"

// Settings is the merged, validated configuration.
type Settings struct {
	StylesheetLanguages []string          `koanf:"stylesheetLanguages"`
	ExcludeLanguages    []string          `koanf:"excludeLanguages"`
	Indent              string            `koanf:"indent"`
	SelfClosingStyle    string            `koanf:"selfClosingStyle"`
	AttributeQuotes     string            `koanf:"attributeQuotes"`
	InlineBreak         int               `koanf:"inlineBreak"`
	NumberPadding       bool              `koanf:"numberPadding"`
	MaxElements         int               `koanf:"maxElements"`
	IntUnit             string            `koanf:"intUnit"`
	FloatUnit           string            `koanf:"floatUnit"`
	UnitAliases         map[string]string `koanf:"unitAliases"`
	FieldTemplate       string            `koanf:"fieldTemplate"`
	HoverPreview        bool              `koanf:"hoverPreview"`
	Snippets            Snippets          `koanf:"snippets"`
	Trace               string            `koanf:"trace"`
}

// Snippets holds user snippet tables keyed by abbreviation.
type Snippets struct {
	Markup     map[string]string `koanf:"markup"`
	Stylesheet map[string]string `koanf:"stylesheet"`
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		StylesheetLanguages: slices.Clone(emmet.DefaultStylesheetLanguages),
		Indent:              "\t",
		SelfClosingStyle:    emmet.SelfClosingHTML,
		AttributeQuotes:     "double",
		InlineBreak:         3,
		NumberPadding:       true,
		MaxElements:         emmet.DefaultMaxElements,
		IntUnit:             "px",
		FloatUnit:           "em",
		Trace:               "off",
	}
}

// Excluded reports whether completions are disabled for a language id.
func (s *Settings) Excluded(language string) bool {
	return slices.Contains(s.ExcludeLanguages, language)
}

// Overrides converts the settings into engine overrides. A field template
// that does not compile is reported and skipped.
func (s *Settings) Overrides() (emmet.Overrides, []error) {
	var errs []error

	quote := `"`
	if s.AttributeQuotes == "single" {
		quote = "'"
	}

	ov := emmet.Overrides{
		Indent:             &s.Indent,
		SelfClosingStyle:   &s.SelfClosingStyle,
		AttributeQuote:     &quote,
		InlineBreak:        &s.InlineBreak,
		NumberPadding:      &s.NumberPadding,
		MaxElements:        &s.MaxElements,
		IntUnit:            &s.IntUnit,
		FloatUnit:          &s.FloatUnit,
		UnitAliases:        s.UnitAliases,
		MarkupSnippets:     s.Snippets.Markup,
		StylesheetSnippets: s.Snippets.Stylesheet,
	}

	if s.FieldTemplate != "" {
		field, err := FieldTemplate(s.FieldTemplate)
		if err != nil {
			errs = append(errs, &OptionError{Option: "fieldTemplate", Reason: err.Error()})
		} else {
			ov.Field = field
		}
	}

	return ov, errs
}

// Loader merges settings from a file and from the client. The file is read
// again on every Load so edits apply on the next configuration change.
type Loader struct {
	path   string
	parser koanf.Parser
}

// NewLoader checks that the settings file at path can be loaded. An empty
// path means no file.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	if path == "" {
		return l, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		l.parser = yaml.Parser()
	case ".toml":
		l.parser = toml.Parser()
	case ".json":
		l.parser = kjson.Parser()
	default:
		return nil, fmt.Errorf("unsupported settings format: %s", ext)
	}

	if err := koanf.New(".").Load(file.Provider(path), l.parser); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	return l, nil
}

// Load returns the merged settings. lsp is the raw settings value sent by
// the client (any JSON-compatible value, nil when absent). Rejected options
// are returned as warnings; the error is only set when a source cannot be
// parsed at all.
func (l *Loader) Load(lsp any) (*Settings, []error, error) {
	k := koanf.New(".")

	if l.path != "" {
		if err := k.Load(file.Provider(l.path), l.parser); err != nil {
			return nil, nil, fmt.Errorf("failed to load %s: %w", l.path, err)
		}
	}

	section, err := namespace(lsp)
	if err != nil {
		return nil, nil, err
	}

	if section != nil {
		if err := k.Load(rawbytes.Provider(section), kjson.Parser()); err != nil {
			return nil, nil, fmt.Errorf("failed to load client settings: %w", err)
		}
	}

	warnings, err := validate(k)
	if err != nil {
		return nil, warnings, err
	}

	// Decode the list over nil so a shorter client list replaces the default
	// instead of overwriting its first entries.
	s := Default()
	s.StylesheetLanguages = nil

	if err := k.Unmarshal("", s); err != nil {
		return nil, warnings, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	if s.StylesheetLanguages == nil {
		s.StylesheetLanguages = slices.Clone(emmet.DefaultStylesheetLanguages)
	}

	return s, warnings, nil
}

// namespace extracts the "emmet" object from the client settings. Other
// sections are ignored.
func namespace(lsp any) ([]byte, error) {
	if lsp == nil {
		return nil, nil
	}

	raw, err := json.Marshal(lsp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode client settings: %w", err)
	}

	section := gjson.GetBytes(raw, Namespace)
	if section.Exists() {
		if !section.IsObject() {
			return nil, &OptionError{Option: Namespace, Reason: "not an object"}
		}

		return []byte(section.Raw), nil
	}

	if gjson.ParseBytes(raw).IsObject() {
		return nil, nil
	}

	return nil, &OptionError{Option: Namespace, Reason: "client settings are not an object"}
}
