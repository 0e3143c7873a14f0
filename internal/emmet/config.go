// Package emmet implements the abbreviation engine: extraction of an
// abbreviation from a line of text, the markup and stylesheet grammars, and
// the serializers that turn the parsed trees into output text with fields.
//
// Every entry point is a pure function of its inputs. A Config is resolved
// per request and passed explicitly; nothing is cached between calls.
package emmet

import (
	"fmt"
	"strings"
)

// Syntax selects the grammar used for an abbreviation.
type Syntax int

const (
	// SyntaxMarkup expands element abbreviations such as ul>li*3.
	SyntaxMarkup Syntax = iota
	// SyntaxStylesheet expands property abbreviations such as m10+p5.
	SyntaxStylesheet
)

func (s Syntax) String() string {
	switch s {
	case SyntaxMarkup:
		return "markup"
	case SyntaxStylesheet:
		return "stylesheet"
	default:
		return fmt.Sprintf("Syntax(%d)", int(s))
	}
}

// FieldFunc renders a field (tab stop) with the given index and placeholder.
type FieldFunc func(index int, placeholder string) string

// TextFunc transforms literal output text, e.g. to escape snippet syntax.
type TextFunc func(text string) string

// DefaultMaxElements is the default expansion budget of a markup
// abbreviation.
const DefaultMaxElements = 1000

// Self-closing styles for void elements.
const (
	SelfClosingHTML  = "html"
	SelfClosingXHTML = "xhtml"
	SelfClosingXML   = "xml"
)

// Config is the resolved, per-request output configuration.
// Values are only produced by ResolveConfig and must be treated as read-only.
type Config struct {
	Syntax Syntax

	Field FieldFunc
	Text  TextFunc

	Indent           string
	Newline          string
	SelfClosingStyle string
	AttributeQuote   string

	// InlineBreak is the number of inline sibling elements at which an
	// element stops rendering its content on a single line. Zero disables
	// single-line content for elements with element children.
	InlineBreak int

	// NumberPadding left-pads numbering output to the width of the $ run.
	NumberPadding bool

	// MaxElements caps the number of nodes a markup abbreviation may
	// expand to once multipliers are unrolled.
	MaxElements int

	IntUnit   string
	FloatUnit string

	// Between and After surround stylesheet values.
	Between string
	After   string

	voidElements       map[string]bool
	inlineElements     map[string]bool
	unitless           map[string]bool
	unitAliases        map[string]string
	keywordAliases     map[string]string
	markupSnippets     map[string]string
	stylesheetSnippets map[string]string
}

// Overrides carries caller supplied options. Nil and empty values keep the
// built-in default.
type Overrides struct {
	Field FieldFunc
	Text  TextFunc

	Indent           *string
	Newline          *string
	SelfClosingStyle *string
	AttributeQuote   *string
	InlineBreak      *int
	NumberPadding    *bool
	MaxElements      *int
	IntUnit          *string
	FloatUnit        *string

	UnitAliases        map[string]string
	MarkupSnippets     map[string]string
	StylesheetSnippets map[string]string
}

// ConfigError reports an override that was rejected. The option keeps its
// default value.
type ConfigError struct {
	Option string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Option, e.Value, e.Reason)
}

// PlainField is the default field renderer: it only emits the placeholder.
func PlainField(_ int, placeholder string) string {
	return placeholder
}

// SnippetField renders LSP snippet tab stops: ${1} or ${1:placeholder}.
func SnippetField(index int, placeholder string) string {
	if placeholder == "" {
		return fmt.Sprintf("${%d}", index)
	}

	return fmt.Sprintf("${%d:%s}", index, EscapeSnippet(placeholder))
}

var snippetEscaper = strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`)

// EscapeSnippet escapes characters with a meaning in LSP snippet syntax.
func EscapeSnippet(text string) string {
	return snippetEscaper.Replace(text)
}

func identity(s string) string { return s }

// ResolveConfig builds the configuration for one request from the built-in
// defaults and the given overrides. Invalid overrides are reported and
// replaced by their defaults; the returned Config is always usable.
func ResolveConfig(syntax Syntax, ov Overrides) (Config, []error) {
	cfg := Config{
		Syntax:           syntax,
		Field:            PlainField,
		Text:             identity,
		Indent:           "\t",
		Newline:          "\n",
		SelfClosingStyle: SelfClosingHTML,
		AttributeQuote:   `"`,
		InlineBreak:      3,
		NumberPadding:    true,
		MaxElements:      DefaultMaxElements,
		IntUnit:          "px",
		FloatUnit:        "em",
		Between:          ": ",
		After:            ";",

		voidElements:       toSet(voidElementNames),
		inlineElements:     toSet(inlineElementNames),
		unitless:           toSet(unitlessProperties),
		unitAliases:        copyMap(defaultUnitAliases),
		keywordAliases:     copyMap(globalKeywordAliases),
		markupSnippets:     copyMap(markupSnippets),
		stylesheetSnippets: copyMap(stylesheetSnippets),
	}

	var errs []error

	reject := func(option string, value any, reason string) {
		errs = append(errs, &ConfigError{Option: option, Value: value, Reason: reason})
	}

	if ov.Field != nil {
		cfg.Field = ov.Field
	}

	if ov.Text != nil {
		cfg.Text = ov.Text
	}

	if ov.Indent != nil {
		if strings.TrimSpace(*ov.Indent) != "" {
			reject("indent", *ov.Indent, "must contain only whitespace")
		} else {
			cfg.Indent = *ov.Indent
		}
	}

	if ov.Newline != nil {
		switch *ov.Newline {
		case "\n", "\r\n":
			cfg.Newline = *ov.Newline
		default:
			reject("newline", fmt.Sprintf("%q", *ov.Newline), `must be "\n" or "\r\n"`)
		}
	}

	if ov.SelfClosingStyle != nil {
		switch *ov.SelfClosingStyle {
		case SelfClosingHTML, SelfClosingXHTML, SelfClosingXML:
			cfg.SelfClosingStyle = *ov.SelfClosingStyle
		default:
			reject("selfClosingStyle", *ov.SelfClosingStyle, "must be html, xhtml or xml")
		}
	}

	if ov.AttributeQuote != nil {
		switch *ov.AttributeQuote {
		case `"`, `'`:
			cfg.AttributeQuote = *ov.AttributeQuote
		default:
			reject("attributeQuote", *ov.AttributeQuote, "must be a single or double quote")
		}
	}

	if ov.InlineBreak != nil {
		if *ov.InlineBreak < 0 {
			reject("inlineBreak", *ov.InlineBreak, "must not be negative")
		} else {
			cfg.InlineBreak = *ov.InlineBreak
		}
	}

	if ov.NumberPadding != nil {
		cfg.NumberPadding = *ov.NumberPadding
	}

	if ov.MaxElements != nil {
		if *ov.MaxElements < 1 {
			reject("maxElements", *ov.MaxElements, "must be at least 1")
		} else {
			cfg.MaxElements = *ov.MaxElements
		}
	}

	if ov.IntUnit != nil {
		if isUnit(*ov.IntUnit) {
			cfg.IntUnit = *ov.IntUnit
		} else {
			reject("intUnit", *ov.IntUnit, "not a unit")
		}
	}

	if ov.FloatUnit != nil {
		if isUnit(*ov.FloatUnit) {
			cfg.FloatUnit = *ov.FloatUnit
		} else {
			reject("floatUnit", *ov.FloatUnit, "not a unit")
		}
	}

	for alias, unit := range ov.UnitAliases {
		if alias == "" || !isUnit(unit) {
			reject("unitAliases."+alias, unit, "not a unit")
			continue
		}

		cfg.unitAliases[alias] = unit
	}

	for name, abbr := range ov.MarkupSnippets {
		if name == "" || strings.TrimSpace(abbr) == "" {
			reject("snippets.markup."+name, abbr, "empty snippet")
			continue
		}

		cfg.markupSnippets[name] = abbr
	}

	for name, decl := range ov.StylesheetSnippets {
		if name == "" || strings.TrimSpace(decl) == "" {
			reject("snippets.stylesheet."+name, decl, "empty snippet")
			continue
		}

		cfg.stylesheetSnippets[name] = decl
	}

	return cfg, errs
}

// IsVoid reports whether name is rendered as a self-contained tag.
func (c Config) IsVoid(name string) bool {
	return c.voidElements[strings.ToLower(name)]
}

// IsInline reports whether name is an inline-level element.
func (c Config) IsInline(name string) bool {
	return c.inlineElements[strings.ToLower(name)]
}

func (c Config) isUnitless(property string) bool {
	return c.unitless[property]
}

func (c Config) unitAlias(unit string) string {
	if u, ok := c.unitAliases[unit]; ok {
		return u
	}

	return unit
}

func (c Config) markupSnippet(name string) (string, bool) {
	s, ok := c.markupSnippets[name]
	return s, ok
}

func (c Config) stylesheetSnippet(name string) (string, bool) {
	s, ok := c.stylesheetSnippets[name]
	return s, ok
}

func isUnit(s string) bool {
	if s == "" {
		return true
	}

	if s == "%" {
		return true
	}

	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}

	return true
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

var voidElementNames = []string{
	"area", "base", "br", "col", "embed", "hr", "img", "input", "keygen",
	"link", "meta", "param", "source", "track", "wbr",
}

var inlineElementNames = []string{
	"a", "abbr", "acronym", "applet", "b", "basefont", "bdo", "big", "br",
	"button", "cite", "code", "del", "dfn", "em", "font", "i", "iframe",
	"img", "input", "ins", "kbd", "label", "map", "object", "q", "s", "samp",
	"select", "small", "span", "strike", "strong", "sub", "sup", "textarea",
	"tt", "u", "var",
}

var unitlessProperties = []string{
	"z-index", "line-height", "opacity", "font-weight", "zoom", "flex",
	"flex-grow", "flex-shrink", "order", "orphans", "widows",
	"fill-opacity", "stroke-opacity", "animation-iteration-count",
}

var defaultUnitAliases = map[string]string{
	"p": "%",
	"e": "em",
	"x": "ex",
	"r": "rem",
}

var globalKeywordAliases = map[string]string{
	"a":  "auto",
	"i":  "inherit",
	"n":  "none",
	"s":  "solid",
	"da": "dashed",
	"do": "dotted",
	"t":  "transparent",
}
