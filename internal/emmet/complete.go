package emmet

import (
	"fmt"
	"slices"
)

// DefaultStylesheetLanguages are the language ids expanded with the
// stylesheet grammar when the caller does not configure a list.
var DefaultStylesheetLanguages = []string{"css", "scss", "less", "sass", "stylus"}

// Request is one completion request against a single line.
type Request struct {
	Line     string
	Cursor   int
	Language string

	// StylesheetLanguages overrides DefaultStylesheetLanguages when non-nil.
	StylesheetLanguages []string

	Overrides Overrides
}

// Candidate is the single completion produced for a request. Start and End
// are rune offsets within the line.
type Candidate struct {
	Label         string
	Detail        string
	Documentation string
	Start         int
	End           int
	NewText       string
	Snippet       bool
	Syntax        Syntax

	// Warnings lists overrides that were rejected while resolving the
	// configuration.
	Warnings []error
}

// SyntaxFor picks the grammar for a language id.
func SyntaxFor(language string, stylesheetLanguages []string) Syntax {
	if stylesheetLanguages == nil {
		stylesheetLanguages = DefaultStylesheetLanguages
	}

	if slices.Contains(stylesheetLanguages, language) {
		return SyntaxStylesheet
	}

	return SyntaxMarkup
}

// Expand parses and renders an abbreviation with the grammar selected by
// cfg.Syntax.
func Expand(abbr string, cfg Config) (string, error) {
	switch cfg.Syntax {
	case SyntaxStylesheet:
		sheet, err := ParseStylesheet(abbr, cfg)
		if err != nil {
			return "", err
		}

		return StringifyStylesheet(sheet, cfg), nil
	default:
		tree, err := ParseMarkup(abbr, cfg)
		if err != nil {
			return "", err
		}

		return StringifyMarkup(tree, cfg), nil
	}
}

// Complete expands the abbreviation ending at the cursor. It returns nil
// and no error when there is nothing to expand, and nil with the parse
// error when the abbreviation is malformed. Output uses snippet tab stops
// unless the overrides supply their own field function.
func Complete(req Request) (candidate *Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			candidate = nil
			err = fmt.Errorf("emmet: expanding %q: %v", req.Line, r)
		}
	}()

	syntax := SyntaxFor(req.Language, req.StylesheetLanguages)

	span, ok := Extract(req.Line, req.Cursor, syntax)
	if !ok {
		return nil, nil
	}

	ov := req.Overrides
	if ov.Field == nil {
		ov.Field = SnippetField
	}

	if ov.Text == nil {
		ov.Text = EscapeSnippet
	}

	cfg, warnings := ResolveConfig(syntax, ov)

	text, err := Expand(span.Abbreviation, cfg)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		Label:         span.Abbreviation,
		Detail:        span.Abbreviation,
		Documentation: text,
		Start:         span.Start,
		End:           span.End,
		NewText:       text,
		Snippet:       true,
		Syntax:        syntax,
		Warnings:      warnings,
	}, nil
}
