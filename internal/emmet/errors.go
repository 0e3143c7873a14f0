package emmet

import "fmt"

// ParseError reports a malformed abbreviation. Pos is the rune offset of the
// offending character within Abbreviation.
type ParseError struct {
	Abbreviation string
	Pos          int
	Msg          string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed abbreviation %q at %d: %s", e.Abbreviation, e.Pos, e.Msg)
}

func errorAt(pos int, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// withSource fills in the abbreviation text on errors produced by the lexer
// and parser, which only know offsets.
func withSource(err error, src string, offset int) error {
	if pe, ok := err.(*ParseError); ok {
		return &ParseError{Abbreviation: src, Pos: pe.Pos + offset, Msg: pe.Msg}
	}

	return err
}
