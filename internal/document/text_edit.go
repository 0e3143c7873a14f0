// Package document converts between LSP positions and the text of an open
// document. LSP counts characters in UTF-16 code units; the expansion engine
// works on runes within a single line.
package document

import (
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ApplyContentChange applies one didChange event to text. A change without
// a range replaces the whole document.
func ApplyContentChange(text string, change protocol.TextDocumentContentChangeEvent) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}

	start, err := PositionToOffset(text, change.Range.Start)
	if err != nil {
		return "", fmt.Errorf("invalid start position: %w", err)
	}

	end, err := PositionToOffset(text, change.Range.End)
	if err != nil {
		return "", fmt.Errorf("invalid end position: %w", err)
	}

	if start > end {
		return "", fmt.Errorf("range start %d:%d after end %d:%d",
			change.Range.Start.Line, change.Range.Start.Character,
			change.Range.End.Line, change.Range.End.Character)
	}

	return text[:start] + change.Text + text[end:], nil
}

// PositionToOffset converts an LSP position to a byte offset in text. The
// character may point at the end of the line but not past it.
func PositionToOffset(text string, pos protocol.Position) (int, error) {
	lineStart := 0

	for range pos.Line {
		i := strings.IndexByte(text[lineStart:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d out of range (0-%d)", pos.Line, strings.Count(text, "\n"))
		}

		lineStart += i + 1
	}

	line := text[lineStart:]
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}

	line = strings.TrimSuffix(line, "\r")

	n, err := utf16ToByteOffset(line, int(pos.Character))
	if err != nil {
		return 0, err
	}

	return lineStart + n, nil
}

func utf16ToByteOffset(line string, units int) (int, error) {
	count := 0

	for i, r := range line {
		if count >= units {
			return i, nil
		}

		count += utf16Len(r)
	}

	if count < units {
		return 0, fmt.Errorf("UTF-16 offset %d exceeds line length %d", units, count)
	}

	return len(line), nil
}

// Line returns line n of text without its terminator.
func Line(text string, n int) (string, bool) {
	if n < 0 {
		return "", false
	}

	for range n {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			return "", false
		}

		text = text[i+1:]
	}

	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}

	return strings.TrimSuffix(text, "\r"), true
}

// UTF16ToRuneOffset converts a UTF-16 column to a rune column. A column in
// the middle of a surrogate pair rounds down; columns past the end clamp to
// the rune count.
func UTF16ToRuneOffset(line string, units int) int {
	count, runes := 0, 0

	for _, r := range line {
		w := utf16Len(r)
		if count+w > units {
			break
		}

		count += w
		runes++
	}

	return runes
}

// RuneToUTF16Offset converts a rune column to a UTF-16 column.
func RuneToUTF16Offset(line string, runes int) int {
	units := 0

	for _, r := range line {
		if runes <= 0 {
			break
		}

		units += utf16Len(r)
		runes--
	}

	return units
}

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}

	return 1
}
