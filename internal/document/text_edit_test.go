package document

import (
	"testing"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const testMarkup = "<ul>\n\tli*3\n</ul>"

func change(startLine, startChar, endLine, endChar uint32, text string) protocol.TextDocumentContentChangeEvent {
	return protocol.TextDocumentContentChangeEvent{
		Range: &protocol.Range{
			Start: protocol.Position{Line: startLine, Character: startChar},
			End:   protocol.Position{Line: endLine, Character: endChar},
		},
		Text: text,
	}
}

func TestApplyContentChange_FullSync(t *testing.T) {
	result, err := ApplyContentChange(testMarkup, protocol.TextDocumentContentChangeEvent{Text: "div.a"})
	if err != nil {
		t.Fatalf("ApplyContentChange returned error: %v", err)
	}

	if result != "div.a" {
		t.Errorf("Result = %q, want %q", result, "div.a")
	}
}

func TestApplyContentChange(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		change protocol.TextDocumentContentChangeEvent
		want   string
	}{
		{
			name:   "replace within line",
			text:   testMarkup,
			change: change(1, 3, 1, 5, "*5"),
			want:   "<ul>\n\tli*5\n</ul>",
		},
		{
			name:   "append at end of line",
			text:   testMarkup,
			change: change(1, 5, 1, 5, ">a"),
			want:   "<ul>\n\tli*3>a\n</ul>",
		},
		{
			name:   "delete whole line",
			text:   testMarkup,
			change: change(1, 0, 2, 0, ""),
			want:   "<ul>\n</ul>",
		},
		{
			name:   "insert line break",
			text:   testMarkup,
			change: change(0, 4, 0, 4, "\n\tp"),
			want:   "<ul>\n\tp\n\tli*3\n</ul>",
		},
		{
			name:   "multi-line replacement",
			text:   testMarkup,
			change: change(0, 1, 2, 3, "o"),
			want:   "<ol>",
		},
		{
			name:   "crlf line endings",
			text:   "a\r\nb\r\n",
			change: change(0, 1, 0, 1, "+p"),
			want:   "a+p\r\nb\r\n",
		},
		{
			name:   "surrogate pair",
			text:   "p{😀 ok}",
			change: change(0, 2, 0, 4, "🙂"),
			want:   "p{🙂 ok}",
		},
		{
			name:   "insert into empty document",
			text:   "",
			change: change(0, 0, 0, 0, "ul>li"),
			want:   "ul>li",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyContentChange(tt.text, tt.change)
			if err != nil {
				t.Fatalf("ApplyContentChange returned error: %v", err)
			}

			if got != tt.want {
				t.Errorf("Result = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyContentChange_InvalidRange(t *testing.T) {
	tests := []struct {
		name   string
		change protocol.TextDocumentContentChangeEvent
	}{
		{"start line out of bounds", change(5, 0, 5, 1, "x")},
		{"end line out of bounds", change(0, 0, 9, 0, "x")},
		{"character past end of line", change(1, 9, 1, 9, "x")},
		{"start after end", change(1, 3, 0, 1, "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ApplyContentChange(testMarkup, tt.change); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestPositionToOffset(t *testing.T) {
	tests := []struct {
		line, character uint32
		want            int
	}{
		{0, 0, 0},
		{0, 4, 4},
		{1, 0, 5},
		{1, 5, 10},
		{2, 5, 16},
	}

	for _, tt := range tests {
		got, err := PositionToOffset(testMarkup, protocol.Position{Line: tt.line, Character: tt.character})
		if err != nil {
			t.Errorf("PositionToOffset(%d, %d) returned error: %v", tt.line, tt.character, err)
			continue
		}

		if got != tt.want {
			t.Errorf("PositionToOffset(%d, %d) = %d, want %d", tt.line, tt.character, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	text := "first\r\n\tul>li\nlast"

	tests := []struct {
		n    int
		want string
		ok   bool
	}{
		{0, "first", true},
		{1, "\tul>li", true},
		{2, "last", true},
		{3, "", false},
		{-1, "", false},
	}

	for _, tt := range tests {
		got, ok := Line(text, tt.n)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Line(%d) = (%q, %v), want (%q, %v)", tt.n, got, ok, tt.want, tt.ok)
		}
	}
}

func TestUTF16ToRuneOffset(t *testing.T) {
	line := "a😀b→c"

	tests := []struct {
		units int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 1}, // inside the surrogate pair
		{3, 2},
		{4, 3},
		{5, 4},
		{6, 5},
		{40, 5},
	}

	for _, tt := range tests {
		if got := UTF16ToRuneOffset(line, tt.units); got != tt.want {
			t.Errorf("UTF16ToRuneOffset(%q, %d) = %d, want %d", line, tt.units, got, tt.want)
		}
	}
}

func TestRuneToUTF16Offset(t *testing.T) {
	line := "a😀b→c"

	tests := []struct {
		runes int
		want  int
	}{
		{0, 0},
		{1, 1},
		{2, 3},
		{3, 4},
		{5, 6},
		{9, 6},
	}

	for _, tt := range tests {
		if got := RuneToUTF16Offset(line, tt.runes); got != tt.want {
			t.Errorf("RuneToUTF16Offset(%q, %d) = %d, want %d", line, tt.runes, got, tt.want)
		}
	}
}

func TestRoundTripConversion(t *testing.T) {
	line := "ul>li{😀 $}*2"

	for runes := range utf8.RuneCountInString(line) + 1 {
		units := RuneToUTF16Offset(line, runes)
		if got := UTF16ToRuneOffset(line, units); got != runes {
			t.Errorf("round trip of rune offset %d via %d = %d", runes, units, got)
		}
	}
}
