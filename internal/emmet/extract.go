package emmet

import (
	"regexp"
	"strings"
	"unicode"
)

// Span locates an abbreviation within a line. Start and End are rune
// offsets; End is the cursor.
type Span struct {
	Start        int
	End          int
	Abbreviation string
}

// Extract finds the abbreviation that ends at cursor. It returns false when
// there is nothing plausible to expand at that position.
func Extract(line string, cursor int, syntax Syntax) (Span, bool) {
	src := []rune(line)
	if cursor <= 0 || cursor > len(src) {
		return Span{}, false
	}

	ignored := map[int]bool{}

	for {
		start, quote := scanBack(src, cursor, syntax, ignored)
		if quote >= 0 {
			// The scan ended inside a quote, so that quote was opened by the
			// user and never closed. Read it as an ordinary character.
			ignored[quote] = true
			continue
		}

		abbr := string(src[start:cursor])
		if strings.TrimSpace(abbr) == "" {
			return Span{}, false
		}

		return Span{Start: start, End: cursor, Abbreviation: abbr}, true
	}
}

type bracket struct {
	char rune
	pos  int
}

var pairs = map[rune]rune{')': '(', ']': '[', '}': '{'}

// scanBack walks left from end and returns the abbreviation start. When the
// scan runs out while inside a quote it returns that quote's offset instead.
func scanBack(src []rune, end int, syntax Syntax, ignored map[int]bool) (int, int) {
	var (
		stack    []bracket
		quote    rune
		quotePos = -1
		start    = 0
		css      = syntax == SyntaxStylesheet
	)

scan:
	for i := end - 1; i >= 0; i-- {
		c := src[i]

		if quote != 0 {
			if c == quote && !escaped(src, i) {
				quote, quotePos = 0, -1
			}

			continue
		}

		switch {
		case (c == '"' || c == '\'') && !ignored[i] && !escaped(src, i):
			quote, quotePos = c, i
		case css && (c == ';' || c == '{' || c == '}'):
			start = i + 1
			break scan
		case c == ')' || c == ']' || c == '}':
			stack = append(stack, bracket{char: c, pos: i})
		case c == '(' || c == '[' || c == '{':
			if len(stack) == 0 {
				// Cursor inside an unterminated group: keep going.
				continue
			}

			if pairs[stack[len(stack)-1].char] != c {
				start = i + 1
				break scan
			}

			stack = stack[:len(stack)-1]
		case len(stack) > 0:
			// Whitespace and stop characters are content inside brackets.
		case unicode.IsSpace(c):
			start = i + 1
			break scan
		case !css && c == '<':
			start = i + 1
			break scan
		case !css && c == '>' && isTagEnd(src, i):
			start = i + 1
			break scan
		}
	}

	if quote != 0 {
		return 0, quotePos
	}

	if len(stack) > 0 {
		// The rightmost unmatched closer bounds the abbreviation.
		start = max(start, stack[0].pos+1)
	}

	return start, -1
}

func escaped(src []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && src[j] == '\\'; j-- {
		n++
	}

	return n%2 == 1
}

var tagPattern = regexp.MustCompile(`^/?[A-Za-z][\w:.-]*(\s[^<>]*)?/?$`)

// isTagEnd reports whether the '>' at src[i] closes an HTML tag such as
// <div class="x"> rather than being a child operator. A '<' glued to a word,
// as in x<y, is a comparison and opens no tag.
func isTagEnd(src []rune, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch src[j] {
		case '<':
			if j > 0 && isIdentRune(src[j-1]) {
				return false
			}

			return tagPattern.MatchString(string(src[j+1 : i]))
		case '>':
			return false
		}
	}

	return false
}

func isIdentRune(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
