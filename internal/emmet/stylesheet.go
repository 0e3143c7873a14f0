package emmet

import (
	"strconv"
	"strings"
	"unicode"
)

// Declaration is one property: value pair. Value uses value syntax and may
// contain ${n:placeholder} fields; an empty Value renders as a field.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet is a parsed stylesheet abbreviation. Declarations keep source
// order.
type Stylesheet struct {
	Declarations []Declaration
}

// ParseStylesheet parses declarations joined by '+'. Unknown shorthands do
// not fail: the raw token becomes the property name.
func ParseStylesheet(raw string, cfg Config) (*Stylesheet, error) {
	parts, err := splitDeclarations([]rune(raw))
	if err != nil {
		return nil, withSource(err, raw, 0)
	}

	sheet := &Stylesheet{}

	for _, part := range parts {
		sheet.Declarations = append(sheet.Declarations, parseDeclaration(part, cfg))
	}

	return sheet, nil
}

// splitDeclarations splits on '+' outside parentheses and quotes.
func splitDeclarations(src []rune) ([]string, error) {
	if strings.TrimSpace(string(src)) == "" {
		return nil, errorAt(0, "empty abbreviation")
	}

	var (
		parts  []string
		start  int
		depth  int
		open   = -1
		quote  rune
		quoted int
	)

	for i, c := range src {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote, quoted = c, i
		case c == '(':
			if depth == 0 {
				open = i
			}

			depth++
		case c == ')':
			if depth == 0 {
				return nil, errorAt(i, "unmatched ')'")
			}

			depth--
		case c == '+' && depth == 0:
			if strings.TrimSpace(string(src[start:i])) == "" {
				return nil, errorAt(i, "empty declaration")
			}

			parts = append(parts, string(src[start:i]))
			start = i + 1
		}
	}

	switch {
	case quote != 0:
		return nil, errorAt(quoted, "unterminated quote")
	case depth > 0:
		return nil, errorAt(open, "unterminated '('")
	case strings.TrimSpace(string(src[start:])) == "":
		return nil, errorAt(len(src), "empty declaration")
	}

	return append(parts, string(src[start:])), nil
}

func parseDeclaration(token string, cfg Config) Declaration {
	token = strings.TrimSpace(token)

	var decl Declaration

	if rest, ok := strings.CutSuffix(token, "!important"); ok {
		token, decl.Important = rest, true
	} else if rest, ok := strings.CutSuffix(token, "!"); ok {
		token, decl.Important = rest, true
	}

	if snippet, ok := cfg.stylesheetSnippet(token); ok {
		snip := parseCSSSnippet(snippet)
		decl.Property = snip.property
		decl.Value = snip.defaultValue()

		return decl
	}

	if name, value, ok := strings.Cut(token, ":"); ok && name != "" {
		snip := lookupProperty(name, cfg)
		decl.Property = snip.property
		decl.Value = explicitValue(strings.TrimSpace(value), snip, cfg)

		if decl.Value == "" {
			decl.Value = snip.defaultValue()
		}

		return decl
	}

	name, rest := splitShorthand(token)

	if snippet, ok := cfg.stylesheetSnippet(name); ok {
		snip := parseCSSSnippet(snippet)
		decl.Property = snip.property
		decl.Value = snip.defaultValue()

		// A dangling separator carries no value.
		if rest = strings.TrimRight(rest, "-"); rest != "" {
			decl.Value = inlineValue(rest, snip, cfg)
		}

		return decl
	}

	if rest == "" {
		if snip, kw, ok := keywordShorthand(name, cfg); ok {
			decl.Property = snip.property
			decl.Value = valueEscaper.Replace(kw)

			return decl
		}
	}

	decl.Property = token

	return decl
}

// lookupProperty resolves a property name typed before an explicit ':'.
func lookupProperty(name string, cfg Config) cssSnippet {
	if snippet, ok := cfg.stylesheetSnippet(name); ok {
		return parseCSSSnippet(snippet)
	}

	return cssSnippet{property: name}
}

// splitShorthand separates the property letters from an inline value:
// "m10" is ("m", "10"), "m-10" is ("m", "-10"), "-webkit-box" stays whole.
func splitShorthand(token string) (string, string) {
	src := []rune(token)
	i := 0

	for i < len(src) {
		c := src[i]
		if unicode.IsLetter(c) {
			i++
			continue
		}

		if c == '-' && i+1 < len(src) && unicode.IsLetter(src[i+1]) {
			i++
			continue
		}

		break
	}

	return string(src[:i]), string(src[i:])
}

// keywordShorthand resolves forms such as "dib" or "posa": the longest
// prefix naming a snippet with keywords, followed by a keyword abbreviation.
func keywordShorthand(name string, cfg Config) (cssSnippet, string, bool) {
	for i := len(name) - 1; i > 0; i-- {
		snippet, ok := cfg.stylesheetSnippet(name[:i])
		if !ok {
			continue
		}

		snip := parseCSSSnippet(snippet)
		if kw, ok := matchKeyword(name[i:], snip.keywords); ok {
			return snip, kw, true
		}
	}

	return cssSnippet{}, "", false
}

// explicitValue resolves the words of a ":value" suffix as keywords; words
// that match nothing are kept verbatim.
func explicitValue(value string, snip cssSnippet, cfg Config) string {
	if value == "" || strings.Contains(value, "${") {
		return value
	}

	words := strings.Fields(value)
	for i, w := range words {
		if w[0] == '#' || startsNumber([]rune(w), 0) {
			words[i] = inlineValue(w, snip, cfg)
		} else {
			words[i] = keyword(w, snip, cfg)
		}
	}

	return strings.Join(words, " ")
}

func keyword(word string, snip cssSnippet, cfg Config) string {
	if kw, ok := matchKeyword(word, snip.keywords); ok {
		return valueEscaper.Replace(kw)
	}

	if kw, ok := cfg.keywordAliases[word]; ok {
		return kw
	}

	return valueEscaper.Replace(word)
}

// inlineValue parses an inline value: numbers with optional units, #colors
// and keywords separated by '-'. A '-' at the start of a part is a minus
// sign.
func inlineValue(s string, snip cssSnippet, cfg Config) string {
	src := []rune(s)

	var values []string

	for i := 0; i < len(src); {
		if src[i] == '-' && (i+1 >= len(src) || !startsNumber(src, i+1)) && len(values) > 0 {
			i++
			continue
		}

		var (
			value string
			next  int
		)

		switch c := src[i]; {
		case c == '#':
			value, next = readColor(src, i)
		case startsNumber(src, i):
			value, next = readNumber(src, i, snip.property, cfg)
		case unicode.IsLetter(c):
			next = i
			for next < len(src) && (unicode.IsLetter(src[next]) ||
				(src[next] == '-' && next+1 < len(src) && unicode.IsLetter(src[next+1]))) {
				next++
			}

			value = keyword(string(src[i:next]), snip, cfg)
		default:
			next = i + 1
			for next < len(src) && src[next] != '-' {
				next++
			}

			value = valueEscaper.Replace(string(src[i:next]))
		}

		values = append(values, value)
		i = next

		if i < len(src) && src[i] == '-' {
			i++
		}
	}

	return strings.Join(values, " ")
}

func startsNumber(src []rune, i int) bool {
	if i >= len(src) {
		return false
	}

	if src[i] == '-' {
		i++
	}

	if i < len(src) && src[i] == '.' {
		i++
	}

	return i < len(src) && isDigit(src[i])
}

func readNumber(src []rune, i int, property string, cfg Config) (string, int) {
	start := i
	if src[i] == '-' {
		i++
	}

	for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
		i++
	}

	number := string(src[start:i])

	unitStart := i
	for i < len(src) && (unicode.IsLetter(src[i]) || src[i] == '%') {
		i++
	}

	unit := string(src[unitStart:i])

	switch {
	case unit != "":
		unit = cfg.unitAlias(unit)
	case cfg.isUnitless(property):
	case isZero(number):
	case strings.Contains(number, "."):
		unit = cfg.FloatUnit
	default:
		unit = cfg.IntUnit
	}

	return number + unit, i
}

func isZero(number string) bool {
	f, err := strconv.ParseFloat(number, 64)
	return err == nil && f == 0
}

// readColor expands #f to #fff and #fc to #fcfcfc.
func readColor(src []rune, i int) (string, int) {
	j := i + 1
	for j < len(src) && (unicode.IsLetter(src[j]) || isDigit(src[j])) {
		j++
	}

	hex := string(src[i+1 : j])

	switch len(hex) {
	case 0:
		hex = "000"
	case 1:
		hex = strings.Repeat(hex, 3)
	case 2:
		hex = strings.Repeat(hex, 3)
	}

	return "#" + hex, j
}
