package emmet

import (
	"strconv"
	"strings"
)

type partKind int

const (
	partLiteral partKind = iota
	partNumber
	partField
)

// valuePart is one piece of a text or attribute value: literal text, a $
// numbering run, or a ${n:placeholder} field.
type valuePart struct {
	kind partKind
	text string

	// field
	index int

	// numbering
	width   int
	reverse bool
	base    int
}

// splitValue breaks a value into literal, numbering and field parts.
// A backslash escapes the following rune.
func splitValue(s string) []valuePart {
	src := []rune(s)

	var (
		parts []valuePart
		lit   strings.Builder
	)

	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, valuePart{kind: partLiteral, text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '\\' && i+1 < len(src):
			i++
			lit.WriteRune(src[i])
		case c == '$' && i+1 < len(src) && src[i+1] == '{':
			field, next, ok := scanField(src, i)
			if !ok {
				lit.WriteRune(c)
				continue
			}

			flush()
			parts = append(parts, field)
			i = next - 1
		case c == '$':
			number, next := scanNumbering(src, i)
			flush()
			parts = append(parts, number)
			i = next - 1
		default:
			lit.WriteRune(c)
		}
	}

	flush()

	return parts
}

// scanField reads ${index} or ${index:placeholder} starting at src[start].
func scanField(src []rune, start int) (valuePart, int, bool) {
	i := start + 2
	digits := i

	for i < len(src) && isDigit(src[i]) {
		i++
	}

	if i == digits || i >= len(src) {
		return valuePart{}, 0, false
	}

	index, err := strconv.Atoi(string(src[digits:i]))
	if err != nil {
		return valuePart{}, 0, false
	}

	if src[i] == '}' {
		return valuePart{kind: partField, index: index}, i + 1, true
	}

	if src[i] != ':' {
		return valuePart{}, 0, false
	}

	i++
	depth := 1

	var placeholder strings.Builder

	for ; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '\\' && i+1 < len(src):
			i++
			placeholder.WriteRune(src[i])

			continue
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return valuePart{kind: partField, index: index, text: placeholder.String()}, i + 1, true
			}
		}

		placeholder.WriteRune(c)
	}

	return valuePart{}, 0, false
}

// scanNumbering reads a $ run with optional @ modifiers: $$, $@-, $@3, $@-3.
func scanNumbering(src []rune, start int) (valuePart, int) {
	i := start
	for i < len(src) && src[i] == '$' {
		i++
	}

	part := valuePart{kind: partNumber, width: i - start, base: 1}

	if i < len(src) && src[i] == '@' {
		j := i + 1
		reverse := false

		if j < len(src) && src[j] == '-' {
			reverse = true
			j++
		}

		digits := j
		for j < len(src) && isDigit(src[j]) {
			j++
		}

		if reverse || j > digits {
			part.reverse = reverse
			if j > digits {
				part.base, _ = strconv.Atoi(string(src[digits:j]))
			}

			i = j
		}
	}

	return part, i
}

// formatNumber renders a numbering part for the given repeat position.
func formatNumber(p valuePart, r Repeater, pad bool) string {
	n := r.Index + p.base
	if p.reverse {
		n = r.Count - 1 - r.Index + p.base
	}

	s := strconv.Itoa(n)
	if pad && len(s) < p.width {
		s = strings.Repeat("0", p.width-len(s)) + s
	}

	return s
}

var (
	valueEscaper       = strings.NewReplacer(`\`, `\\`, `$`, `\$`)
	placeholderEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`)
)

// encodeParts turns parts back into value syntax, escaping literal dollars
// so that a second splitValue only sees literals and fields.
func encodeParts(parts []valuePart) string {
	var b strings.Builder

	for _, p := range parts {
		switch p.kind {
		case partLiteral:
			b.WriteString(valueEscaper.Replace(p.text))
		case partField:
			b.WriteString("${")
			b.WriteString(strconv.Itoa(p.index))

			if p.text != "" {
				b.WriteByte(':')
				b.WriteString(placeholderEscaper.Replace(p.text))
			}

			b.WriteByte('}')
		case partNumber:
			b.WriteString(strings.Repeat(`\$`, p.width))
		}
	}

	return b.String()
}

// numberValue resolves numbering in a value, keeping fields intact.
func numberValue(s string, r Repeater, pad bool) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}

	parts := splitValue(s)
	for i, p := range parts {
		if p.kind == partNumber {
			parts[i] = valuePart{kind: partLiteral, text: formatNumber(p, r, pad)}
		}
	}

	return encodeParts(parts)
}

// numberPlain resolves numbering in a name, id or class. Field syntax has no
// meaning there and is kept as literal text.
func numberPlain(s string, r Repeater, pad bool) string {
	if !strings.ContainsAny(s, `$\`) {
		return s
	}

	var b strings.Builder

	for _, p := range splitValue(s) {
		switch p.kind {
		case partLiteral:
			b.WriteString(p.text)
		case partNumber:
			b.WriteString(formatNumber(p, r, pad))
		case partField:
			b.WriteString("${" + strconv.Itoa(p.index))

			if p.text != "" {
				b.WriteString(":" + p.text)
			}

			b.WriteString("}")
		}
	}

	return b.String()
}

// fieldScope maps field indices written in the abbreviation to output
// indices, so repeated ${1} within one owner share a tab stop.
type fieldScope map[int]int

// fieldCounter hands out output field indices in rendering order.
type fieldCounter struct {
	last int
}

func (f *fieldCounter) next() int {
	f.last++
	return f.last
}

// renderValue renders value syntax: literals through cfg.Text, fields
// through cfg.Field with renumbered indices.
func renderValue(s string, cfg Config, fields *fieldCounter, scope fieldScope) string {
	var b strings.Builder

	for _, p := range splitValue(s) {
		switch p.kind {
		case partLiteral:
			b.WriteString(cfg.Text(p.text))
		case partField:
			index, ok := scope[p.index]
			if !ok {
				index = fields.next()
				scope[p.index] = index
			}

			b.WriteString(cfg.Field(index, p.text))
		case partNumber:
			b.WriteString(cfg.Text(strings.Repeat("$", p.width)))
		}
	}

	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
