package emmet

import (
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokID
	tokClass
	tokAttributes
	tokText
	tokRepeat
	tokChild
	tokSibling
	tokClimb
	tokGroupStart
	tokGroupEnd
	tokClose
)

func (k tokenKind) String() string {
	switch k {
	case tokName:
		return "element name"
	case tokID:
		return "id"
	case tokClass:
		return "class"
	case tokAttributes:
		return "attribute set"
	case tokText:
		return "text"
	case tokRepeat:
		return "repeater"
	case tokChild:
		return "'>'"
	case tokSibling:
		return "'+'"
	case tokClimb:
		return "'^'"
	case tokGroupStart:
		return "'('"
	case tokGroupEnd:
		return "')'"
	case tokClose:
		return "'/'"
	default:
		return "token(" + strconv.Itoa(int(k)) + ")"
	}
}

type token struct {
	kind  tokenKind
	value string
	attrs []Attribute
	count int
	pos   int
}

func (t token) isOperator() bool {
	return t.kind == tokChild || t.kind == tokSibling || t.kind == tokClimb
}

// isWordRune reports whether r may appear in element names, ids and classes.
func isWordRune(r rune) bool {
	if unicode.IsSpace(r) {
		return false
	}

	return !strings.ContainsRune("#.[]{}()>+^*/", r)
}

func readWord(src []rune, i int) int {
	for i < len(src) && isWordRune(src[i]) {
		i++
	}

	return i
}

// lexMarkup splits a markup abbreviation into tokens.
func lexMarkup(src []rune) ([]token, error) {
	var tokens []token

	for i := 0; i < len(src); {
		c := src[i]
		start := i

		switch c {
		case '#', '.':
			end := readWord(src, i+1)
			if end == i+1 {
				what := "id"
				if c == '.' {
					what = "class"
				}

				return nil, errorAt(i, "expected %s name", what)
			}

			kind := tokID
			if c == '.' {
				kind = tokClass
			}

			tokens = append(tokens, token{kind: kind, value: string(src[i+1 : end]), pos: start})
			i = end
		case '[':
			attrs, end, err := lexAttributes(src, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{kind: tokAttributes, attrs: attrs, pos: start})
			i = end
		case '{':
			text, end, err := lexText(src, i)
			if err != nil {
				return nil, err
			}

			tokens = append(tokens, token{kind: tokText, value: text, pos: start})
			i = end
		case '*':
			end := i + 1
			for end < len(src) && isDigit(src[end]) {
				end++
			}

			if end == i+1 {
				return nil, errorAt(i, "missing repeat count after '*'")
			}

			count, err := strconv.Atoi(string(src[i+1 : end]))
			if err != nil {
				return nil, errorAt(i, "repeat count %s is too large", string(src[i+1:end]))
			}

			if count <= 0 {
				return nil, errorAt(i, "repeat count must be a positive number")
			}

			tokens = append(tokens, token{kind: tokRepeat, count: count, pos: start})
			i = end
		case '>':
			tokens = append(tokens, token{kind: tokChild, pos: start})
			i++
		case '+':
			tokens = append(tokens, token{kind: tokSibling, pos: start})
			i++
		case '^':
			tokens = append(tokens, token{kind: tokClimb, pos: start})
			i++
		case '(':
			tokens = append(tokens, token{kind: tokGroupStart, pos: start})
			i++
		case ')':
			tokens = append(tokens, token{kind: tokGroupEnd, pos: start})
			i++
		case '/':
			tokens = append(tokens, token{kind: tokClose, pos: start})
			i++
		case ']', '}':
			return nil, errorAt(i, "unmatched %q", c)
		default:
			if unicode.IsSpace(c) {
				return nil, errorAt(i, "unexpected whitespace")
			}

			end := readWord(src, i)
			tokens = append(tokens, token{kind: tokName, value: string(src[i:end]), pos: start})
			i = end
		}
	}

	return tokens, nil
}

// lexText reads a {text} block starting at src[start] and returns its
// content with escapes preserved for later value processing.
func lexText(src []rune, start int) (string, int, error) {
	depth := 0

	for i := start; i < len(src); i++ {
		switch src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return string(src[start+1 : i]), i + 1, nil
			}
		}
	}

	return "", 0, errorAt(start, "unterminated text block")
}

// lexAttributes reads an [attr=value ...] set starting at src[start].
func lexAttributes(src []rune, start int) ([]Attribute, int, error) {
	var attrs []Attribute

	i := start + 1

	for {
		for i < len(src) && unicode.IsSpace(src[i]) {
			i++
		}

		if i >= len(src) {
			return nil, 0, errorAt(start, "unterminated attribute set")
		}

		if src[i] == ']' {
			return attrs, i + 1, nil
		}

		nameStart := i
		for i < len(src) && !unicode.IsSpace(src[i]) && src[i] != '=' && src[i] != ']' {
			if src[i] == '"' || src[i] == '\'' || src[i] == '[' {
				return nil, 0, errorAt(i, "unexpected %q in attribute name", src[i])
			}

			i++
		}

		name := string(src[nameStart:i])
		if name == "" {
			return nil, 0, errorAt(nameStart, "expected attribute name")
		}

		attr := Attribute{Name: name}

		if strings.HasSuffix(name, ".") && len(name) > 1 {
			attr.Name = strings.TrimSuffix(name, ".")
			attr.Boolean = true
		}

		if i < len(src) && src[i] == '=' {
			if attr.Boolean {
				return nil, 0, errorAt(i, "boolean attribute %q cannot have a value", attr.Name)
			}

			value, end, err := lexAttributeValue(src, i+1)
			if err != nil {
				return nil, 0, err
			}

			attr.Value = value
			i = end
		}

		attrs = append(attrs, attr)
	}
}

func lexAttributeValue(src []rune, i int) (string, int, error) {
	if i >= len(src) {
		return "", i, nil
	}

	if q := src[i]; q == '"' || q == '\'' {
		var b strings.Builder

		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '\\':
				if j+1 < len(src) && src[j+1] == q {
					j++
					b.WriteRune(q)

					continue
				}
			case q:
				return b.String(), j + 1, nil
			}

			b.WriteRune(src[j])
		}

		return "", 0, errorAt(i, "unterminated quoted value")
	}

	start := i
	depth := 0

	for ; i < len(src); i++ {
		c := src[i]
		if unicode.IsSpace(c) && depth == 0 {
			break
		}

		if c == ']' {
			if depth == 0 {
				break
			}

			depth--
		}

		if c == '[' {
			depth++
		}
	}

	return string(src[start:i]), i, nil
}
