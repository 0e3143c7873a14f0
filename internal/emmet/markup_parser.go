package emmet

import "strings"

// ParseMarkup parses a markup abbreviation into a tree ready for
// StringifyMarkup: snippets are resolved, repeats unrolled, groups removed,
// numbering applied and implicit tag names filled in.
func ParseMarkup(raw string, cfg Config) (*Abbreviation, error) {
	nodes, err := parseMarkupTree(raw)
	if err != nil {
		return nil, withSource(err, raw, 0)
	}

	nodes = resolveSnippets(nodes, cfg, nil)

	if err := checkExpansion(nodes, cfg.MaxElements); err != nil {
		return nil, withSource(err, raw, 0)
	}

	nodes = unroll(nodes)
	applyNumbering(nodes, Repeater{Count: 1}, cfg.NumberPadding)
	resolveImplicitNames(nodes, "", cfg)

	return &Abbreviation{Children: nodes}, nil
}

// parseMarkupTree runs the lexer and parser only.
func parseMarkupTree(raw string) ([]Node, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errorAt(0, "empty abbreviation")
	}

	src := []rune(raw)

	tokens, err := lexMarkup(src)
	if err != nil {
		return nil, err
	}

	p := &markupParser{tokens: tokens}

	root, err := p.parseStatements(-1)
	if err != nil {
		return nil, err
	}

	return root.Children, nil
}

type markupParser struct {
	tokens []token
	pos    int
}

func (p *markupParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}

	return p.tokens[p.pos], true
}

// parseStatements parses a sequence of operands joined by operators until
// the end of input, or until ')' when groupStart is the offset of the
// opening parenthesis. The insertion point is an explicit stack of
// containers: '>' pushes, '^' pops, '+' stays.
func (p *markupParser) parseStatements(groupStart int) (*Group, error) {
	root := &Group{Pos: groupStart + 1}

	var (
		ctx       container = root
		stack     []container
		last      Node
		lastOp    *token
		needsNode = true
	)

	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		if tok.kind == tokGroupEnd {
			if groupStart < 0 {
				return nil, errorAt(tok.pos, "unmatched ')'")
			}

			break
		}

		if tok.isOperator() {
			climbing := tok.kind == tokClimb && lastOp != nil && lastOp.kind == tokClimb
			if needsNode && !climbing {
				return nil, errorAt(tok.pos, "operator %s has no left operand", tok.kind)
			}

			switch tok.kind {
			case tokChild:
				target := lastElement(last)
				if target == nil {
					return nil, errorAt(tok.pos, "text cannot have children")
				}

				stack = append(stack, ctx)
				ctx = target
			case tokClimb:
				if len(stack) > 0 {
					ctx = stack[len(stack)-1]
					stack = stack[:len(stack)-1]
				}
			}

			op := tok
			lastOp = &op
			needsNode = true
			p.pos++

			continue
		}

		if !needsNode {
			return nil, errorAt(tok.pos, "unexpected %s, expected an operator", tok.kind)
		}

		node, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		ctx.appendChild(node)
		last = node
		lastOp = nil
		needsNode = false
	}

	if groupStart >= 0 {
		if _, ok := p.peek(); !ok {
			return nil, errorAt(groupStart, "unterminated group")
		}
	}

	if needsNode {
		switch {
		case lastOp != nil:
			return nil, errorAt(lastOp.pos, "operator %s has no right operand", lastOp.kind)
		case groupStart >= 0:
			return nil, errorAt(groupStart, "empty group")
		default:
			return nil, errorAt(0, "empty abbreviation")
		}
	}

	return root, nil
}

func (p *markupParser) parseOperand() (Node, error) {
	tok, _ := p.peek()

	switch tok.kind {
	case tokGroupStart:
		p.pos++

		group, err := p.parseStatements(tok.pos)
		if err != nil {
			return nil, err
		}

		p.pos++ // ')'
		group.Pos = tok.pos
		group.Repeat = p.parseRepeat()

		return group, nil
	case tokText:
		p.pos++

		text := &Text{Value: tok.value, Pos: tok.pos}
		text.Repeat = p.parseRepeat()

		return text, nil
	case tokClose:
		return nil, errorAt(tok.pos, "'/' must follow an element")
	case tokRepeat:
		return nil, errorAt(tok.pos, "repeater has no operand")
	}

	return p.parseElement()
}

func (p *markupParser) parseElement() (*Element, error) {
	first, _ := p.peek()
	el := &Element{Pos: first.pos}

	if first.kind == tokName {
		el.Name = first.value
		p.pos++
	}

	for {
		tok, ok := p.peek()
		if !ok {
			return el, nil
		}

		switch tok.kind {
		case tokID:
			el.ID = tok.value
		case tokClass:
			el.Classes = append(el.Classes, tok.value)
		case tokAttributes:
			el.Attributes = append(el.Attributes, tok.attrs...)
		case tokText:
			el.Value += tok.value
			el.HasValue = true
		case tokClose:
			el.SelfClose = true
		case tokRepeat:
			el.Repeat = p.parseRepeat()
			return el, nil
		case tokName:
			return nil, errorAt(tok.pos, "unexpected element name %q", tok.value)
		default:
			return el, nil
		}

		p.pos++
	}
}

func (p *markupParser) parseRepeat() *Repeater {
	tok, ok := p.peek()
	if !ok || tok.kind != tokRepeat {
		return nil
	}

	p.pos++

	return &Repeater{Count: tok.count, Pos: tok.pos}
}
