package emmet

import "strings"

// StringifyMarkup renders a parsed markup tree. Fields are numbered in a
// single depth-first pass in output order.
func StringifyMarkup(abbr *Abbreviation, cfg Config) string {
	w := &markupWriter{cfg: cfg}

	for i, n := range abbr.Children {
		if i > 0 {
			w.b.WriteString(cfg.Newline)
		}

		w.writeNode(n, 0)
	}

	return w.b.String()
}

type markupWriter struct {
	cfg    Config
	b      strings.Builder
	fields fieldCounter
}

func (w *markupWriter) writeNode(n Node, depth int) {
	switch n := n.(type) {
	case *Element:
		w.writeElement(n, depth)
	case *Text:
		w.b.WriteString(renderValue(n.Value, w.cfg, &w.fields, fieldScope{}))
	case *Group:
		// Groups are spliced out by unroll; render their content in place.
		for i, c := range n.Children {
			if i > 0 {
				w.newline(depth)
			}

			w.writeNode(c, depth)
		}
	}
}

func (w *markupWriter) newline(depth int) {
	w.b.WriteString(w.cfg.Newline)
	w.b.WriteString(strings.Repeat(w.cfg.Indent, depth))
}

func (w *markupWriter) writeElement(el *Element, depth int) {
	scope := fieldScope{}
	name := w.cfg.Text(el.Name)

	w.b.WriteString("<")
	w.b.WriteString(name)
	w.writeAttributes(el, scope)

	if w.selfClosing(el) {
		switch w.cfg.SelfClosingStyle {
		case SelfClosingXHTML:
			w.b.WriteString(" />")
		case SelfClosingXML:
			w.b.WriteString("/>")
		default:
			w.b.WriteString(">")
		}

		return
	}

	w.b.WriteString(">")

	switch {
	case len(el.Children) == 0:
		if el.HasValue {
			w.b.WriteString(renderValue(el.Value, w.cfg, &w.fields, scope))
		} else {
			w.b.WriteString(w.cfg.Field(w.fields.next(), ""))
		}
	case w.inlineContent(el):
		if el.HasValue {
			w.b.WriteString(renderValue(el.Value, w.cfg, &w.fields, scope))
		}

		for _, c := range el.Children {
			w.writeNode(c, depth)
		}
	default:
		if el.HasValue {
			w.newline(depth + 1)
			w.b.WriteString(renderValue(el.Value, w.cfg, &w.fields, scope))
		}

		for _, c := range el.Children {
			w.newline(depth + 1)
			w.writeNode(c, depth+1)
		}

		w.newline(depth)
	}

	w.b.WriteString("</")
	w.b.WriteString(name)
	w.b.WriteString(">")
}

// writeAttributes emits id, then class, then explicit attributes in parse
// order. An explicit id or class merges into the shorthand one when both
// are present.
func (w *markupWriter) writeAttributes(el *Element, scope fieldScope) {
	classes := el.Classes
	explicitClass := -1

	for i, a := range el.Attributes {
		if a.Name == "class" && !a.Boolean && len(el.Classes) > 0 {
			explicitClass = i
			if a.Value != "" {
				classes = append(append([]string(nil), el.Classes...), a.Value)
			}
		}
	}

	if el.ID != "" {
		w.writeAttribute("id", w.cfg.Text(el.ID))
	}

	if len(classes) > 0 {
		w.writeAttribute("class", w.cfg.Text(strings.Join(classes, " ")))
	}

	for i, a := range el.Attributes {
		if i == explicitClass || (a.Name == "id" && el.ID != "") {
			continue
		}

		switch {
		case a.Boolean:
			if w.cfg.SelfClosingStyle == SelfClosingHTML {
				w.b.WriteString(" ")
				w.b.WriteString(w.cfg.Text(a.Name))
			} else {
				w.writeAttribute(a.Name, w.cfg.Text(a.Name))
			}
		case a.Value == "":
			w.writeAttribute(a.Name, w.cfg.Field(w.fields.next(), ""))
		default:
			w.writeAttribute(a.Name, renderValue(a.Value, w.cfg, &w.fields, scope))
		}
	}
}

func (w *markupWriter) writeAttribute(name, rendered string) {
	q := w.cfg.AttributeQuote

	w.b.WriteString(" ")
	w.b.WriteString(w.cfg.Text(name))
	w.b.WriteString("=")
	w.b.WriteString(q)
	w.b.WriteString(rendered)
	w.b.WriteString(q)
}

func (w *markupWriter) selfClosing(el *Element) bool {
	if len(el.Children) > 0 || el.HasValue {
		return false
	}

	return el.SelfClose || w.cfg.IsVoid(el.Name)
}

// inlineContent reports whether an element's children fit on its own line:
// only text and inline elements, themselves inline all the way down, and
// fewer than InlineBreak elements.
func (w *markupWriter) inlineContent(el *Element) bool {
	elements := 0

	for _, c := range el.Children {
		switch c := c.(type) {
		case *Text:
			if strings.Contains(c.Value, "\n") {
				return false
			}
		case *Element:
			if !w.cfg.IsInline(c.Name) {
				return false
			}

			if len(c.Children) > 0 && !w.inlineContent(c) {
				return false
			}

			elements++
		case *Group:
			return false
		}
	}

	return elements < w.cfg.InlineBreak || (elements == 0 && w.cfg.InlineBreak == 0)
}
