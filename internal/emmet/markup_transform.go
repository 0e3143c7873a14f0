package emmet

// checkExpansion fails with the offset of the multiplier (or node) that
// would take the unrolled tree past budget nodes.
func checkExpansion(nodes []Node, budget int) error {
	_, err := expandedSize(nodes, budget, budget)
	return err
}

// expandedSize counts the nodes unroll would produce from nodes within a
// budget of limit. Counting stops at the budget, so huge repeat counts
// cannot overflow.
func expandedSize(nodes []Node, limit, budget int) (int, error) {
	total := 0

	for _, n := range nodes {
		remaining := limit - total

		var (
			size   int
			repeat *Repeater
			pos    int
			err    error
		)

		switch n := n.(type) {
		case *Element:
			repeat, pos, size = n.Repeat, n.Pos, 1
			if remaining >= 1 {
				var children int
				children, err = expandedSize(n.Children, remaining-1, budget)
				size += children
			}
		case *Text:
			repeat, pos, size = n.Repeat, n.Pos, 1
		case *Group:
			repeat, pos = n.Repeat, n.Pos
			size, err = expandedSize(n.Children, remaining, budget)
		}

		if err != nil {
			return 0, err
		}

		if repeat != nil {
			pos = repeat.Pos
		}

		count := 1
		if repeat != nil {
			count = repeat.Count
		}

		if size > remaining || (size > 0 && count > remaining/size) {
			return 0, errorAt(pos, "expands to more than %d elements", budget)
		}

		total += size * count
	}

	return total, nil
}

// unroll expands repeated nodes into sibling copies and splices groups into
// their parent. Every copy keeps a Repeater with its position so numbering
// can run afterwards.
func unroll(nodes []Node) []Node {
	var out []Node

	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			n.Children = unroll(n.Children)
			if n.Repeat == nil {
				out = append(out, n)
				continue
			}

			for i := range n.Repeat.Count {
				c := cloneElement(n)
				c.Repeat = &Repeater{Count: n.Repeat.Count, Index: i}
				out = append(out, c)
			}
		case *Text:
			if n.Repeat == nil {
				out = append(out, n)
				continue
			}

			for i := range n.Repeat.Count {
				c := *n
				c.Repeat = &Repeater{Count: n.Repeat.Count, Index: i}
				out = append(out, &c)
			}
		case *Group:
			children := unroll(n.Children)
			if n.Repeat == nil {
				out = append(out, children...)
				continue
			}

			for i := range n.Repeat.Count {
				for _, child := range cloneNodes(children) {
					markRepeat(child, Repeater{Count: n.Repeat.Count, Index: i})
					out = append(out, child)
				}
			}
		}
	}

	return out
}

// markRepeat assigns a group's repeat position to a copied child unless the
// child has its own multiplier, which is the nearer numbering scope.
func markRepeat(n Node, r Repeater) {
	switch n := n.(type) {
	case *Element:
		if n.Repeat == nil {
			n.Repeat = &r
		}
	case *Text:
		if n.Repeat == nil {
			n.Repeat = &r
		}
	}
}

// applyNumbering replaces $ runs using the nearest enclosing repeater.
func applyNumbering(nodes []Node, scope Repeater, pad bool) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			r := scope
			if n.Repeat != nil {
				r = *n.Repeat
			}

			n.Name = numberPlain(n.Name, r, pad)
			n.ID = numberPlain(n.ID, r, pad)

			for i, c := range n.Classes {
				n.Classes[i] = numberPlain(c, r, pad)
			}

			for i, a := range n.Attributes {
				n.Attributes[i].Name = numberPlain(a.Name, r, pad)
				n.Attributes[i].Value = numberValue(a.Value, r, pad)
			}

			if n.HasValue {
				n.Value = numberValue(n.Value, r, pad)
			}

			applyNumbering(n.Children, r, pad)
		case *Text:
			r := scope
			if n.Repeat != nil {
				r = *n.Repeat
			}

			n.Value = numberValue(n.Value, r, pad)
		case *Group:
			applyNumbering(n.Children, scope, pad)
		}
	}
}

var implicitChildNames = map[string]string{
	"ul":       "li",
	"ol":       "li",
	"table":    "tr",
	"tbody":    "tr",
	"thead":    "tr",
	"tfoot":    "tr",
	"tr":       "td",
	"select":   "option",
	"optgroup": "option",
	"colgroup": "col",
	"map":      "area",
	"audio":    "source",
	"video":    "source",
	"object":   "param",
}

// implicitName returns the tag used for an element without a name.
func implicitName(parent string, cfg Config) string {
	if name, ok := implicitChildNames[parent]; ok {
		return name
	}

	if parent != "" && cfg.IsInline(parent) {
		return "span"
	}

	return "div"
}

func resolveImplicitNames(nodes []Node, parent string, cfg Config) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			if n.Name == "" {
				n.Name = implicitName(parent, cfg)
			}

			resolveImplicitNames(n.Children, n.Name, cfg)
		case *Group:
			resolveImplicitNames(n.Children, parent, cfg)
		}
	}
}
