package emmet

// Node is a markup tree node: *Element, *Text or *Group.
type Node interface {
	markupNode()
}

// Repeater describes a *n multiplier. Before unrolling only Count and Pos
// are set; each unrolled copy carries its 0-based Index.
type Repeater struct {
	Count int
	Index int

	// Pos is the rune offset of the '*'.
	Pos int
}

// Attribute is an explicit [name=value] attribute. Boolean attributes
// ([disabled.]) have no value.
type Attribute struct {
	Name    string
	Value   string
	Boolean bool
}

// Element is a tag with its shorthand modifiers. An empty Name is resolved
// from the parent during parsing.
type Element struct {
	Name       string
	ID         string
	Classes    []string
	Attributes []Attribute

	// Value is the {text} content; HasValue distinguishes {} from no text.
	Value    string
	HasValue bool

	Children  []Node
	Repeat    *Repeater
	SelfClose bool

	Pos int
}

// Text is a standalone {text} node.
type Text struct {
	Value  string
	Repeat *Repeater
	Pos    int
}

// Group is a parenthesized sequence. Groups only exist while parsing.
type Group struct {
	Children []Node
	Repeat   *Repeater
	Pos      int
}

func (*Element) markupNode() {}
func (*Text) markupNode()    {}
func (*Group) markupNode()   {}

// Abbreviation is the parsed markup tree ready for serialization.
type Abbreviation struct {
	Children []Node
}

// container is a node that accepts children while parsing.
type container interface {
	appendChild(n Node)
}

func (e *Element) appendChild(n Node) { e.Children = append(e.Children, n) }
func (g *Group) appendChild(n Node)   { g.Children = append(g.Children, n) }

func cloneNode(n Node) Node {
	switch n := n.(type) {
	case *Element:
		return cloneElement(n)
	case *Text:
		c := *n
		c.Repeat = cloneRepeater(n.Repeat)

		return &c
	case *Group:
		c := *n
		c.Repeat = cloneRepeater(n.Repeat)
		c.Children = cloneNodes(n.Children)

		return &c
	default:
		panic("emmet: unknown node type")
	}
}

func cloneElement(e *Element) *Element {
	c := *e
	c.Classes = append([]string(nil), e.Classes...)
	c.Attributes = append([]Attribute(nil), e.Attributes...)
	c.Children = cloneNodes(e.Children)
	c.Repeat = cloneRepeater(e.Repeat)

	return &c
}

func cloneNodes(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}

	return out
}

func cloneRepeater(r *Repeater) *Repeater {
	if r == nil {
		return nil
	}

	c := *r

	return &c
}

// lastElement returns the element that receives children when a node is
// followed by '>': the node itself, or the last element inside a group.
func lastElement(n Node) *Element {
	switch n := n.(type) {
	case *Element:
		return n
	case *Group:
		for i := len(n.Children) - 1; i >= 0; i-- {
			if e := lastElement(n.Children[i]); e != nil {
				return e
			}
		}
	}

	return nil
}

// deepestLastElement follows the last element child down the tree.
func deepestLastElement(nodes []Node) *Element {
	var found *Element

	for i := len(nodes) - 1; i >= 0; i-- {
		if e := lastElement(nodes[i]); e != nil {
			found = e
			break
		}
	}

	if found == nil {
		return nil
	}

	if deeper := deepestLastElement(found.Children); deeper != nil {
		return deeper
	}

	return found
}
