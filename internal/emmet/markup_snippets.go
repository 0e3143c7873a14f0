package emmet

import "slices"

// markupSnippets maps element names to the abbreviation they stand for.
var markupSnippets = map[string]string{
	"!": "{<!DOCTYPE html>}+html[lang=en]>(head>meta[charset=UTF-8]+meta:vp+title{${1:Document}})+body",

	"a":          "a[href]",
	"a:link":     "a[href=http://]",
	"a:mail":     "a[href=mailto:]",
	"a:tel":      "a[href=tel:+]",
	"img":        "img[src alt]",
	"input":      "input[type=text]",
	"label":      "label[for]",
	"link":       "link[rel=stylesheet href]",
	"link:css":   "link[rel=stylesheet href=style.css]",
	"meta:vp":    `meta[name=viewport content="width=device-width, initial-scale=1.0"]`,
	"script:src": "script[src]",

	"form":      "form[action]",
	"form:get":  "form[action method=get]",
	"form:post": "form[action method=post]",
	"select":    "select[name id]",
	"textarea":  "textarea[name id cols=30 rows=10]",
	"iframe":    "iframe[src frameborder=0]",
	"btn":       "button",
	"btn:s":     "button[type=submit]",
	"btn:r":     "button[type=reset]",

	"input:hidden":   "input[type=hidden name]",
	"input:text":     "input[type=text name id]",
	"input:search":   "input[type=search name id]",
	"input:email":    "input[type=email name id]",
	"input:url":      "input[type=url name id]",
	"input:password": "input[type=password name id]",
	"input:number":   "input[type=number name id]",
	"input:date":     "input[type=date name id]",
	"input:checkbox": "input[type=checkbox name id]",
	"input:radio":    "input[type=radio name id]",
	"input:file":     "input[type=file name id]",
	"input:submit":   "input[type=submit value]",
	"input:button":   "input[type=button value]",
	"input:reset":    "input[type=reset value]",
}

// resolveSnippets replaces elements whose name is a snippet with the
// snippet's tree. active holds the snippet names being expanded so that a
// snippet never resolves itself.
func resolveSnippets(nodes []Node, cfg Config, active []string) []Node {
	out := make([]Node, 0, len(nodes))

	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			n.Children = resolveSnippets(n.Children, cfg, active)
			out = append(out, expandSnippet(n, cfg, active))
		case *Group:
			n.Children = resolveSnippets(n.Children, cfg, active)
			out = append(out, n)
		case *Text:
			out = append(out, n)
		}
	}

	return out
}

func expandSnippet(el *Element, cfg Config, active []string) Node {
	abbr, ok := cfg.markupSnippet(el.Name)
	if !ok || slices.Contains(active, el.Name) {
		return el
	}

	nodes, err := parseMarkupTree(abbr)
	if err != nil {
		// A broken user snippet leaves the element as typed.
		return el
	}

	nodes = resolveSnippets(nodes, cfg, append(slices.Clone(active), el.Name))

	if len(nodes) == 1 {
		if root, ok := nodes[0].(*Element); ok && root.Repeat == nil {
			mergeElement(root, el)
			return root
		}
	}

	group := &Group{Children: nodes, Repeat: el.Repeat, Pos: el.Pos}
	if target := deepestLastElement(nodes); target != nil {
		target.Children = append(target.Children, el.Children...)
	}

	return group
}

// mergeElement copies what the user typed onto the snippet root.
func mergeElement(root, typed *Element) {
	root.Pos = typed.Pos

	if typed.ID != "" {
		root.ID = typed.ID
	}

	for _, c := range typed.Classes {
		if !slices.Contains(root.Classes, c) {
			root.Classes = append(root.Classes, c)
		}
	}

	for _, attr := range typed.Attributes {
		i := slices.IndexFunc(root.Attributes, func(a Attribute) bool { return a.Name == attr.Name })
		if i >= 0 {
			root.Attributes[i] = attr
		} else {
			root.Attributes = append(root.Attributes, attr)
		}
	}

	if typed.HasValue {
		root.Value = typed.Value
		root.HasValue = true
	}

	root.Repeat = typed.Repeat
	root.SelfClose = root.SelfClose || typed.SelfClose
	root.Children = append(root.Children, typed.Children...)
}
