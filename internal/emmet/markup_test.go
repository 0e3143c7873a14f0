package emmet

import (
	"errors"
	"strings"
	"testing"

	"github.com/ericchiang/css"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"kr.dev/diff"
)

func plainConfig(t *testing.T, syntax Syntax) Config {
	t.Helper()

	cfg, errs := ResolveConfig(syntax, Overrides{})
	require.Empty(t, errs)

	return cfg
}

func snippetConfig(t *testing.T, syntax Syntax) Config {
	t.Helper()

	cfg, errs := ResolveConfig(syntax, Overrides{Field: SnippetField, Text: EscapeSnippet})
	require.Empty(t, errs)

	return cfg
}

func expandMarkup(t *testing.T, abbr string, cfg Config) string {
	t.Helper()

	tree, err := ParseMarkup(abbr, cfg)
	require.NoError(t, err, abbr)

	return StringifyMarkup(tree, cfg)
}

func TestMarkupExpansion(t *testing.T) {
	tests := []struct {
		name string
		abbr string
		want string
	}{
		{
			name: "multiplication",
			abbr: "li*3",
			want: "<li></li>\n<li></li>\n<li></li>",
		},
		{
			name: "numbered classes",
			abbr: "li.item$*3",
			want: "<li class=\"item1\"></li>\n<li class=\"item2\"></li>\n<li class=\"item3\"></li>",
		},
		{
			name: "padded numbering",
			abbr: "li.item$$*2",
			want: "<li class=\"item01\"></li>\n<li class=\"item02\"></li>",
		},
		{
			name: "reversed numbering",
			abbr: "li.item$@-*3",
			want: "<li class=\"item3\"></li>\n<li class=\"item2\"></li>\n<li class=\"item1\"></li>",
		},
		{
			name: "numbering base",
			abbr: "li.item$@3*2",
			want: "<li class=\"item3\"></li>\n<li class=\"item4\"></li>",
		},
		{
			name: "numbering outside a multiplier",
			abbr: "div.col$",
			want: "<div class=\"col1\"></div>",
		},
		{
			name: "climb up",
			abbr: "div>span^p",
			want: "<div><span></span></div>\n<p></p>",
		},
		{
			name: "double climb",
			abbr: "div>p>span^^h1",
			want: "<div>\n\t<p><span></span></p>\n</div>\n<h1></h1>",
		},
		{
			name: "climb past root",
			abbr: "div^^^p",
			want: "<div></div>\n<p></p>",
		},
		{
			name: "child and sibling",
			abbr: "ul>li+li",
			want: "<ul>\n\t<li></li>\n\t<li></li>\n</ul>",
		},
		{
			name: "group",
			abbr: "(header>nav)+footer",
			want: "<header>\n\t<nav></nav>\n</header>\n<footer></footer>",
		},
		{
			name: "repeated group",
			abbr: "(dt+dd)*2",
			want: "<dt></dt>\n<dd></dd>\n<dt></dt>\n<dd></dd>",
		},
		{
			name: "child of group",
			abbr: "(div+section)>p",
			want: "<div></div>\n<section>\n\t<p></p>\n</section>",
		},
		{
			name: "numbered text child",
			abbr: "li*2>{Item $}",
			want: "<li>Item 1</li>\n<li>Item 2</li>",
		},
		{
			name: "numbered element text",
			abbr: "p{Step $}*2",
			want: "<p>Step 1</p>\n<p>Step 2</p>",
		},
		{
			name: "escaped dollar",
			abbr: `p{\$5}`,
			want: "<p>$5</p>",
		},
		{
			name: "attribute order",
			abbr: "div.a#b.c[data-x=1]",
			want: "<div id=\"b\" class=\"a c\" data-x=\"1\"></div>",
		},
		{
			name: "explicit class merges",
			abbr: "div.a[class=b]",
			want: "<div class=\"a b\"></div>",
		},
		{
			name: "quoted attribute",
			abbr: `div[title="Hello world"]`,
			want: "<div title=\"Hello world\"></div>",
		},
		{
			name: "implicit list item",
			abbr: "ul>.a",
			want: "<ul>\n\t<li class=\"a\"></li>\n</ul>",
		},
		{
			name: "implicit table cells",
			abbr: "table>.row>.cell",
			want: "<table>\n\t<tr class=\"row\">\n\t\t<td class=\"cell\"></td>\n\t</tr>\n</table>",
		},
		{
			name: "implicit inline",
			abbr: "em>.x",
			want: "<em><span class=\"x\"></span></em>",
		},
		{
			name: "implicit block",
			abbr: ".x",
			want: "<div class=\"x\"></div>",
		},
		{
			name: "void element",
			abbr: "br",
			want: "<br>",
		},
		{
			name: "self close",
			abbr: "div/",
			want: "<div>",
		},
		{
			name: "inline children below break",
			abbr: "p>b*2",
			want: "<p><b></b><b></b></p>",
		},
		{
			name: "inline children at break",
			abbr: "p>b*3",
			want: "<p>\n\t<b></b>\n\t<b></b>\n\t<b></b>\n</p>",
		},
		{
			name: "snippet merges typed attributes",
			abbr: `a[href=#top title="Go up"]{Top}`,
			want: "<a href=\"#top\" title=\"Go up\">Top</a>",
		},
		{
			name: "snippet with boolean attribute",
			abbr: "input[disabled.]",
			want: "<input type=\"text\" disabled>",
		},
		{
			name: "snippet keeps repeat",
			abbr: "btn.b$*2",
			want: "<button class=\"b1\"></button>\n<button class=\"b2\"></button>",
		},
	}

	cfg := plainConfig(t, SyntaxMarkup)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff.Test(t, t.Errorf, expandMarkup(t, tt.abbr, cfg), tt.want)
		})
	}
}

func TestMarkupFields(t *testing.T) {
	cfg := snippetConfig(t, SyntaxMarkup)

	tests := []struct {
		abbr string
		want string
	}{
		{"ul>li*2", "<ul>\n\t<li>${1}</li>\n\t<li>${2}</li>\n</ul>"},
		{"a", "<a href=\"${1}\">${2}</a>"},
		{"img", "<img src=\"${1}\" alt=\"${2}\">"},
		{"p{${1:hello}}+p{${1}}", "<p>${1:hello}</p>\n<p>${2}</p>"},
		{"p{${1:a} ${1:a}}", "<p>${1:a} ${1:a}</p>"},
		{`p{a\}b}`, `<p>a\}b</p>`},
		{"div[title=${1:x}]>p", "<div title=\"${1:x}\">\n\t<p>${2}</p>\n</div>"},
	}

	for _, tt := range tests {
		t.Run(tt.abbr, func(t *testing.T) {
			assert.Equal(t, tt.want, expandMarkup(t, tt.abbr, cfg))
		})
	}
}

func TestMarkupSelfClosingStyles(t *testing.T) {
	tests := []struct {
		style string
		want  string
	}{
		{SelfClosingHTML, "<input type=\"text\" disabled><div>"},
		{SelfClosingXHTML, "<input type=\"text\" disabled=\"disabled\" /><div />"},
		{SelfClosingXML, "<input type=\"text\" disabled=\"disabled\"/><div/>"},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			style := tt.style
			newline := "\n"
			cfg, errs := ResolveConfig(SyntaxMarkup, Overrides{SelfClosingStyle: &style, Newline: &newline})
			require.Empty(t, errs)

			got := expandMarkup(t, "input[disabled.]+div/", cfg)
			assert.Equal(t, tt.want, strings.ReplaceAll(got, "\n", ""))
		})
	}
}

func TestMarkupErrors(t *testing.T) {
	tests := []struct {
		abbr string
		pos  int
	}{
		{"div>", 3},
		{">div", 0},
		{"div+", 3},
		{"li*0", 2},
		{"li*", 2},
		{"(div", 0},
		{"div)", 3},
		{"()", 0},
		{"div[title", 3},
		{"div{x", 3},
		{"div]", 3},
		{".", 0},
		{"div#", 3},
		{"{a}>p", 3},
		{"div>*2", 4},
	}

	cfg := plainConfig(t, SyntaxMarkup)

	for _, tt := range tests {
		t.Run(tt.abbr, func(t *testing.T) {
			_, err := ParseMarkup(tt.abbr, cfg)
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
			assert.Equal(t, tt.pos, pe.Pos)
			assert.Equal(t, tt.abbr, pe.Abbreviation)
		})
	}
}

func TestMarkupExpansionBudget(t *testing.T) {
	cfg := plainConfig(t, SyntaxMarkup)

	tests := []struct {
		abbr string
		pos  int
	}{
		{"li*1000000", 2},
		{"(li*1000)*1000", 9},
		{"ul>li*1000", 5},
		{"li*600+li*600", 9},
		{"div>(p>span*40)*40", 15},
		{"li*99999999999999999999999", 2},
	}

	for _, tt := range tests {
		t.Run(tt.abbr, func(t *testing.T) {
			_, err := ParseMarkup(tt.abbr, cfg)

			var pe *ParseError
			require.True(t, errors.As(err, &pe), "want *ParseError, got %v", err)
			assert.Equal(t, tt.pos, pe.Pos)
		})
	}

	tree, err := ParseMarkup("li*1000", cfg)
	require.NoError(t, err)
	assert.Len(t, tree.Children, 1000)

	_, err = ParseMarkup("ul>li*999", cfg)
	assert.NoError(t, err)

	small := cfg
	small.MaxElements = 3

	_, err = ParseMarkup("ul>li*2", small)
	assert.NoError(t, err)

	_, err = ParseMarkup("ul>li*3", small)
	assert.Error(t, err)
}

func TestMarkupEmpty(t *testing.T) {
	_, err := ParseMarkup("", plainConfig(t, SyntaxMarkup))
	assert.Error(t, err)
}

func TestMarkupStructure(t *testing.T) {
	cfg := plainConfig(t, SyntaxMarkup)
	out := expandMarkup(t, "ul#nav>li.item$*3>a{Link $}", cfg)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	tests := []struct {
		selector string
		count    int
	}{
		{"ul#nav", 1},
		{"ul#nav > li", 3},
		{"li.item2 > a", 1},
		{"li > a[href]", 3},
		{"li.item4", 0},
	}

	for _, tt := range tests {
		sel, err := css.Parse(tt.selector)
		require.NoError(t, err)
		assert.Len(t, sel.Select(doc), tt.count, tt.selector)
	}

	sel, err := css.Parse("li.item3 > a")
	require.NoError(t, err)

	links := sel.Select(doc)
	require.Len(t, links, 1)
	require.NotNil(t, links[0].FirstChild)
	assert.Equal(t, "Link 3", links[0].FirstChild.Data)
}

func TestHTMLSkeleton(t *testing.T) {
	cfg := plainConfig(t, SyntaxMarkup)
	out := expandMarkup(t, "!", cfg)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n<html lang=\"en\">"), out)

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	for selector, count := range map[string]int{
		"html[lang=en]":        1,
		"head > meta[charset]": 1,
		"meta[name=viewport]":  1,
		"head > title":         1,
		"html > body":          1,
	} {
		sel, err := css.Parse(selector)
		require.NoError(t, err)
		assert.Len(t, sel.Select(doc), count, selector)
	}
}

func TestMarkupDeterministic(t *testing.T) {
	cfg := snippetConfig(t, SyntaxMarkup)

	for _, abbr := range []string{
		"ul>li.item$*5>a",
		"div#a.b.c[x=1 y=2 z]{t}",
		"(header>nav>ul>li*3)+main+footer",
		"!",
	} {
		first := expandMarkup(t, abbr, cfg)
		second := expandMarkup(t, abbr, cfg)
		assert.Equal(t, first, second, abbr)
	}
}
