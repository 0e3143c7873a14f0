package emmet

import "strings"

// stylesheetSnippets maps property abbreviations to "property" or
// "property:keyword|keyword" or "property:template".
var stylesheetSnippets = map[string]string{
	"m":  "margin",
	"mt": "margin-top",
	"mr": "margin-right",
	"mb": "margin-bottom",
	"ml": "margin-left",
	"p":  "padding",
	"pt": "padding-top",
	"pr": "padding-right",
	"pb": "padding-bottom",
	"pl": "padding-left",

	"w":   "width",
	"h":   "height",
	"maw": "max-width",
	"mah": "max-height",
	"miw": "min-width",
	"mih": "min-height",
	"t":   "top",
	"r":   "right",
	"b":   "bottom",
	"l":   "left",
	"z":   "z-index",

	"d":   "display:block|none|flex|inline-flex|inline|inline-block|grid|inline-grid|contents|table|list-item",
	"pos": "position:relative|absolute|fixed|static|sticky",
	"fl":  "float:left|right|none",
	"cl":  "clear:both|left|right|none",
	"v":   "visibility:hidden|visible|collapse",
	"ov":  "overflow:hidden|auto|scroll|visible",
	"ovx": "overflow-x:hidden|auto|scroll|visible",
	"ovy": "overflow-y:hidden|auto|scroll|visible",
	"bxz": "box-sizing:border-box|content-box",
	"cur": "cursor:pointer|default|auto|text|move|wait|help|not-allowed",

	"c":   "color:${1:#000}",
	"op":  "opacity",
	"bg":  "background:${1:#000}",
	"bgc": "background-color:${1:#fff}",
	"bgi": "background-image:url(${1})",
	"bgr": "background-repeat:no-repeat|repeat-x|repeat-y|repeat",
	"bgp": "background-position:${1:0} ${2:0}",
	"bgs": "background-size:cover|contain",

	"bd":   "border:${1:1px} ${2:solid} ${3:#000}",
	"bdt":  "border-top:${1:1px} ${2:solid} ${3:#000}",
	"bdr":  "border-right:${1:1px} ${2:solid} ${3:#000}",
	"bdb":  "border-bottom:${1:1px} ${2:solid} ${3:#000}",
	"bdl":  "border-left:${1:1px} ${2:solid} ${3:#000}",
	"bdrs": "border-radius",
	"bdc":  "border-color:${1:#000}",
	"bds":  "border-style:solid|dashed|dotted|double|none",
	"bdw":  "border-width",

	"ff":  "font-family:serif|sans-serif|monospace|cursive|fantasy",
	"fz":  "font-size",
	"fw":  "font-weight:bold|normal|bolder|lighter",
	"fs":  "font-style:italic|normal|oblique",
	"lh":  "line-height",
	"ta":  "text-align:left|center|right|justify",
	"td":  "text-decoration:none|underline|overline|line-through",
	"tt":  "text-transform:uppercase|lowercase|capitalize|none",
	"ti":  "text-indent",
	"va":  "vertical-align:top|middle|bottom|baseline",
	"ws":  "white-space:nowrap|normal|pre|pre-wrap|pre-line",
	"lts": "letter-spacing",

	"fx":  "flex",
	"fxd": "flex-direction:row|row-reverse|column|column-reverse",
	"fxw": "flex-wrap:wrap|nowrap|wrap-reverse",
	"fxg": "flex-grow",
	"fxs": "flex-shrink",
	"fxb": "flex-basis",
	"jc":  "justify-content:center|flex-start|flex-end|space-between|space-around|space-evenly",
	"ai":  "align-items:center|flex-start|flex-end|baseline|stretch",
	"ac":  "align-content:center|flex-start|flex-end|space-between|space-around|stretch",
	"as":  "align-self:center|flex-start|flex-end|baseline|stretch|auto",
	"ord": "order",
	"gap": "gap",
	"gtc": "grid-template-columns:repeat(${1:2}, ${2:1fr})",
	"gtr": "grid-template-rows:repeat(${1:2}, ${2:1fr})",

	"trf":  "transform:${1}",
	"trs":  "transition:${1:all} ${2:0.3s} ${3:ease}",
	"anim": "animation:${1:name} ${2:1s}",
	"bxsh": "box-shadow:${1:0} ${2:0} ${3:0} ${4:#000}",
	"tsh":  "text-shadow:${1:0} ${2:0} ${3:0} ${4:#000}",
	"cnt":  "content:'${1}'",
	"lis":  "list-style:none|disc|circle|square|decimal",
}

// cssSnippet is a parsed stylesheet snippet.
type cssSnippet struct {
	property string
	keywords []string
	template string
}

func parseCSSSnippet(s string) cssSnippet {
	property, value, ok := strings.Cut(s, ":")
	if !ok {
		return cssSnippet{property: strings.TrimSpace(s)}
	}

	snip := cssSnippet{property: strings.TrimSpace(property)}

	value = strings.TrimSpace(value)
	if strings.Contains(value, "${") {
		snip.template = value
	} else if value != "" {
		snip.keywords = strings.Split(value, "|")
	}

	return snip
}

// defaultValue is the value used when the abbreviation supplies none.
func (s cssSnippet) defaultValue() string {
	switch {
	case s.template != "":
		return s.template
	case len(s.keywords) > 0:
		return "${1:" + s.keywords[0] + "}"
	default:
		return ""
	}
}

// matchKeyword resolves an abbreviated keyword: exact, then prefix, then
// letters in order starting with the same letter.
func matchKeyword(abbr string, keywords []string) (string, bool) {
	if abbr == "" {
		return "", false
	}

	for _, kw := range keywords {
		if kw == abbr {
			return kw, true
		}
	}

	for _, kw := range keywords {
		if strings.HasPrefix(kw, abbr) {
			return kw, true
		}
	}

	for _, kw := range keywords {
		if kw != "" && kw[0] == abbr[0] && inOrder(abbr, kw) {
			return kw, true
		}
	}

	return "", false
}

func inOrder(abbr, word string) bool {
	i := 0
	for _, r := range word {
		if i < len(abbr) && rune(abbr[i]) == r {
			i++
		}
	}

	return i == len(abbr)
}
