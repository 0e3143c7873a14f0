package emmet

import "strings"

// StringifyStylesheet renders one declaration per line in parse order.
// Fields are renumbered across the whole output; indices repeated within a
// declaration share a tab stop.
func StringifyStylesheet(sheet *Stylesheet, cfg Config) string {
	var (
		b      strings.Builder
		fields fieldCounter
	)

	for i, decl := range sheet.Declarations {
		if i > 0 {
			b.WriteString(cfg.Newline)
		}

		b.WriteString(cfg.Text(decl.Property))
		b.WriteString(cfg.Text(cfg.Between))

		if decl.Value == "" {
			b.WriteString(cfg.Field(fields.next(), ""))
		} else {
			b.WriteString(renderValue(decl.Value, cfg, &fields, fieldScope{}))
		}

		if decl.Important {
			b.WriteString(" !important")
		}

		b.WriteString(cfg.Text(cfg.After))
	}

	return b.String()
}
