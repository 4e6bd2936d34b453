package html

import (
	"regexp"
	"sort"
	"strings"
)

var (
	spaceRunRegex = regexp.MustCompile(`\s+`)

	// written style attributes are always double quoted
	styleEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")
)

// EscapeStyle makes a decoded inline style safe to place between double quotes
func EscapeStyle(style string) string {
	return styleEscaper.Replace(style)
}

// RewriteTag rebuilds the opening tag of el with every existing style
// attribute removed and a single style attribute carrying style appended.
// style is taken decoded, as found in ExistingStyle, and escaped on output.
func RewriteTag(el ScannedElement, style string) string {
	attrs := styleAttrRegex.ReplaceAllString(el.Attributes, "")
	attrs = strings.TrimSpace(spaceRunRegex.ReplaceAllString(attrs, " "))

	selfClosing := strings.HasSuffix(attrs, "/")
	if selfClosing {
		attrs = strings.TrimSpace(strings.TrimSuffix(attrs, "/"))
	}

	var b strings.Builder
	b.Grow(len(el.FullMatch) + len(style) + 10)
	b.WriteByte('<')
	b.WriteString(el.Tag)
	if attrs != "" {
		b.WriteByte(' ')
		b.WriteString(attrs)
	}
	b.WriteString(` style="`)
	b.WriteString(EscapeStyle(style))
	b.WriteByte('"')
	if selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}

// ApplyEdits applies non-overlapping span edits to document in a single pass.
// Edits may be given in any order; an edit overlapping an earlier one is
// dropped.
func ApplyEdits(document string, edits []Edit) string {
	if len(edits) == 0 {
		return document
	}

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(document))

	pos := 0
	for _, e := range sorted {
		if e.Start < pos || e.End < e.Start || e.End > len(document) {
			continue
		}
		b.WriteString(document[pos:e.Start])
		b.WriteString(e.Text)
		pos = e.End
	}
	b.WriteString(document[pos:])
	return b.String()
}
