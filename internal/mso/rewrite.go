package mso

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	nethtml "golang.org/x/net/html"

	"emailcss/internal/css"
	"emailcss/internal/html"
)

var (
	// <!--[if mso]>, <!--[if gte mso 9]> ... <![endif]-->; [if !mso] is not Outlook-only
	blockRegex = regexp.MustCompile(`(?is)(<!--\[if\s+(?:[gl]te?\s+)?mso\b[^\]]*\]>)(.*?)(<!\[endif\]-->)`)

	divOpenRegex    = regexp.MustCompile(`(?i)<div\b[^>]*>`)
	divTagRegex     = regexp.MustCompile(`(?i)<div\b[^>]*>|</div\s*>`)
	classAttrRegex  = regexp.MustCompile(`\sclass="([^"]*)"`)
	styleAttrRegex  = regexp.MustCompile(`\sstyle="([^"]*)"`)
	widthClassRegex = regexp.MustCompile(`w-\d+/\d+|w-full`)

	flexDeclRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)display\s*:\s*flex\s*;?`),
		regexp.MustCompile(`(?i)flex-direction\s*:[^;]*;?`),
		regexp.MustCompile(`(?i)justify-content\s*:[^;]*;?`),
		regexp.MustCompile(`(?i)align-items\s*:[^;]*;?`),
	}
	// the shorthand must not be the tail of another property name
	flexShorthandRegex = regexp.MustCompile(`(?i)(^|[;\s])flex\s*:[^;]*;?`)

	// plain width only, max-width and min-width are not matched
	widthDeclRegex = regexp.MustCompile(`(?i)(^|[;\s])width\s*:[^;]*;?`)
)

const tableOpen = `<table role="presentation" width="100%" border="0" cellspacing="0" cellpadding="0"><tr>`

// Rewriter replaces flex rows inside Outlook conditional comments with
// presentation tables, since Word based Outlook ignores display:flex
type Rewriter struct {
	width int
	log   *zap.Logger
}

// NewRewriter creates a rewriter sizing columns out of width pixels. A
// non-positive width means DefaultTableWidth.
func NewRewriter(width int, log *zap.Logger) *Rewriter {
	if width <= 0 {
		width = DefaultTableWidth
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rewriter{width: width, log: log.Named("mso")}
}

type column struct {
	class string
	style string
	inner string
}

// Rewrite converts every qualifying flex container found in an MSO
// conditional block and returns the new document along with the number of
// containers converted. Markup outside MSO blocks is never touched.
func (r *Rewriter) Rewrite(document string) (string, int) {
	converted := 0
	out := blockRegex.ReplaceAllStringFunc(document, func(block string) string {
		m := blockRegex.FindStringSubmatch(block)
		body, n := r.rewriteFragment(m[2])
		converted += n
		return m[1] + body + m[3]
	})
	if converted > 0 {
		r.log.Debug("Converted flex rows to tables", zap.Int("rows", converted))
	}
	return out, converted
}

// rewriteFragment walks the div elements of s. A div whose class mentions
// "flex" and that holds at least two width columns is replaced by a table;
// anything else is kept and its content examined further.
func (r *Rewriter) rewriteFragment(s string) (string, int) {
	var b strings.Builder
	converted := 0
	pos := 0

	for {
		loc := divOpenRegex.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		openStart, openEnd := pos+loc[0], pos+loc[1]

		if !strings.Contains(classOf(s[openStart:openEnd]), "flex") {
			b.WriteString(s[pos:openEnd])
			pos = openEnd
			continue
		}
		innerEnd, end := matchingClose(s, openEnd)
		if end < 0 {
			b.WriteString(s[pos:openEnd])
			pos = openEnd
			continue
		}
		columns := findColumns(s[openEnd:innerEnd])
		if len(columns) < 2 {
			b.WriteString(s[pos:openEnd])
			pos = openEnd
			continue
		}

		b.WriteString(s[pos:openStart])
		n := r.writeTable(&b, columns)
		converted += n + 1
		pos = end
	}
	b.WriteString(s[pos:])
	return b.String(), converted
}

func (r *Rewriter) writeTable(b *strings.Builder, columns []column) int {
	nested := 0
	b.WriteString(tableOpen)
	for _, c := range columns {
		px := strconv.Itoa(ColumnWidth(c.class, r.width))
		style := "width: " + px + "px"
		if cleaned := columnStyle(c.style); cleaned != "" {
			style += "; " + cleaned
		}
		inner, n := r.rewriteFragment(c.inner)
		nested += n

		b.WriteString(`<td width="`)
		b.WriteString(px)
		b.WriteString(`" valign="top" style="`)
		b.WriteString(html.EscapeStyle(style))
		b.WriteString(`">`)
		b.WriteString(inner)
		b.WriteString(`</td>`)
	}
	b.WriteString(`</tr></table>`)
	return nested
}

// findColumns returns the non-overlapping divs of content carrying a width
// utility class, at any depth, in document order
func findColumns(content string) []column {
	var columns []column
	pos := 0
	for {
		loc := divOpenRegex.FindStringIndex(content[pos:])
		if loc == nil {
			return columns
		}
		openStart, openEnd := pos+loc[0], pos+loc[1]
		open := content[openStart:openEnd]

		class := classOf(open)
		if !widthClassRegex.MatchString(class) {
			pos = openEnd
			continue
		}
		innerEnd, end := matchingClose(content, openEnd)
		if end < 0 {
			return columns
		}
		columns = append(columns, column{
			class: class,
			style: styleOf(open),
			inner: content[openEnd:innerEnd],
		})
		pos = end
	}
}

// matchingClose finds the </div> balancing a div whose opening tag ends at
// from. It returns the start and end of that closing tag, or -1, -1.
func matchingClose(s string, from int) (int, int) {
	depth := 1
	for _, m := range divTagRegex.FindAllStringIndex(s[from:], -1) {
		tag := s[from+m[0] : from+m[1]]
		switch {
		case strings.HasPrefix(tag, "</"):
			depth--
			if depth == 0 {
				return from + m[0], from + m[1]
			}
		case strings.HasSuffix(tag, "/>"):
		default:
			depth++
		}
	}
	return -1, -1
}

func classOf(openTag string) string {
	if m := classAttrRegex.FindStringSubmatch(openTag); m != nil {
		return m[1]
	}
	return ""
}

// styleOf returns the entity decoded style attribute of openTag
func styleOf(openTag string) string {
	if m := styleAttrRegex.FindStringSubmatch(openTag); m != nil {
		return nethtml.UnescapeString(m[1])
	}
	return ""
}

// columnStyle is the style a column keeps on its cell: flex layout is gone
// and the pixel width set by the cell replaces any width of its own
func columnStyle(style string) string {
	style = StripFlexDeclarations(style)
	return css.CleanStyle(widthDeclRegex.ReplaceAllString(style, "${1}"))
}

// StripFlexDeclarations removes display:flex, flex-direction, justify-content,
// align-items and flex declarations from an inline style
func StripFlexDeclarations(style string) string {
	for _, re := range flexDeclRegexes {
		style = re.ReplaceAllString(style, "")
	}
	style = flexShorthandRegex.ReplaceAllString(style, "${1}")
	return css.CleanStyle(style)
}
