package html

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	// <tag ... class="..." ...>, class must be preceded by whitespace
	elementRegex = regexp.MustCompile(`<([a-zA-Z][a-zA-Z0-9:-]*)(\s(?:[^>]*?\s)?class="([^"]*)"[^>]*)>`)

	styleRegex     = regexp.MustCompile(`(?:^|\s)style="([^"]*)"`)
	styleAttrRegex = regexp.MustCompile(`(?:^|\s+)style="[^"]*"`)
	styleTagRegex  = regexp.MustCompile(`(?is)<style[^>]*>(.*?)</style>`)
)

// Scan returns every opening tag that carries a double quoted class attribute.
// This is plain pattern matching over the text: tags inside comments are
// found as well, and a ">" inside an attribute value ends the tag early.
func Scan(document string) []ScannedElement {
	matches := elementRegex.FindAllStringSubmatchIndex(document, -1)
	elements := make([]ScannedElement, 0, len(matches))

	for _, m := range matches {
		attrs := document[m[4]:m[5]]
		el := ScannedElement{
			Tag:        document[m[2]:m[3]],
			FullMatch:  document[m[0]:m[1]],
			Attributes: attrs,
			Classes:    strings.Fields(document[m[6]:m[7]]),
			Start:      m[0],
			End:        m[1],
		}
		if sm := styleRegex.FindStringSubmatch(attrs); sm != nil {
			el.ExistingStyle = html.UnescapeString(sm[1])
		}
		elements = append(elements, el)
	}
	return elements
}

// StyleBlocks returns the contents of every <style> element in document order
func StyleBlocks(document string) []string {
	var blocks []string
	for _, m := range styleTagRegex.FindAllStringSubmatch(document, -1) {
		blocks = append(blocks, m[1])
	}
	return blocks
}

// RemoveStyleTags strips every <style>...</style> element
func RemoveStyleTags(document string) string {
	return styleTagRegex.ReplaceAllString(document, "")
}
