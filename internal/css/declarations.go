package css

import (
	"regexp"
	"strings"
)

var (
	separatorRegex  = regexp.MustCompile(`\s*;[\s;]*`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// SplitDeclarations splits a declaration block on ";" and each piece on its
// first ":". Pieces without a colon or without a property name are dropped.
// Values are kept verbatim, quoting is not interpreted.
func SplitDeclarations(block string) []Declaration {
	var out []Declaration
	for _, piece := range strings.Split(block, ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		property, value, found := strings.Cut(piece, ":")
		if !found {
			continue
		}
		property = strings.TrimSpace(property)
		if property == "" {
			continue
		}
		out = append(out, Declaration{Property: property, Value: strings.TrimSpace(value)})
	}
	return out
}

// Serialize joins declarations into an inline style string without a trailing
// semicolon
func Serialize(declarations []Declaration) string {
	parts := make([]string, 0, len(declarations))
	for _, d := range declarations {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return CleanStyle(strings.Join(parts, "; "))
}

// CleanStyle collapses repeated semicolons and whitespace and trims stray
// separators from both ends of an inline style string
func CleanStyle(style string) string {
	style = whitespaceRegex.ReplaceAllString(style, " ")
	style = separatorRegex.ReplaceAllString(style, "; ")
	style = strings.Trim(style, "; ")
	return style
}

// MergeBlocks applies declaration blocks in order into a fresh PropertyMap
func MergeBlocks(policies map[string]Policy, blocks ...string) *PropertyMap {
	m := NewPropertyMap(policies)
	for _, b := range blocks {
		m.ApplyBlock(b)
	}
	return m
}

// IsEmailSafeProperty checks if a CSS property is safe for email clients
func IsEmailSafeProperty(property string) bool {
	return safeProperties[strings.ToLower(property)]
}

// properties that work reliably across email clients
var safeProperties = map[string]bool{
	// text
	"color":           true,
	"font-family":     true,
	"font-size":       true,
	"font-weight":     true,
	"font-style":      true,
	"text-align":      true,
	"text-decoration": true,
	"text-transform":  true,
	"line-height":     true,
	"letter-spacing":  true,

	// box model
	"width":          true,
	"height":         true,
	"max-width":      true,
	"padding":        true,
	"padding-top":    true,
	"padding-right":  true,
	"padding-bottom": true,
	"padding-left":   true,
	"margin":         true,
	"margin-top":     true,
	"margin-right":   true,
	"margin-bottom":  true,
	"margin-left":    true,

	// background
	"background":       true,
	"background-color": true,
	"background-image": true,

	// border
	"border":        true,
	"border-top":    true,
	"border-right":  true,
	"border-bottom": true,
	"border-left":   true,
	"border-color":  true,
	"border-style":  true,
	"border-width":  true,
	"border-radius": true,

	// tables
	"border-collapse": true,
	"border-spacing":  true,
	"vertical-align":  true,
}
