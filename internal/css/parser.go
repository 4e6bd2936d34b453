package css

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser turns CSS text into a flat selector -> declaration block Ruleset.
//
// Rules are matched as "selector { declarations }" without any notion of
// nesting: the inner rules of an @media block are picked up on their own and
// the at-rule prelude is glued to the first inner selector, so it never
// matches a class. The closing brace of such a block is dropped from the
// selector that follows it. A selector seen twice keeps its last declaration
// block.
type Parser struct {
	log       *zap.Logger
	ruleRegex *regexp.Regexp
}

// NewParser creates a new CSS parser with compiled regexes
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{
		log: log.Named("css-parser"),
		// selector { declarations }
		ruleRegex: regexp.MustCompile(`([^{]+)\{([^}]*)\}`),
	}
}

// Parse parses CSS text into a Ruleset
func (p *Parser) Parse(cssText string) Ruleset {
	rules := make(Ruleset)

	cssText = p.stripComments(cssText)

	for _, match := range p.ruleRegex.FindAllStringSubmatch(cssText, -1) {
		// "}" left over from an enclosing at-rule block
		selector := UnescapeSelector(strings.TrimLeft(match[1], "} \t\r\n\f"))
		selector = strings.TrimSpace(selector)
		if selector == "" {
			continue
		}
		if _, dup := rules[selector]; dup {
			p.log.Debug("Duplicate selector replaces earlier rule", zap.String("selector", selector))
		}
		rules[selector] = strings.TrimSpace(match[2])
	}

	p.log.Debug("Parsed CSS", zap.Int("bytes", len(cssText)), zap.Int("rules", len(rules)))
	return rules
}

// UnescapeSelector turns Tailwind style escapes ("hover\:bg-blue-500",
// "w-1\/2", "p-0\.5") back into the literal class text used in markup.
// Hexadecimal escapes are left alone.
func UnescapeSelector(selector string) string {
	if !strings.Contains(selector, `\`) {
		return selector
	}
	return simpleEscapeRegex.ReplaceAllString(selector, "$1")
}

// a backslash followed by anything but a hex digit or a line break
var simpleEscapeRegex = regexp.MustCompile(`\\([^0-9a-fA-F\r\n])`)

// stripComments removes /* ... */ comments using the CSS lexer so that comment
// text does not leak into the following selector. Everything else is copied
// through byte for byte. On lexer failure the input is returned unchanged.
func (p *Parser) stripComments(cssText string) string {
	if !strings.Contains(cssText, "/*") {
		return cssText
	}

	lexer := css.NewLexer(parse.NewInput(strings.NewReader(cssText)))
	var out bytes.Buffer
	out.Grow(len(cssText))

	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				p.log.Debug("CSS lexer failed, keeping comments", zap.Error(err))
				return cssText
			}
			return out.String()
		case css.CommentToken:
			continue
		default:
			out.Write(data)
		}
	}
}
