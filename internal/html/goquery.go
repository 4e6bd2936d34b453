package html

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var styledSelector = cascadia.MustCompile("[style]")

// GoQueryDocument wraps goquery.Document to implement our Document interface
type GoQueryDocument struct {
	doc *goquery.Document
}

// GoQueryNode wraps goquery.Selection to implement our Node interface
type GoQueryNode struct {
	selection *goquery.Selection
}

// GoQueryParser implements our Parser interface using goquery
type GoQueryParser struct{}

// NewParser creates a new GoQuery-based HTML parser
func NewParser() *GoQueryParser {
	return &GoQueryParser{}
}

// Parse parses HTML string into a Document
func (p *GoQueryParser) Parse(htmlStr string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &GoQueryDocument{doc: doc}, nil
}

// QuerySelectorAll returns all elements matching the selector
func (d *GoQueryDocument) QuerySelectorAll(selector string) ([]Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return wrap(d.doc.FindMatcher(sel)), nil
}

// StyledElements returns every element carrying a style attribute
func (d *GoQueryDocument) StyledElements() []Node {
	return wrap(d.doc.FindMatcher(styledSelector))
}

// GetStyleTags returns all <style> elements
func (d *GoQueryDocument) GetStyleTags() []Node {
	return wrap(d.doc.Find("style"))
}

// Comments returns the text of every comment node in document order. MSO
// conditional blocks show up here since the parser keeps them as comments.
func (d *GoQueryDocument) Comments() []string {
	var comments []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.CommentNode {
			comments = append(comments, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range d.doc.Nodes {
		walk(n)
	}
	return comments
}

func wrap(selection *goquery.Selection) []Node {
	nodes := make([]Node, selection.Length())
	selection.Each(func(i int, s *goquery.Selection) {
		nodes[i] = &GoQueryNode{selection: s}
	})
	return nodes
}

// TagName returns the element's tag name
func (n *GoQueryNode) TagName() string {
	if n.selection.Length() == 0 {
		return ""
	}
	return goquery.NodeName(n.selection)
}

// Classes returns the element's class list
func (n *GoQueryNode) Classes() []string {
	class, _ := n.selection.Attr("class")
	return strings.Fields(class)
}

// Attr returns the value of the named attribute
func (n *GoQueryNode) Attr(name string) (string, bool) {
	return n.selection.Attr(name)
}

// InlineStyle returns the raw style attribute
func (n *GoQueryNode) InlineStyle() string {
	style, _ := n.selection.Attr("style")
	return style
}

// OuterHTML returns the element rendered back to markup
func (n *GoQueryNode) OuterHTML() string {
	if n.selection.Length() == 0 {
		return ""
	}
	var buf strings.Builder
	if err := html.Render(&buf, n.selection.Get(0)); err != nil {
		return ""
	}
	return buf.String()
}
