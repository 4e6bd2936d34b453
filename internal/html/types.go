package html

// ScannedElement is one opening tag carrying a class attribute, in document
// order
type ScannedElement struct {
	Tag           string   // element tag name as written
	FullMatch     string   // exact opening tag text, "<tag ...>"
	Attributes    string   // raw attribute text between the tag name and ">"
	Classes       []string // class tokens in order, empty tokens dropped
	ExistingStyle string   // entity decoded value of a style="..." attribute, or ""

	// byte span of FullMatch inside the scanned document
	Start int
	End   int
}

// Edit replaces the byte span [Start, End) of a document with Text
type Edit struct {
	Start int
	End   int
	Text  string
}

// Node is the read-only view of an element used by the compatibility audit
type Node interface {
	TagName() string
	Classes() []string
	Attr(name string) (string, bool)
	InlineStyle() string
	OuterHTML() string
}

// Document is the read-only view of a parsed HTML document used by the
// compatibility audit
type Document interface {
	QuerySelectorAll(selector string) ([]Node, error)
	StyledElements() []Node
	GetStyleTags() []Node
	Comments() []string
}

// Parser handles parsing HTML documents for auditing
type Parser interface {
	Parse(html string) (Document, error)
}
