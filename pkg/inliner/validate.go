package inliner

import (
	"fmt"
	"regexp"
	"strings"

	"emailcss/internal/config"
	"emailcss/internal/css"
	"emailcss/internal/html"
	"emailcss/internal/resolver"
)

// ValidationIssue represents an email compatibility issue
type ValidationIssue struct {
	Type     string // "structure", "css", "attribute"
	Severity string // "error", "warning", "info"
	Message  string
	Element  string
	Property string // for CSS issues
}

var (
	fixedPositionRegex = regexp.MustCompile(`(?i)position\s*:\s*fixed`)
	msoConditionRegex  = regexp.MustCompile(`(?i)^\s*\[if\s+(?:[gl]te?\s+)?mso\b`)
	mediaRuleRegex     = regexp.MustCompile(`(?i)@media\b`)

	// variants checked against the client's pseudo selector support
	stateVariants = map[string]bool{"hover": true, "focus": true}
)

// ValidateHTML validates HTML for email client compatibility. The document is
// parsed as a browser would, so markup inside conditional comments is not
// looked at except to tell whether an Outlook fallback exists.
func (i *Inliner) ValidateHTML(htmlContent string) ([]ValidationIssue, error) {
	doc, err := i.htmlParser.Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var issues []ValidationIssue

	// Check for problematic HTML elements
	issues = append(issues, i.validateHTMLStructure(doc)...)

	// Check for email-unsafe CSS
	issues = append(issues, i.validateEmbeddedCSS(doc)...)
	issues = append(issues, i.validateInlineStyles(doc)...)
	issues = append(issues, i.validateStateVariants(doc)...)

	return issues, nil
}

// validateHTMLStructure checks for HTML structure issues
func (i *Inliner) validateHTMLStructure(doc html.Document) []ValidationIssue {
	var issues []ValidationIssue

	// Check for missing table structure in emails
	tables, _ := doc.QuerySelectorAll("body table")
	if len(tables) == 0 {
		issues = append(issues, ValidationIssue{
			Type:     "structure",
			Severity: "warning",
			Message:  "Email should use table-based layout for better client compatibility",
			Element:  "body",
		})
	}

	// flex rows need a table fallback for Word based Outlook
	flexRows, _ := doc.QuerySelectorAll(`div[class*="flex"]`)
	if len(flexRows) > 0 && !config.GetCompatibilityProfile(i.config.TargetClient).SupportsFlexbox {
		hasFallback := false
		for _, c := range doc.Comments() {
			if msoConditionRegex.MatchString(c) {
				hasFallback = true
				break
			}
		}
		if !hasFallback {
			issues = append(issues, ValidationIssue{
				Type:     "structure",
				Severity: "warning",
				Message:  fmt.Sprintf("%d flex containers without an Outlook conditional fallback", len(flexRows)),
				Element:  "div",
			})
		}
	}

	return issues
}

// validateEmbeddedCSS checks for problematic CSS in style tags
func (i *Inliner) validateEmbeddedCSS(doc html.Document) []ValidationIssue {
	var issues []ValidationIssue

	profile := config.GetCompatibilityProfile(i.config.TargetClient)
	styleTags := doc.GetStyleTags()
	if len(styleTags) > 0 && profile.RequiresInlineStyles {
		issues = append(issues, ValidationIssue{
			Type:     "css",
			Severity: "info",
			Message:  fmt.Sprintf("%d <style> elements will be ignored by this email client", len(styleTags)),
			Element:  "style",
		})
	}

	size := 0
	for _, styleTag := range styleTags {
		text := styleTag.OuterHTML()
		size += len(text)

		if fixedPositionRegex.MatchString(text) {
			issues = append(issues, ValidationIssue{
				Type:     "css",
				Severity: "error",
				Message:  "position: fixed is not supported in email clients",
				Element:  "style",
				Property: "position",
			})
		}
		if !profile.SupportsMediaQueries && hasMediaQuery(styleTag, text) {
			issues = append(issues, ValidationIssue{
				Type:     "css",
				Severity: "warning",
				Message:  "Media queries are not supported by this email client",
				Element:  "style",
			})
		}
	}
	if profile.MaxStylesheetSize > 0 && size > profile.MaxStylesheetSize {
		issues = append(issues, ValidationIssue{
			Type:     "css",
			Severity: "warning",
			Message:  fmt.Sprintf("Embedded CSS is %d bytes, over the %d byte limit of this email client", size, profile.MaxStylesheetSize),
			Element:  "style",
		})
	}

	return issues
}

// hasMediaQuery tells whether a style element is conditional on media, either
// through @media rules or its own media attribute
func hasMediaQuery(styleTag html.Node, text string) bool {
	if media, ok := styleTag.Attr("media"); ok {
		if m := strings.ToLower(strings.TrimSpace(media)); m != "" && m != "all" {
			return true
		}
	}
	return mediaRuleRegex.MatchString(text)
}

// validateStateVariants reports state utility classes, hover:bg-blue-500 and
// the like, that only work through a stylesheet the client does not honor
func (i *Inliner) validateStateVariants(doc html.Document) []ValidationIssue {
	var issues []ValidationIssue

	supported := config.GetCompatibilityProfile(i.config.TargetClient).SupportsPseudoSelectors
	nodes, _ := doc.QuerySelectorAll("[class]")
	for _, node := range nodes {
		var ignored []string
		for _, class := range node.Classes() {
			variant, _, found := strings.Cut(class, ":")
			if !found || !stateVariants[variant] {
				continue
			}
			if !supported[":"+variant] {
				ignored = append(ignored, class)
			}
		}
		if len(ignored) > 0 {
			issues = append(issues, ValidationIssue{
				Type:     "attribute",
				Severity: "info",
				Message:  "State variants ignored by this email client: " + strings.Join(ignored, " "),
				Element:  strings.ToLower(node.TagName()),
			})
		}
	}

	return issues
}

// validateInlineStyles runs the client profile checks over every style
// attribute found outside conditional comments
func (i *Inliner) validateInlineStyles(doc html.Document) []ValidationIssue {
	var issues []ValidationIssue

	checker := resolver.New(nil, nil, i.config.TargetClient, i.log)
	for _, node := range doc.StyledElements() {
		props := css.MergeBlocks(nil, node.InlineStyle())
		for _, w := range checker.ValidateStyles(props) {
			issues = append(issues, ValidationIssue{
				Type:     "css",
				Severity: w.Severity,
				Message:  w.Message,
				Element:  strings.ToLower(node.TagName()),
				Property: w.Property,
			})
		}
	}

	return issues
}
