package inliner

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"emailcss/internal/catalog"
	"emailcss/internal/config"
	"emailcss/internal/css"
	"emailcss/internal/html"
	"emailcss/internal/mso"
	"emailcss/internal/resolver"
)

// Inliner is the main CSS inlining engine for email HTML
type Inliner struct {
	config     config.InlinerConfig
	htmlParser html.Parser
	log        *zap.Logger
}

// New creates a new CSS inliner with the given configuration
func New(cfg config.InlinerConfig, log *zap.Logger) *Inliner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Inliner{
		config:     cfg,
		htmlParser: html.NewParser(),
		log:        log.Named("inliner"),
	}
}

// NewWithDefaults creates a new CSS inliner with email-optimized defaults
func NewWithDefaults() *Inliner {
	return New(config.DefaultInliner(), nil)
}

// InlineResult contains the result of CSS inlining operation
type InlineResult struct {
	HTML            string                       // Final HTML with inlined styles
	InlinedStyles   int                          // Number of declarations written into style attributes
	ElementsScanned int                          // Opening tags with a class attribute
	Warnings        []resolver.ValidationWarning // Any validation warnings
	ProcessingStats ProcessingStats              // Performance and processing statistics
}

// ProcessingStats contains performance metrics from the inlining process
type ProcessingStats struct {
	CSSRulesParsed        int   // Distinct selectors in the CSS input
	HTMLElementsProcessed int   // HTML elements that had styles applied
	SelectorsMatched      int   // Class tokens that found a rule
	FlexRowsConverted     int   // Outlook flex rows turned into tables
	ProcessingTimeMs      int64 // Processing time in milliseconds
}

type options struct {
	removeStyleTags bool
	tableWidth      int
	target          string
}

// Convert inlines cssText into document, optionally strips <style> elements
// and turns flex rows inside Outlook conditional comments into tables.
// Malformed input never fails, it degrades to best effort output.
func Convert(document, cssText string, removeStyleTags bool) (string, error) {
	result, err := convert(document, cssText, options{
		removeStyleTags: removeStyleTags,
		tableWidth:      mso.DefaultTableWidth,
	}, zap.NewNop())
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

// Inline processes HTML with the built-in catalog, the configured stylesheet
// and optionally the document's own <style> blocks
func (i *Inliner) Inline(htmlContent string) (*InlineResult, error) {
	var blocks []string
	if i.config.UseDocumentStyles {
		blocks = html.StyleBlocks(htmlContent)
	}
	cssText, err := catalog.Compose(i.config.StylesheetPath, blocks...)
	if err != nil {
		return nil, fmt.Errorf("failed to collect CSS: %w", err)
	}

	result, err := convert(htmlContent, cssText, options{
		removeStyleTags: i.config.RemoveStyleTags,
		tableWidth:      i.config.TableWidth,
		target:          i.config.TargetClient,
	}, i.log)
	if err != nil {
		return nil, err
	}

	i.log.Debug("Inlined document",
		zap.Int("elements", result.ElementsScanned),
		zap.Int("styled", result.ProcessingStats.HTMLElementsProcessed),
		zap.Int("rules", result.ProcessingStats.CSSRulesParsed),
		zap.Int("flex_rows", result.ProcessingStats.FlexRowsConverted),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int64("ms", result.ProcessingStats.ProcessingTimeMs))
	return result, nil
}

// InlineString is a convenience method that inlines CSS in an HTML string
func (i *Inliner) InlineString(htmlContent string) (string, error) {
	result, err := i.Inline(htmlContent)
	if err != nil {
		return "", err
	}
	return result.HTML, nil
}

// convert runs the whole pipeline. Any panic along the way is reported as an
// error so that callers never see a partially rewritten document.
func convert(document, cssText string, opts options, log *zap.Logger) (result *InlineResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("conversion failed: %v", r)
		}
	}()

	start := time.Now()
	result = &InlineResult{Warnings: []resolver.ValidationWarning{}}

	rules := css.NewParser(log).Parse(cssText)
	result.ProcessingStats.CSSRulesParsed = len(rules)

	elements := html.Scan(document)
	result.ElementsScanned = len(elements)

	styleResolver := resolver.New(rules, nil, opts.target, log)
	edits := make([]html.Edit, 0, len(elements))
	for _, el := range elements {
		res, ok := styleResolver.Resolve(el)
		if !ok {
			continue
		}
		edits = append(edits, html.Edit{Start: el.Start, End: el.End, Text: html.RewriteTag(el, res.Style)})

		result.InlinedStyles += res.Properties.Len()
		result.ProcessingStats.SelectorsMatched += res.MatchedClasses
		if opts.target != "" {
			result.Warnings = append(result.Warnings, styleResolver.ValidateStyles(res.Properties)...)
		}
	}
	result.ProcessingStats.HTMLElementsProcessed = len(edits)

	out := html.ApplyEdits(document, edits)
	if opts.removeStyleTags {
		out = html.RemoveStyleTags(out)
	}
	out, result.ProcessingStats.FlexRowsConverted = mso.NewRewriter(opts.tableWidth, log).Rewrite(out)

	result.HTML = out
	result.ProcessingStats.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// InlineCSS is a convenience function that inlines CSS with default configuration
func InlineCSS(htmlContent string) (string, error) {
	return NewWithDefaults().InlineString(htmlContent)
}

// InlineCSSWithConfig is a convenience function that inlines CSS with custom configuration
func InlineCSSWithConfig(htmlContent string, cfg config.InlinerConfig) (string, error) {
	return New(cfg, nil).InlineString(htmlContent)
}
