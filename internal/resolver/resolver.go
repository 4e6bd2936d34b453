package resolver

import (
	"strings"

	"go.uber.org/zap"

	"emailcss/internal/config"
	"emailcss/internal/css"
	"emailcss/internal/html"
)

// Resolver turns the class list and inline style of a scanned element into a
// single merged inline style
type Resolver struct {
	rules    css.Ruleset
	policies map[string]css.Policy
	target   string
	log      *zap.Logger
}

// Resolution is the outcome of resolving one element
type Resolution struct {
	Style          string
	Properties     *css.PropertyMap
	MatchedClasses int
}

// New creates a new style resolver. A nil policy table means
// css.DefaultPolicies.
func New(rules css.Ruleset, policies map[string]css.Policy, target string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if policies == nil {
		policies = css.DefaultPolicies
	}
	return &Resolver{
		rules:    rules,
		policies: policies,
		target:   target,
		log:      log.Named("resolver"),
	}
}

// Blocks collects the declaration blocks that apply to el: its existing inline
// style first, then the rule of every class token in class order
func (r *Resolver) Blocks(el html.ScannedElement) (blocks []string, matched int) {
	if el.ExistingStyle != "" {
		blocks = append(blocks, el.ExistingStyle)
	}
	for _, class := range el.Classes {
		if block, ok := r.rules.Lookup(class); ok {
			blocks = append(blocks, block)
			matched++
		}
	}
	return blocks, matched
}

// Resolve merges every block applying to el. It returns false when nothing
// applies and the element must be left as is.
func (r *Resolver) Resolve(el html.ScannedElement) (Resolution, bool) {
	blocks, matched := r.Blocks(el)
	if len(blocks) == 0 {
		return Resolution{}, false
	}

	props := css.MergeBlocks(r.policies, blocks...)
	res := Resolution{
		Style:          props.String(),
		Properties:     props,
		MatchedClasses: matched,
	}
	if matched < len(el.Classes) {
		r.log.Debug("Classes without rule", zap.String("tag", el.Tag),
			zap.Strings("classes", el.Classes), zap.Int("matched", matched))
	}
	return res, true
}

// ValidateStyles checks the merged styles against the target email client
func (r *Resolver) ValidateStyles(props *css.PropertyMap) []ValidationWarning {
	var warnings []ValidationWarning

	compatibility := config.GetCompatibilityProfile(r.target)

	for _, d := range props.Declarations() {
		property := strings.ToLower(d.Property)
		switch property {
		case "background-image":
			if strings.Contains(d.Value, "url(") && !compatibility.SupportsBackgroundImages {
				warnings = append(warnings, ValidationWarning{
					Property: property,
					Value:    d.Value,
					Message:  "Background images may not render in this email client",
					Severity: "warning",
				})
			}

		case "width", "height", "max-width", "min-height":
			if strings.Contains(d.Value, "vw") || strings.Contains(d.Value, "vh") {
				warnings = append(warnings, ValidationWarning{
					Property: property,
					Value:    d.Value,
					Message:  "Viewport units not supported in email clients",
					Severity: "error",
				})
			}

		case "position":
			if d.Value != "static" && compatibility.RequiresInlineStyles {
				warnings = append(warnings, ValidationWarning{
					Property: property,
					Value:    d.Value,
					Message:  "Positioning not supported in this email client",
					Severity: "warning",
				})
			}

		case "display":
			if isFlexOrGrid(d.Value) && !compatibility.SupportsFlexbox {
				warnings = append(warnings, ValidationWarning{
					Property: property,
					Value:    d.Value,
					Message:  "Flexbox and grid layouts are ignored by this email client",
					Severity: "warning",
				})
			}
		}

		if !css.IsEmailSafeProperty(property) {
			warnings = append(warnings, ValidationWarning{
				Property: property,
				Value:    d.Value,
				Message:  "Property may not be supported across all email clients",
				Severity: "info",
			})
		}
	}

	return warnings
}

func isFlexOrGrid(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return strings.HasSuffix(v, "flex") || strings.HasSuffix(v, "grid")
}

// ValidationWarning represents a potential issue with merged styles
type ValidationWarning struct {
	Property string
	Value    string
	Message  string
	Severity string // "error", "warning", "info"
}
