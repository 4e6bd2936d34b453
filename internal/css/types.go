package css

import (
	"strings"
)

// Ruleset maps a selector (already unescaped, including the leading dot and any
// pseudo-class suffix) to its raw declaration block text.
type Ruleset map[string]string

// Lookup returns the declaration block for a plain class selector
func (r Ruleset) Lookup(class string) (string, bool) {
	block, ok := r["."+class]
	return block, ok
}

// Declaration represents a single CSS property declaration
type Declaration struct {
	Property string // CSS property name, verbatim
	Value    string // CSS property value, verbatim (may carry !important)
}

// Policy decides whether an incoming value replaces a value already present
// in a PropertyMap
type Policy int

const (
	// LastWriteWins always replaces the existing value
	LastWriteWins Policy = iota
	// PreferPercentage keeps the existing value unless the new one is a
	// percentage and the existing one is not
	PreferPercentage
)

// Replace reports whether candidate should overwrite existing under this policy
func (p Policy) Replace(existing, candidate string) bool {
	switch p {
	case PreferPercentage:
		return strings.Contains(candidate, "%") && !strings.Contains(existing, "%")
	default:
		return true
	}
}

func (p Policy) String() string {
	switch p {
	case PreferPercentage:
		return "prefer-percentage"
	default:
		return "last-write-wins"
	}
}

// DefaultPolicies is the merge policy table used by the resolver. Properties
// not listed follow LastWriteWins.
var DefaultPolicies = map[string]Policy{
	"width":  PreferPercentage,
	"height": PreferPercentage,
}

// PropertyMap is an insertion ordered property -> value map. Overwriting a
// property keeps its original position.
type PropertyMap struct {
	order    []string
	values   map[string]string
	policies map[string]Policy
}

// NewPropertyMap creates an empty map governed by the given policy table. A nil
// table means DefaultPolicies.
func NewPropertyMap(policies map[string]Policy) *PropertyMap {
	if policies == nil {
		policies = DefaultPolicies
	}
	return &PropertyMap{
		values:   make(map[string]string),
		policies: policies,
	}
}

// Apply merges a single declaration into the map following the policy table.
// It returns true when the map changed.
func (m *PropertyMap) Apply(property, value string) bool {
	existing, ok := m.values[property]
	if !ok {
		m.order = append(m.order, property)
		m.values[property] = value
		return true
	}
	if !m.policies[property].Replace(existing, value) {
		return false
	}
	m.values[property] = value
	return true
}

// ApplyBlock merges every declaration of a declaration block, in order
func (m *PropertyMap) ApplyBlock(block string) {
	for _, d := range SplitDeclarations(block) {
		m.Apply(d.Property, d.Value)
	}
}

// Get returns the value for property
func (m *PropertyMap) Get(property string) (string, bool) {
	v, ok := m.values[property]
	return v, ok
}

// Len returns the number of distinct properties
func (m *PropertyMap) Len() int {
	return len(m.order)
}

// Declarations returns the map content in insertion order
func (m *PropertyMap) Declarations() []Declaration {
	out := make([]Declaration, 0, len(m.order))
	for _, p := range m.order {
		out = append(out, Declaration{Property: p, Value: m.values[p]})
	}
	return out
}

// String serializes the map as "prop: value; prop2: value2"
func (m *PropertyMap) String() string {
	return Serialize(m.Declarations())
}
