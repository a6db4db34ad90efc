// internal/browser/style/style.go
package style

import (
	"sort"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/parser"
)

// Specificity is the (ids, classes, types) weight of a selector match.
type Specificity [3]int

// Less compares lexicographically: ids first, then classes, then types.
func (s Specificity) Less(o Specificity) bool {
	for i := range s {
		if s[i] != o[i] {
			return s[i] < o[i]
		}
	}
	return false
}

// SpecificityOf returns the weight of a simple selector.
// The universal selector weighs nothing.
func SpecificityOf(sel parser.Selector) Specificity {
	switch sel.Kind {
	case parser.SelectorID:
		return Specificity{1, 0, 0}
	case parser.SelectorClass:
		return Specificity{0, 1, 0}
	case parser.SelectorType:
		return Specificity{0, 0, 1}
	default:
		return Specificity{}
	}
}

// ComputedStyle maps property names to resolved values for one element.
type ComputedStyle map[string]parser.Value

// Styles holds the computed style of every element of a tree.
type Styles map[dom.NodeID]ComputedStyle

// Lookup returns the raw value stored for a property.
func (cs ComputedStyle) Lookup(property string) (parser.Value, bool) {
	v, ok := cs[property]
	return v, ok
}

// Color returns a color property.
func (cs ComputedStyle) Color(property string) (parser.Color, bool) {
	c, ok := cs[property].(parser.Color)
	return c, ok
}

// Length returns a length property, unresolved.
func (cs ComputedStyle) Length(property string) (parser.Length, bool) {
	l, ok := cs[property].(parser.Length)
	return l, ok
}

// Keyword returns a keyword property.
func (cs ComputedStyle) Keyword(property string) (parser.Keyword, bool) {
	k, ok := cs[property].(parser.Keyword)
	return k, ok
}

// Display returns the display keyword, or fallback if none was declared.
func (cs ComputedStyle) Display(fallback string) string {
	if k, ok := cs.Keyword("display"); ok {
		return string(k)
	}
	return fallback
}

// IsVisible is false for display:none and visibility:hidden.
func (cs ComputedStyle) IsVisible() bool {
	if k, ok := cs.Keyword("display"); ok && k == "none" {
		return false
	}
	if k, ok := cs.Keyword("visibility"); ok && (k == "hidden" || k == "collapse") {
		return false
	}
	return true
}

// Properties returns the property names in sorted order.
func (cs ComputedStyle) Properties() []string {
	names := make([]string, 0, len(cs))
	for name := range cs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
