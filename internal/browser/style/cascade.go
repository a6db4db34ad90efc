// internal/browser/style/cascade.go
package style

import (
	"sort"

	"go.uber.org/zap"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/parser"
)

// Resolver computes per-element styles from a tree and a rule sequence.
// It holds no state between calls and is safe for concurrent use.
type Resolver struct {
	log *zap.Logger
}

// NewResolver creates a resolver. A nil logger disables logging.
func NewResolver(log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{log: log.Named("cascade")}
}

// Resolve computes styles with a silent resolver.
func Resolve(tree *dom.Tree, rules []parser.Rule) Styles {
	return NewResolver(nil).Resolve(tree, rules)
}

// match is a rule that applies to the element under resolution.
type match struct {
	rule        *parser.Rule
	specificity Specificity
}

// Resolve returns one ComputedStyle per element node. For each property the
// declaration of the most specific matching rule wins; among equally specific
// rules the one later in the source wins. Styles are never inherited.
func (r *Resolver) Resolve(tree *dom.Tree, rules []parser.Rule) Styles {
	styles := make(Styles)
	var matches []match
	tree.Walk(tree.Root(), func(id dom.NodeID, _ int) bool {
		node := tree.Node(id)
		if node.Kind != dom.ElementNode {
			return true
		}

		matches = matches[:0]
		for i := range rules {
			if Matches(tree, id, rules[i].Selector) {
				matches = append(matches, match{rule: &rules[i], specificity: SpecificityOf(rules[i].Selector)})
			}
		}
		styles[id] = cascade(matches)
		return true
	})

	r.log.Debug("Styles resolved", zap.Int("elements", len(styles)), zap.Int("rules", len(rules)))
	return styles
}

// cascade applies the declarations of the matches in ascending precedence,
// so later writes overwrite earlier ones.
func cascade(matches []match) ComputedStyle {
	sort.SliceStable(matches, func(i, j int) bool {
		m1, m2 := matches[i], matches[j]
		if m1.specificity != m2.specificity {
			return m1.specificity.Less(m2.specificity)
		}
		return m1.rule.Order < m2.rule.Order
	})

	cs := make(ComputedStyle)
	for _, m := range matches {
		for _, decl := range m.rule.Declarations {
			cs[decl.Property] = decl.Value
		}
	}
	return cs
}

// Matches reports whether a simple selector applies to the element id.
func Matches(tree *dom.Tree, id dom.NodeID, sel parser.Selector) bool {
	node := tree.Node(id)
	if node.Kind != dom.ElementNode {
		return false
	}
	switch sel.Kind {
	case parser.SelectorUniversal:
		return true
	case parser.SelectorType:
		return node.Tag.Matches(sel.Value)
	case parser.SelectorClass:
		for _, class := range tree.ClassList(id) {
			if class == sel.Value {
				return true
			}
		}
		return false
	case parser.SelectorID:
		v, ok := node.Attrs.Get("id")
		return ok && v == sel.Value
	default:
		return false
	}
}
