// internal/browser/dump/text.go
package dump

import (
	"fmt"
	"strings"

	tp "github.com/xlab/treeprint"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/render"
)

// Text prints the tree with attributes, computed styles and trimmed text,
// one node per line.
func Text(res *render.Result) string {
	tree := res.Tree
	root := tree.Root()
	if !tree.Valid(root) {
		return ""
	}
	p := tp.New()
	p.SetValue(elementLabel(tree.Node(root)))

	type frame struct {
		id     dom.NodeID
		branch tp.Tree
		depth  int
	}
	stack := []frame{{id: root, branch: p}}
	var nested []frame
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, decl := range declarations(res.Styles[f.id]) {
			f.branch.AddMetaNode("style", decl)
		}
		kids := tree.Children(f.id)
		if f.depth >= MaxNestingDepth && len(kids) > 0 {
			f.branch.AddNode(fmt.Sprintf("... %d nested nodes omitted", descendants(tree, f.id)))
			continue
		}

		nested = nested[:0]
		for _, child := range kids {
			n := tree.Node(child)
			switch n.Kind {
			case dom.ElementNode:
				nested = append(nested, frame{id: child, branch: f.branch.AddBranch(elementLabel(n)), depth: f.depth + 1})
			case dom.TextNode:
				if text := strings.TrimSpace(n.Text); text != "" {
					f.branch.AddNode(fmt.Sprintf("TEXT: %q", text))
				}
			}
		}
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, nested[i])
		}
	}
	return p.String()
}

func elementLabel(n dom.Node) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.Tag.String())
	for _, a := range n.Attrs {
		fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
	}
	b.WriteString(">")
	return b.String()
}
