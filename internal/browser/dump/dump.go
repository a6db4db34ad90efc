// internal/browser/dump/dump.go
package dump

import (
	"fmt"
	"io"
	"strings"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/render"
	"github.com/xkilldash9x/stylecore/internal/browser/style"
	"github.com/xkilldash9x/stylecore/internal/config"
)

// MaxNestingDepth bounds how deep the text and XML forms descend. The children
// of an element at this depth are replaced by a note counting the nodes left
// out. The JSON form is flat and carries every node.
const MaxNestingDepth = 256

// Write serializes res to w in one of the config.Format* formats.
func Write(w io.Writer, format string, res *render.Result) error {
	switch format {
	case config.FormatText, "":
		_, err := io.WriteString(w, Text(res))
		return err
	case config.FormatJSON:
		return JSON(w, res)
	case config.FormatXML:
		return XML(w, res)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// declarations renders a computed style as "prop: value" pairs in property order.
func declarations(cs style.ComputedStyle) []string {
	out := make([]string, 0, len(cs))
	for _, prop := range cs.Properties() {
		out = append(out, prop+": "+cs[prop].String())
	}
	return out
}

// inlineStyle joins declarations the way a style attribute would carry them.
func inlineStyle(cs style.ComputedStyle) string {
	return strings.Join(declarations(cs), "; ")
}

// descendants counts the nodes strictly below id.
func descendants(tree *dom.Tree, id dom.NodeID) int {
	n := -1
	tree.Walk(id, func(dom.NodeID, int) bool {
		n++
		return true
	})
	return n
}
