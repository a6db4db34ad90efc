// internal/browser/dump/json.go
package dump

import (
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/render"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document is the JSON form of a render result. The tree is flat: Nodes is
// indexed by node id and nodes refer to each other by id, so documents of any
// nesting depth encode and decode without recursion.
type Document struct {
	ID          string      `json:"id"`
	Name        string      `json:"name,omitempty"`
	Title       string      `json:"title,omitempty"`
	Root        int         `json:"root"`
	Nodes       []Node      `json:"nodes"`
	Diagnostics Diagnostics `json:"diagnostics"`
}

// Node is the JSON form of one tree node. Elements carry Tag; text nodes carry Text.
// Parent is -1 for the root.
type Node struct {
	ID         int               `json:"id"`
	Parent     int               `json:"parent"`
	Tag        string            `json:"tag,omitempty"`
	Text       string            `json:"text,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Style      map[string]string `json:"style,omitempty"`
	Children   []int             `json:"children,omitempty"`
}

// Diagnostics mirrors parser.Diagnostics with stable field names.
type Diagnostics struct {
	StrayEndTags        int      `json:"stray_end_tags"`
	UnclosedElements    int      `json:"unclosed_elements"`
	DroppedSelectors    int      `json:"dropped_selectors"`
	DroppedDeclarations int      `json:"dropped_declarations"`
	SkippedAtRules      int      `json:"skipped_at_rules"`
	Warnings            []string `json:"warnings,omitempty"`
}

// NewDocument converts a render result to its JSON form.
func NewDocument(res *render.Result) *Document {
	d := res.Diagnostics
	doc := &Document{
		ID:    res.ID.String(),
		Name:  res.Name,
		Title: res.Tree.Title(),
		Root:  int(res.Tree.Root()),
		Nodes: make([]Node, res.Tree.Len()),
		Diagnostics: Diagnostics{
			StrayEndTags:        d.StrayEndTags,
			UnclosedElements:    d.UnclosedElements,
			DroppedSelectors:    d.DroppedSelectors,
			DroppedDeclarations: d.DroppedDeclarations,
			SkippedAtRules:      d.SkippedAtRules,
			Warnings:            d.Warnings,
		},
	}
	for i := range doc.Nodes {
		doc.Nodes[i] = jsonNode(res, dom.NodeID(i))
	}
	return doc
}

func jsonNode(res *render.Result, id dom.NodeID) Node {
	n := res.Tree.Node(id)
	out := Node{ID: int(id), Parent: int(n.Parent)}
	if n.Kind == dom.TextNode {
		out.Text = n.Text
		return out
	}

	out.Tag = n.Tag.String()
	if len(n.Attrs) > 0 {
		out.Attributes = make(map[string]string, len(n.Attrs))
		for _, a := range n.Attrs {
			out.Attributes[a.Name] = a.Value
		}
	}
	if cs := res.Styles[id]; len(cs) > 0 {
		out.Style = make(map[string]string, len(cs))
		for prop, v := range cs {
			out.Style[prop] = v.String()
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]int, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = int(c)
		}
	}
	return out
}

// JSON writes res as an indented JSON document followed by a newline.
func JSON(w io.Writer, res *render.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewDocument(res))
}
