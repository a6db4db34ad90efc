// internal/browser/dom/query.go
package dom

import "strings"

// child returns the first element child of id with the given known tag.
func (t *Tree) child(id NodeID, k KnownTag) NodeID {
	if !t.Valid(id) {
		return InvalidNode
	}
	for _, c := range t.nodes[id].Children {
		if n := t.nodes[c]; n.Kind == ElementNode && n.Tag.Is(k) {
			return c
		}
	}
	return InvalidNode
}

// Head returns the <head> element of a normalized tree.
func (t *Tree) Head() NodeID {
	return t.child(t.Root(), Head)
}

// Body returns the <body> element of a normalized tree.
func (t *Tree) Body() NodeID {
	return t.child(t.Root(), Body)
}

// Title returns the trimmed text of the first <title> in <head>.
func (t *Tree) Title() string {
	title := t.child(t.Head(), Title)
	if title == InvalidNode {
		return ""
	}
	return strings.TrimSpace(t.TextContent(title))
}

// Find returns every node below and including start for which match is true, in document order.
func (t *Tree) Find(start NodeID, match func(Node) bool) []NodeID {
	var out []NodeID
	t.Walk(start, func(id NodeID, _ int) bool {
		if match(t.nodes[id]) {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Elements returns all elements with the given tag name in document order.
func (t *Tree) Elements(name string) []NodeID {
	return t.Find(t.Root(), func(n Node) bool { return n.IsElement(name) })
}

// ClassList splits the class attribute of id on whitespace.
func (t *Tree) ClassList(id NodeID) []string {
	v, ok := t.Attr(id, "class")
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// Resource is an external reference found in the document, for fetchers and media players.
type Resource struct {
	Node NodeID
	Tag  Tag
	// Attr names the attribute that carried URL ("src" or "href").
	Attr  string
	URL   string
	Alt   string
	Title string
}

// resourceAttrs lists which attribute carries the reference for each tag.
var resourceAttrs = map[KnownTag]string{
	Img:    "src",
	Audio:  "src",
	Source: "src",
	A:      "href",
}

// Resources lists src/href references of img, audio, source and a elements in document order.
// Elements without a non-empty reference are skipped.
func (t *Tree) Resources() []Resource {
	var out []Resource
	t.Walk(t.Root(), func(id NodeID, _ int) bool {
		n := t.nodes[id]
		if n.Kind != ElementNode {
			return true
		}
		attr, ok := resourceAttrs[n.Tag.Known]
		if !ok {
			return true
		}
		url, _ := n.Attrs.Get(attr)
		if url = strings.TrimSpace(url); url == "" {
			return true
		}
		alt, _ := n.Attrs.Get("alt")
		title, _ := n.Attrs.Get("title")
		out = append(out, Resource{Node: id, Tag: n.Tag, Attr: attr, URL: url, Alt: alt, Title: title})
		return true
	})
	return out
}
