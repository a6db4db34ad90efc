// internal/browser/dom/tree.go
package dom

import (
	"fmt"
	"strings"
)

// NodeID addresses a node inside its Tree. IDs are stable for the lifetime of the tree.
type NodeID int

// InvalidNode is the parent of the root and the result of failed lookups.
const InvalidNode NodeID = -1

// NodeKind distinguishes the two node variants.
type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
)

func (k NodeKind) String() string {
	switch k {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return fmt.Sprintf("NodeKind(%d)", int(k))
	}
}

// Attr is a single attribute. Names are lowercase.
type Attr struct {
	Name  string
	Value string
}

// Attrs is an ordered attribute list with unique names.
type Attrs []Attr

// Get returns the value of the named attribute.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Set returns a with name set to value. An existing attribute keeps its
// position and takes the new value, so the last occurrence wins.
func (a Attrs) Set(name, value string) Attrs {
	for i := range a {
		if a[i].Name == name {
			a[i].Value = value
			return a
		}
	}
	return append(a, Attr{Name: name, Value: value})
}

// Node is one entry of the arena. Element nodes use Tag, Attrs and Children;
// text nodes use Text only.
//
// Slices returned through a Node value are shared with the tree and must not be modified.
type Node struct {
	Kind     NodeKind
	Tag      Tag
	Text     string
	Attrs    Attrs
	Children []NodeID
	// Parent is a non-owning back reference used for upward traversal only.
	Parent NodeID
}

// IsElement reports whether the node is an element of the given tag name.
// An empty name matches any element.
func (n Node) IsElement(name string) bool {
	if n.Kind != ElementNode {
		return false
	}
	return name == "" || n.Tag.Matches(name)
}

// Tree is an arena of nodes. Children own nothing; the arena owns every node
// and nodes refer to each other by NodeID, so parent links create no cycles.
//
// A Tree is immutable once returned by a Builder.
type Tree struct {
	nodes []Node
	root  NodeID
}

// Root returns the root element, or InvalidNode for an empty tree.
func (t *Tree) Root() NodeID {
	if t == nil {
		return InvalidNode
	}
	return t.root
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.nodes)
}

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return t != nil && id >= 0 && int(id) < len(t.nodes)
}

// Node returns the node stored under id. It panics if id is not valid.
func (t *Tree) Node(id NodeID) Node {
	if !t.Valid(id) {
		panic(fmt.Sprintf("dom: invalid node id %d", id))
	}
	return t.nodes[id]
}

// Children returns the ordered children of id.
func (t *Tree) Children(id NodeID) []NodeID {
	return t.Node(id).Children
}

// Parent returns the parent of id and whether it has one.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p := t.Node(id).Parent
	return p, p != InvalidNode
}

// Attr returns an attribute of an element node.
func (t *Tree) Attr(id NodeID, name string) (string, bool) {
	return t.Node(id).Attrs.Get(name)
}

// Walk visits every node below and including start in document order.
// Returning false from fn skips the node's subtree. Nesting depth is bounded
// only by memory.
func (t *Tree) Walk(start NodeID, fn func(id NodeID, depth int) bool) {
	if !t.Valid(start) {
		return
	}
	type frame struct {
		id    NodeID
		depth int
	}
	stack := []frame{{id: start}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.id, f.depth) {
			continue
		}
		kids := t.nodes[f.id].Children
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: kids[i], depth: f.depth + 1})
		}
	}
}

// TextContent concatenates all text below id in document order.
func (t *Tree) TextContent(id NodeID) string {
	var sb strings.Builder
	t.Walk(id, func(n NodeID, _ int) bool {
		if node := t.nodes[n]; node.Kind == TextNode {
			sb.WriteString(node.Text)
		}
		return true
	})
	return sb.String()
}

// Builder assembles a Tree. It is the only way to mutate nodes.
type Builder struct {
	t *Tree
}

// NewBuilder returns a builder for an empty tree.
func NewBuilder() *Builder {
	return &Builder{t: &Tree{root: InvalidNode}}
}

// Element appends a new element. With parent == InvalidNode the node is detached
// until it is made the root.
func (b *Builder) Element(parent NodeID, tag Tag, attrs Attrs) NodeID {
	return b.add(parent, Node{Kind: ElementNode, Tag: tag, Attrs: attrs})
}

// Text appends a text node under parent. Adjacent text siblings are merged.
func (b *Builder) Text(parent NodeID, text string) NodeID {
	if b.t.Valid(parent) {
		kids := b.t.nodes[parent].Children
		if n := len(kids); n > 0 && b.t.nodes[kids[n-1]].Kind == TextNode {
			last := kids[n-1]
			b.t.nodes[last].Text += text
			return last
		}
	}
	return b.add(parent, Node{Kind: TextNode, Text: text})
}

func (b *Builder) add(parent NodeID, n Node) NodeID {
	id := NodeID(len(b.t.nodes))
	n.Parent = InvalidNode
	b.t.nodes = append(b.t.nodes, n)
	if b.t.Valid(parent) {
		b.t.nodes[id].Parent = parent
		b.t.nodes[parent].Children = append(b.t.nodes[parent].Children, id)
	}
	return id
}

// SetRoot marks id as the root of the tree.
func (b *Builder) SetRoot(id NodeID) {
	b.t.root = id
}

// Copy deep-copies the subtree of src rooted at id under parent and returns the new id.
// Copied text is never merged with text already under parent, so text runs that
// were separate in src stay separate.
func (b *Builder) Copy(src *Tree, id NodeID, parent NodeID) NodeID {
	type pending struct {
		src    NodeID
		parent NodeID
	}
	top := InvalidNode
	stack := []pending{{src: id, parent: parent}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := src.Node(p.src)
		node := Node{Kind: n.Kind, Tag: n.Tag, Text: n.Text}
		if n.Kind == ElementNode {
			node.Attrs = make(Attrs, len(n.Attrs))
			copy(node.Attrs, n.Attrs)
		}
		nid := b.add(p.parent, node)
		if top == InvalidNode {
			top = nid
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, pending{src: n.Children[i], parent: nid})
		}
	}
	return top
}

// Node exposes a node under construction for inspection.
func (b *Builder) Node(id NodeID) Node {
	return b.t.Node(id)
}

// Tree finishes the build. The builder must not be used afterwards.
func (b *Builder) Tree() *Tree {
	t := b.t
	b.t = nil
	return t
}
