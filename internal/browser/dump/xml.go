// internal/browser/dump/xml.go
package dump

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
	"github.com/xkilldash9x/stylecore/internal/browser/render"
)

// Names in the reserved namespace are written by the dump itself. Markup
// names under the reserved prefix are treated as invalid so they cannot clash.
const (
	Namespace       = "urn:stylecore"
	NamespacePrefix = "stylecore"

	// ComputedStyleAttr carries an element's computed style.
	ComputedStyleAttr = NamespacePrefix + ":computed-style"
	// FallbackElement replaces an element whose tag is not a valid XML name.
	FallbackElement = NamespacePrefix + ":element"
	// TagAttr keeps the markup tag of a FallbackElement.
	TagAttr = NamespacePrefix + ":tag"
)

// XMLReport counts what the XML form could not carry verbatim.
type XMLReport struct {
	// RenamedElements were written as FallbackElement.
	RenamedElements int
	// SkippedAttributes had names that are not valid XML names.
	SkippedAttributes int
	// OmittedNodes lie below MaxNestingDepth.
	OmittedNodes int
}

// Empty reports whether everything was written verbatim.
func (r XMLReport) Empty() bool {
	return r == XMLReport{}
}

func (r XMLReport) String() string {
	return fmt.Sprintf("renamed elements: %d, skipped attributes: %d, omitted nodes: %d",
		r.RenamedElements, r.SkippedAttributes, r.OmittedNodes)
}

// NewXMLDocument mirrors the normalized tree as an XML document. Names that are
// not valid XML are repaired or skipped and counted in the report; when the
// report is not empty it is also written as a comment ahead of the root.
func NewXMLDocument(res *render.Result) (*etree.Document, XMLReport) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	var report XMLReport
	tree := res.Tree
	root := tree.Root()
	if !tree.Valid(root) {
		return doc, report
	}

	w := xmlWriter{res: res, names: make(map[string]bool), report: &report}
	top := w.element(root)
	top.CreateAttr("xmlns:"+NamespacePrefix, Namespace)

	type frame struct {
		id    dom.NodeID
		el    *etree.Element
		depth int
	}
	stack := []frame{{id: root, el: top}}
	var nested []frame
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids := tree.Children(f.id)
		if f.depth >= MaxNestingDepth && len(kids) > 0 {
			omitted := descendants(tree, f.id)
			report.OmittedNodes += omitted
			f.el.CreateComment(fmt.Sprintf(" %d nested nodes omitted ", omitted))
			continue
		}

		nested = nested[:0]
		for _, child := range kids {
			c := tree.Node(child)
			if c.Kind == dom.TextNode {
				f.el.CreateText(xmlChars(c.Text))
				continue
			}
			el := w.element(child)
			f.el.AddChild(el)
			nested = append(nested, frame{id: child, el: el, depth: f.depth + 1})
		}
		for i := len(nested) - 1; i >= 0; i-- {
			stack = append(stack, nested[i])
		}
	}

	if !report.Empty() {
		doc.CreateComment(" " + report.String() + " ")
	}
	doc.AddChild(top)
	return doc, report
}

type xmlWriter struct {
	res    *render.Result
	names  map[string]bool
	report *XMLReport
}

// element creates the detached element for id with its attributes and computed style.
func (w *xmlWriter) element(id dom.NodeID) *etree.Element {
	n := w.res.Tree.Node(id)
	tag := n.Tag.String()

	var el *etree.Element
	if w.validName(tag) {
		el = etree.NewElement(tag)
	} else {
		w.report.RenamedElements++
		el = etree.NewElement(FallbackElement)
		el.CreateAttr(TagAttr, xmlChars(tag))
	}
	for _, a := range n.Attrs {
		if !w.validName(a.Name) {
			w.report.SkippedAttributes++
			continue
		}
		el.CreateAttr(a.Name, xmlChars(a.Value))
	}
	if cs := w.res.Styles[id]; len(cs) > 0 {
		el.CreateAttr(ComputedStyleAttr, inlineStyle(cs))
	}
	return el
}

func (w *xmlWriter) validName(name string) bool {
	ok, seen := w.names[name]
	if !seen {
		ok = isXMLName(name)
		w.names[name] = ok
	}
	return ok
}

// isXMLName reports whether name is read back unchanged as an XML name by
// encoding/xml, the reader behind etree. Names in the reserved namespace and
// its declaration are rejected.
func isXMLName(name string) bool {
	if name == "" || name == "xmlns:"+NamespacePrefix || strings.HasPrefix(name, NamespacePrefix+":") {
		return false
	}
	d := xml.NewDecoder(strings.NewReader("<" + name + "/>"))
	tok, err := d.RawToken()
	if err != nil {
		return false
	}
	start, ok := tok.(xml.StartElement)
	if !ok || len(start.Attr) > 0 {
		return false
	}
	got := start.Name.Local
	if start.Name.Space != "" {
		got = start.Name.Space + ":" + got
	}
	return got == name
}

// xmlChars replaces runes that XML documents cannot contain with U+FFFD.
func xmlChars(s string) string {
	clean := true
	for _, r := range s {
		if !isXMLChar(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if isXMLChar(r) {
			return r
		}
		return utf8.RuneError
	}, s)
}

func isXMLChar(r rune) bool {
	switch {
	case r == utf8.RuneError:
		// Also produced for invalid UTF-8, which strings.Map rewrites.
		return false
	case r == '\t' || r == '\n' || r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// XML writes res as an indented XML document.
func XML(w io.Writer, res *render.Result) error {
	doc, _ := NewXMLDocument(res)
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}
