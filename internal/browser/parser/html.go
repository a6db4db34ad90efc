// internal/browser/parser/html.go
package parser

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/stylecore/internal/browser/dom"
)

// Document is the result of parsing markup: the normalized tree and the
// combined text of every <style> element in source order.
type Document struct {
	Tree        *dom.Tree
	StyleText   string
	Diagnostics Diagnostics
}

// HTMLParser turns markup text into a normalized tree. It never fails.
type HTMLParser struct {
	log *zap.Logger
}

// NewHTMLParser creates a markup parser. A nil logger disables logging.
func NewHTMLParser(log *zap.Logger) *HTMLParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &HTMLParser{log: log.Named("html-parser")}
}

// ParseHTML parses raw with a silent parser.
func ParseHTML(raw string) *Document {
	return NewHTMLParser(nil).Parse(raw)
}

// Parse tokenizes raw, builds the element tree with lenient recovery and
// normalizes it to html > (head, body).
func (p *HTMLParser) Parse(raw string) *Document {
	var diags Diagnostics
	tokens := newTokenizer(raw).run()

	tb := newTreeBuilder(&diags)
	for _, tok := range tokens {
		tb.process(tok)
	}
	fragment, root := tb.finish()

	tree := normalize(fragment, root)
	doc := &Document{
		Tree:        tree,
		StyleText:   strings.Join(tb.styles, "\n"),
		Diagnostics: diags,
	}
	p.log.Debug("Document parsed",
		zap.Int("tokens", len(tokens)),
		zap.Int("nodes", tree.Len()),
		zap.Int("style_bytes", len(doc.StyleText)),
		zap.Int("stray_end_tags", diags.StrayEndTags),
		zap.Int("unclosed_elements", diags.UnclosedElements))
	return doc
}

// --- Tokenizer ---

type tokenizerState int

const (
	stateText tokenizerState = iota
	stateTagOpen
	stateTagName
	stateAttributeName
	stateAttributeValueUnquoted
	stateAttributeValueQuoted
	stateSelfClosingOrClose
	stateRawTextContent
	stateMarkupDeclaration
)

type htmlTokenKind int

const (
	textToken htmlTokenKind = iota
	startTagToken
	endTagToken
)

type htmlToken struct {
	kind        htmlTokenKind
	tag         dom.Tag
	attrs       dom.Attrs
	selfClosing bool
	text        string
	// raw marks text captured verbatim from a script or style element.
	raw bool
}

type tokenizer struct {
	cursor
	state  tokenizerState
	tokens []htmlToken
	text   strings.Builder

	// tag under construction
	tag      htmlToken
	attrName string
	quote    byte
	rawName  string
}

func newTokenizer(raw string) *tokenizer {
	return &tokenizer{cursor: cursor{input: raw}}
}

func (z *tokenizer) run() []htmlToken {
	for !z.eof() {
		switch z.state {
		case stateText:
			z.readText()
		case stateTagOpen:
			z.readTagOpen()
		case stateTagName:
			z.readTagName()
		case stateAttributeName:
			z.readAttributeName()
		case stateAttributeValueUnquoted:
			z.readAttributeValueUnquoted()
		case stateAttributeValueQuoted:
			z.readAttributeValueQuoted()
		case stateSelfClosingOrClose:
			z.readSelfClosingOrClose()
		case stateRawTextContent:
			z.readRawText()
		case stateMarkupDeclaration:
			z.readMarkupDeclaration()
		}
	}
	// A tag cut off by the end of input is still emitted.
	switch z.state {
	case stateTagName, stateAttributeName, stateAttributeValueUnquoted,
		stateAttributeValueQuoted, stateSelfClosingOrClose:
		z.emitTag()
	}
	z.flushText()
	return z.tokens
}

func (z *tokenizer) readText() {
	i := strings.IndexByte(z.input[z.pos:], '<')
	if i == -1 {
		z.text.WriteString(z.input[z.pos:])
		z.pos = len(z.input)
		return
	}
	z.text.WriteString(z.input[z.pos : z.pos+i])
	z.pos += i
	z.state = stateTagOpen
}

// readTagOpen decides what follows a '<'.
func (z *tokenizer) readTagOpen() {
	next := z.peek(1)
	switch {
	case isLetter(next):
		z.flushText()
		z.consumeChar()
		z.tag = htmlToken{kind: startTagToken}
		z.state = stateTagName
	case next == '/' && isLetter(z.peek(2)):
		z.flushText()
		z.consumeN(2)
		z.tag = htmlToken{kind: endTagToken}
		z.state = stateTagName
	case next == '!' || next == '?' || next == '/':
		z.flushText()
		z.state = stateMarkupDeclaration
	default:
		// not a tag, keep the '<' as text
		z.text.WriteByte(z.consumeChar())
		z.state = stateText
	}
}

func (z *tokenizer) readTagName() {
	start := z.pos
	for !z.eof() {
		ch := z.currentChar()
		if isWhitespace(ch) || ch == '/' || ch == '>' {
			break
		}
		z.pos++
	}
	z.tag.tag = dom.LookupTag(z.input[start:z.pos])

	if z.tag.kind == endTagToken {
		// attributes on end tags are ignored
		z.skipTo('>')
		z.consumeChar()
		z.emitTag()
		return
	}
	z.afterTagPart()
}

// afterTagPart dispatches on the character following a tag name or attribute.
func (z *tokenizer) afterTagPart() {
	z.consumeWhitespace()
	switch z.currentChar() {
	case '>':
		z.consumeChar()
		z.emitTag()
	case '/':
		z.state = stateSelfClosingOrClose
	default:
		z.state = stateAttributeName
	}
}

func (z *tokenizer) readAttributeName() {
	z.consumeWhitespace()
	if z.eof() {
		return
	}
	switch z.currentChar() {
	case '>', '/':
		z.afterTagPart()
		return
	}

	start := z.pos
	z.pos++ // the first character always belongs to the name
	for !z.eof() {
		ch := z.currentChar()
		if isWhitespace(ch) || ch == '/' || ch == '>' || ch == '=' {
			break
		}
		z.pos++
	}
	z.attrName = strings.ToLower(z.input[start:z.pos])

	z.consumeWhitespace()
	if z.currentChar() != '=' {
		z.setAttr("")
		z.afterTagPart()
		return
	}
	z.consumeChar()
	z.consumeWhitespace()
	switch ch := z.currentChar(); ch {
	case '"', '\'':
		z.quote = ch
		z.consumeChar()
		z.state = stateAttributeValueQuoted
	case '>':
		z.setAttr("")
		z.afterTagPart()
	default:
		z.state = stateAttributeValueUnquoted
	}
}

func (z *tokenizer) readAttributeValueQuoted() {
	i := strings.IndexByte(z.input[z.pos:], z.quote)
	if i == -1 {
		// unterminated: the rest of the input is the value
		z.setAttr(z.input[z.pos:])
		z.pos = len(z.input)
		return
	}
	z.setAttr(z.input[z.pos : z.pos+i])
	z.pos += i + 1
	z.afterTagPart()
}

func (z *tokenizer) readAttributeValueUnquoted() {
	start := z.pos
	for !z.eof() {
		ch := z.currentChar()
		if isWhitespace(ch) || ch == '>' {
			break
		}
		z.pos++
	}
	z.setAttr(z.input[start:z.pos])
	z.afterTagPart()
}

func (z *tokenizer) readSelfClosingOrClose() {
	z.consumeChar() // '/'
	z.consumeWhitespace()
	if z.currentChar() == '>' {
		z.consumeChar()
		z.tag.selfClosing = true
		z.emitTag()
		return
	}
	// a stray slash inside the tag is ignored
	z.state = stateAttributeName
}

// readRawText captures everything up to the matching end tag as one text token.
func (z *tokenizer) readRawText() {
	end := findRawTextEnd(z.input, z.pos, z.rawName)
	if end == -1 {
		z.tokens = append(z.tokens, htmlToken{kind: textToken, text: z.input[z.pos:], raw: true})
		z.pos = len(z.input)
		z.state = stateText
		return
	}
	if end > z.pos {
		z.tokens = append(z.tokens, htmlToken{kind: textToken, text: z.input[z.pos:end], raw: true})
	}
	z.pos = end
	z.state = stateTagOpen
}

// findRawTextEnd returns the offset of "</name" (ASCII case-insensitive) followed by
// whitespace, '/', '>' or the end of input, searching from pos.
func findRawTextEnd(input string, pos int, name string) int {
	for {
		i := strings.Index(input[pos:], "</")
		if i == -1 {
			return -1
		}
		at := pos + i
		nameEnd := at + 2 + len(name)
		if nameEnd <= len(input) && asciiEqualFold(input[at+2:nameEnd], name) {
			if nameEnd == len(input) {
				return at
			}
			if ch := input[nameEnd]; isWhitespace(ch) || ch == '/' || ch == '>' {
				return at
			}
		}
		pos = at + 2
	}
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// readMarkupDeclaration drops comments, doctypes, processing instructions and bogus end tags.
func (z *tokenizer) readMarkupDeclaration() {
	if z.startsWith("<!--") {
		z.consumeN(4)
		z.skipPast("-->")
	} else {
		z.skipPast(">")
	}
	z.state = stateText
}

func (z *tokenizer) setAttr(value string) {
	z.tag.attrs = z.tag.attrs.Set(z.attrName, html.UnescapeString(value))
	z.attrName = ""
}

func (z *tokenizer) emitTag() {
	tok := z.tag
	z.tag = htmlToken{}
	z.tokens = append(z.tokens, tok)
	z.state = stateText
	if tok.kind == startTagToken && tok.tag.IsRawText() && !tok.selfClosing {
		z.rawName = tok.tag.String()
		z.state = stateRawTextContent
	}
}

// flushText emits pending character data. Whitespace-only runs are dropped.
func (z *tokenizer) flushText() {
	s := z.text.String()
	z.text.Reset()
	if strings.TrimSpace(s) == "" {
		return
	}
	z.tokens = append(z.tokens, htmlToken{kind: textToken, text: html.UnescapeString(s)})
}

// --- Tree construction ---

// fragmentTag names the placeholder root that holds top-level content before normalization.
const fragmentTag = "#fragment"

type treeBuilder struct {
	b      *dom.Builder
	root   dom.NodeID
	stack  []dom.NodeID
	styles []string
	diags  *Diagnostics
}

func newTreeBuilder(diags *Diagnostics) *treeBuilder {
	b := dom.NewBuilder()
	root := b.Element(dom.InvalidNode, dom.LookupTag(fragmentTag), nil)
	b.SetRoot(root)
	return &treeBuilder{b: b, root: root, diags: diags}
}

func (tb *treeBuilder) current() dom.NodeID {
	if len(tb.stack) == 0 {
		return tb.root
	}
	return tb.stack[len(tb.stack)-1]
}

func (tb *treeBuilder) process(tok htmlToken) {
	switch tok.kind {
	case textToken:
		parent := tb.current()
		tb.b.Text(parent, tok.text)
		if tok.raw && tb.b.Node(parent).Tag.Is(dom.Style) {
			tb.styles = append(tb.styles, tok.text)
		}
	case startTagToken:
		id := tb.b.Element(tb.current(), tok.tag, tok.attrs)
		if !tok.tag.IsVoid() && !tok.selfClosing {
			tb.stack = append(tb.stack, id)
		}
	case endTagToken:
		name := tok.tag.String()
		for i := len(tb.stack) - 1; i >= 0; i-- {
			if tb.b.Node(tb.stack[i]).Tag.Matches(name) {
				tb.diags.UnclosedElements += len(tb.stack) - 1 - i
				tb.stack = tb.stack[:i]
				return
			}
		}
		tb.diags.StrayEndTags++
		tb.diags.warn("ignored end tag </%s> with no open element", name)
	}
}

func (tb *treeBuilder) finish() (*dom.Tree, dom.NodeID) {
	tb.diags.UnclosedElements += len(tb.stack)
	tb.stack = nil
	return tb.b.Tree(), tb.root
}

// normalize rebuilds the fragment as html > (head, body). Top-level html wrappers
// are unwrapped, titles move to head and every other top-level node moves to body
// in document order. Repeated head or body elements are merged into the first.
func normalize(src *dom.Tree, fragment dom.NodeID) *dom.Tree {
	items, htmlAttrs := flattenHTML(src, src.Children(fragment))

	var headAttrs, bodyAttrs dom.Attrs
	var seenHead, seenBody bool
	for _, id := range items {
		n := src.Node(id)
		switch {
		case n.Kind != dom.ElementNode:
		case n.Tag.Is(dom.Head) && !seenHead:
			seenHead = true
			headAttrs = n.Attrs
		case n.Tag.Is(dom.Body) && !seenBody:
			seenBody = true
			bodyAttrs = n.Attrs
		}
	}

	b := dom.NewBuilder()
	root := b.Element(dom.InvalidNode, dom.KnownTagOf(dom.Html), cloneAttrs(htmlAttrs))
	b.SetRoot(root)
	head := b.Element(root, dom.KnownTagOf(dom.Head), cloneAttrs(headAttrs))
	body := b.Element(root, dom.KnownTagOf(dom.Body), cloneAttrs(bodyAttrs))

	for _, id := range items {
		n := src.Node(id)
		switch {
		case n.Kind == dom.ElementNode && n.Tag.Is(dom.Head):
			for _, c := range n.Children {
				b.Copy(src, c, head)
			}
		case n.Kind == dom.ElementNode && n.Tag.Is(dom.Body):
			for _, c := range n.Children {
				b.Copy(src, c, body)
			}
		case n.Kind == dom.ElementNode && n.Tag.IsHeadOnly():
			b.Copy(src, id, head)
		default:
			b.Copy(src, id, body)
		}
	}
	return b.Tree()
}

// flattenHTML replaces top-level html elements with their children, recursively,
// and returns the attributes of the first html element seen.
func flattenHTML(src *dom.Tree, ids []dom.NodeID) ([]dom.NodeID, dom.Attrs) {
	var out []dom.NodeID
	var attrs dom.Attrs
	seen := false
	// pending holds the unvisited remainder of each sibling list, innermost last.
	pending := [][]dom.NodeID{ids}
	for len(pending) > 0 {
		top := len(pending) - 1
		if len(pending[top]) == 0 {
			pending = pending[:top]
			continue
		}
		id := pending[top][0]
		pending[top] = pending[top][1:]

		n := src.Node(id)
		if n.Kind == dom.ElementNode && n.Tag.Is(dom.Html) {
			if !seen {
				seen = true
				attrs = n.Attrs
			}
			pending = append(pending, n.Children)
			continue
		}
		out = append(out, id)
	}
	return out, attrs
}

func cloneAttrs(a dom.Attrs) dom.Attrs {
	if len(a) == 0 {
		return nil
	}
	out := make(dom.Attrs, len(a))
	copy(out, a)
	return out
}
