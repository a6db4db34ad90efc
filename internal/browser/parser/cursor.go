// internal/browser/parser/cursor.go
package parser

import "strings"

// cursor is a byte position over an input string, shared by the markup tokenizer
// and the stylesheet parser.
type cursor struct {
	input string
	pos   int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.input)
}

func (c *cursor) currentChar() byte {
	if c.eof() {
		return 0
	}
	return c.input[c.pos]
}

// peek returns the byte n positions ahead of the current one, or 0 past the end.
func (c *cursor) peek(n int) byte {
	if c.pos+n >= len(c.input) {
		return 0
	}
	return c.input[c.pos+n]
}

func (c *cursor) consumeChar() byte {
	ch := c.currentChar()
	if !c.eof() {
		c.pos++
	}
	return ch
}

func (c *cursor) consumeN(n int) {
	c.pos += n
	if c.pos > len(c.input) {
		c.pos = len(c.input)
	}
}

func (c *cursor) consumeWhitespace() {
	for !c.eof() && isWhitespace(c.currentChar()) {
		c.pos++
	}
}

func (c *cursor) startsWith(s string) bool {
	return strings.HasPrefix(c.input[c.pos:], s)
}

func (c *cursor) startsWithFold(s string) bool {
	if c.pos+len(s) > len(c.input) {
		return false
	}
	return strings.EqualFold(c.input[c.pos:c.pos+len(s)], s)
}

// skipTo advances to the first of targets, or to the end of input.
func (c *cursor) skipTo(targets ...byte) {
	for !c.eof() {
		if strings.IndexByte(string(targets), c.currentChar()) >= 0 {
			return
		}
		c.pos++
	}
}

// skipPast advances beyond the next occurrence of s, or to the end of input.
func (c *cursor) skipPast(s string) {
	i := strings.Index(c.input[c.pos:], s)
	if i == -1 {
		c.pos = len(c.input)
		return
	}
	c.pos += i + len(s)
}

func (c *cursor) parseIdentifier() string {
	start := c.pos
	for !c.eof() && isValidIdentifierChar(c.currentChar()) {
		c.pos++
	}
	return c.input[start:c.pos]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isValidIdentifierStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch == '-' || ch >= 0x80
}

func isValidIdentifierChar(ch byte) bool {
	return isValidIdentifierStart(ch) || (ch >= '0' && ch <= '9')
}
