// internal/browser/parser/css.go
package parser

import (
	"strings"

	"go.uber.org/zap"
)

// StyleSheet is the result of parsing stylesheet text.
type StyleSheet struct {
	Rules       []Rule
	Diagnostics Diagnostics
}

// CSSParser parses stylesheet text into rules. It never fails; malformed
// selectors and declarations are dropped one at a time.
type CSSParser struct {
	log *zap.Logger
}

// NewCSSParser creates a stylesheet parser. A nil logger disables logging.
func NewCSSParser(log *zap.Logger) *CSSParser {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSSParser{log: log.Named("css-parser")}
}

// ParseCSS parses text with a silent parser and returns the rules.
func ParseCSS(text string) []Rule {
	return NewCSSParser(nil).Parse(text).Rules
}

// cssState holds the per-call state so a CSSParser can be shared between goroutines.
type cssState struct {
	cursor
	log   *zap.Logger
	diags Diagnostics
}

// Parse analyzes the stylesheet text and returns its rules in source order.
// Each selector of a comma separated group becomes its own Rule; the rules of
// one group share the declarations and the Order.
func (p *CSSParser) Parse(text string) StyleSheet {
	s := &cssState{cursor: cursor{input: text}, log: p.log}
	var rules []Rule
	order := 0
	for {
		s.skipWhitespaceAndComments()
		if s.eof() {
			break
		}

		switch s.currentChar() {
		case '@':
			s.skipAtRule()
			continue
		case '}':
			s.consumeChar()
			s.diags.warn("stray '}' at offset %d", s.pos-1)
			continue
		}

		prelude, ok := s.parsePrelude()
		if !ok {
			if strings.TrimSpace(prelude) != "" {
				s.dropSelector(prelude, "no declaration block")
			}
			continue
		}

		selectors := s.parseSelectorGroup(prelude)
		declarations := s.parseDeclarations()
		for _, sel := range selectors {
			rules = append(rules, Rule{Selector: sel, Declarations: declarations, Order: order})
		}
		order++
	}

	s.log.Debug("Stylesheet parsed",
		zap.Int("rules", len(rules)),
		zap.Int("dropped_selectors", s.diags.DroppedSelectors),
		zap.Int("dropped_declarations", s.diags.DroppedDeclarations),
		zap.Int("skipped_at_rules", s.diags.SkippedAtRules))
	return StyleSheet{Rules: rules, Diagnostics: s.diags}
}

// parsePrelude reads the selector text up to '{' and consumes the brace.
// It reports false when a '}' or the end of input comes first.
func (s *cssState) parsePrelude() (string, bool) {
	var sb strings.Builder
	for !s.eof() {
		switch ch := s.currentChar(); {
		case ch == '{':
			s.consumeChar()
			return sb.String(), true
		case ch == '}':
			s.consumeChar()
			return sb.String(), false
		case s.startsWith("/*"):
			s.skipComment()
			sb.WriteByte(' ')
		case ch == '"' || ch == '\'':
			start := s.pos
			s.skipQuotedString(ch)
			sb.WriteString(s.input[start:s.pos])
		default:
			sb.WriteByte(s.consumeChar())
		}
	}
	return sb.String(), false
}

// parseSelectorGroup splits the prelude on commas and keeps every valid simple selector.
func (s *cssState) parseSelectorGroup(prelude string) []Selector {
	var out []Selector
	for _, part := range strings.Split(prelude, ",") {
		sel, reason := parseSimpleSelector(strings.TrimSpace(part))
		if reason != "" {
			s.dropSelector(part, reason)
			continue
		}
		out = append(out, sel)
	}
	return out
}

func (s *cssState) dropSelector(text, reason string) {
	text = strings.TrimSpace(text)
	s.diags.DroppedSelectors++
	s.diags.warn("dropped selector %q: %s", text, reason)
	s.log.Debug("Dropped selector", zap.String("selector", text), zap.String("reason", reason))
}

// parseSimpleSelector parses one of "*", "tag", ".class" or "#id".
// A non-empty reason means the selector is unsupported.
func parseSimpleSelector(text string) (Selector, string) {
	if text == "" {
		return Selector{}, "empty selector"
	}
	switch text[0] {
	case '*':
		if len(text) != 1 {
			return Selector{}, "compound selectors are not supported"
		}
		return Selector{Kind: SelectorUniversal}, ""
	case '.':
		name := text[1:]
		if name == "" || !isValidIdentifierStart(name[0]) || !isIdentifier(name) {
			return Selector{}, "invalid class selector"
		}
		return Selector{Kind: SelectorClass, Value: name}, ""
	case '#':
		name := text[1:]
		if name == "" || !isIdentifier(name) {
			return Selector{}, "invalid id selector"
		}
		return Selector{Kind: SelectorID, Value: name}, ""
	}
	if !isValidIdentifierStart(text[0]) {
		return Selector{}, "unexpected leading character"
	}
	if !isIdentifier(text) {
		return Selector{}, "combinators, pseudo classes and compound selectors are not supported"
	}
	return Selector{Kind: SelectorType, Value: strings.ToLower(text)}, ""
}

func isIdentifier(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isValidIdentifierChar(s[i]) {
			return false
		}
	}
	return true
}

// parseDeclarations parses the content of a block whose '{' was already consumed,
// including the closing '}'.
func (s *cssState) parseDeclarations() []Declaration {
	var declarations []Declaration
	for {
		s.skipWhitespaceAndComments()
		if s.eof() {
			return declarations
		}
		switch s.currentChar() {
		case '}':
			s.consumeChar()
			return declarations
		case ';':
			s.consumeChar()
			continue
		}
		if d, ok := s.parseDeclaration(); ok {
			declarations = append(declarations, d)
		}
	}
}

// parseDeclaration parses a single 'property: value' pair and its optional ';'.
func (s *cssState) parseDeclaration() (Declaration, bool) {
	start := s.pos
	prop := strings.ToLower(s.parseIdentifier())
	s.skipWhitespaceAndComments()
	if prop == "" || s.currentChar() != ':' {
		s.parseValue()
		s.dropDeclaration(prop, strings.TrimSpace(s.input[start:s.pos]), "malformed declaration")
		s.consumeSemicolon()
		return Declaration{}, false
	}
	s.consumeChar() // ':'

	raw := stripImportant(s.parseValue())
	s.consumeSemicolon()

	if raw == "" {
		s.dropDeclaration(prop, raw, "empty value")
		return Declaration{}, false
	}
	kind, known := LookupProperty(prop)
	if !known {
		s.dropDeclaration(prop, raw, "unsupported property")
		return Declaration{}, false
	}
	v, ok := ParseValue(prop, raw)
	if !ok {
		s.dropDeclaration(prop, raw, "not a valid "+kind.String())
		return Declaration{}, false
	}
	return Declaration{Property: prop, Raw: raw, Value: v}, true
}

func (s *cssState) dropDeclaration(prop, raw, reason string) {
	s.diags.DroppedDeclarations++
	s.diags.warn("dropped declaration %s: %q: %s", prop, raw, reason)
	s.log.Debug("Dropped declaration",
		zap.String("property", prop),
		zap.String("value", raw),
		zap.String("reason", reason))
}

func (s *cssState) consumeSemicolon() {
	s.skipWhitespaceAndComments()
	if s.currentChar() == ';' {
		s.consumeChar()
	}
}

// parseValue reads a value until ';' or '}' outside of quotes and brackets.
func (s *cssState) parseValue() string {
	start := s.pos
	for !s.eof() {
		switch ch := s.currentChar(); ch {
		case ';', '}':
			return strings.TrimSpace(s.input[start:s.pos])
		case '"', '\'':
			s.skipQuotedString(ch)
		case '(':
			s.skipBlock('(', ')')
		case '[':
			s.skipBlock('[', ']')
		case '{':
			s.skipBlock('{', '}')
		default:
			s.pos++
		}
	}
	return strings.TrimSpace(s.input[start:s.pos])
}

// stripImportant removes a trailing !important marker, which carries no weight here.
func stripImportant(v string) string {
	const marker = "important"
	lower := strings.ToLower(v)
	if !strings.HasSuffix(lower, marker) {
		return v
	}
	rest := strings.TrimRight(v[:len(v)-len(marker)], " \t\n\r\f")
	if !strings.HasSuffix(rest, "!") {
		return v
	}
	return strings.TrimSpace(rest[:len(rest)-1])
}

// --- Lexer-like Helpers ---

func (s *cssState) skipWhitespaceAndComments() {
	for {
		s.consumeWhitespace()
		if !s.startsWith("/*") {
			return
		}
		s.skipComment()
	}
}

func (s *cssState) skipComment() {
	s.consumeN(2)
	s.skipPast("*/")
}

// skipBlock expects the cursor on open and moves past the matching close.
func (s *cssState) skipBlock(open, close byte) {
	depth := 0
	for !s.eof() {
		ch := s.currentChar()
		switch {
		case ch == '"' || ch == '\'':
			s.skipQuotedString(ch)
			continue
		case ch == open:
			depth++
		case ch == close:
			depth--
			if depth == 0 {
				s.consumeChar()
				return
			}
		}
		s.consumeChar()
	}
}

func (s *cssState) skipQuotedString(quote byte) {
	s.consumeChar() // opening quote
	for !s.eof() {
		ch := s.consumeChar()
		if ch == '\\' {
			s.consumeChar()
		} else if ch == quote {
			return
		}
	}
}

// skipAtRule skips an at-rule and its block or terminating ';'.
func (s *cssState) skipAtRule() {
	start := s.pos
	s.consumeChar() // '@'
	name := s.parseIdentifier()
	for !s.eof() {
		ch := s.currentChar()
		if ch == '{' {
			s.skipBlock('{', '}')
			break
		}
		if ch == ';' {
			s.consumeChar()
			break
		}
		if ch == '"' || ch == '\'' {
			s.skipQuotedString(ch)
			continue
		}
		s.pos++
	}
	s.diags.SkippedAtRules++
	s.log.Debug("Skipped at-rule", zap.String("name", name), zap.Int("offset", start))
}
