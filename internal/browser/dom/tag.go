// internal/browser/dom/tag.go
package dom

import "strings"

// KnownTag enumerates the element names the engine recognizes.
// Anything else is represented as Custom with the literal name kept on the Tag.
type KnownTag int

const (
	Custom KnownTag = iota
	Html
	Head
	Body
	Title
	Script
	Style
	Div
	Span
	P
	H1
	H2
	H3
	H4
	H5
	H6
	A
	B
	I
	U
	S
	W
	Em
	Strong
	Small
	Big
	Abbr
	Br
	Hr
	Img
	Audio
	Source
	Table
	Caption
	Thead
	Tbody
	Tfoot
	Tr
	Th
	Td
	Ul
	Ol
	Li
)

var knownTagNames = [...]string{
	Custom:  "",
	Html:    "html",
	Head:    "head",
	Body:    "body",
	Title:   "title",
	Script:  "script",
	Style:   "style",
	Div:     "div",
	Span:    "span",
	P:       "p",
	H1:      "h1",
	H2:      "h2",
	H3:      "h3",
	H4:      "h4",
	H5:      "h5",
	H6:      "h6",
	A:       "a",
	B:       "b",
	I:       "i",
	U:       "u",
	S:       "s",
	W:       "w",
	Em:      "em",
	Strong:  "strong",
	Small:   "small",
	Big:     "big",
	Abbr:    "abbr",
	Br:      "br",
	Hr:      "hr",
	Img:     "img",
	Audio:   "audio",
	Source:  "source",
	Table:   "table",
	Caption: "caption",
	Thead:   "thead",
	Tbody:   "tbody",
	Tfoot:   "tfoot",
	Tr:      "tr",
	Th:      "th",
	Td:      "td",
	Ul:      "ul",
	Ol:      "ol",
	Li:      "li",
}

// knownTags maps lowercase names to their KnownTag. Built once at init, read-only afterwards.
var knownTags = func() map[string]KnownTag {
	m := make(map[string]KnownTag, len(knownTagNames))
	for i, name := range knownTagNames {
		if name != "" {
			m[name] = KnownTag(i)
		}
	}
	return m
}()

// String returns the canonical lowercase name, or "" for Custom.
func (k KnownTag) String() string {
	if k < 0 || int(k) >= len(knownTagNames) {
		return ""
	}
	return knownTagNames[k]
}

// Tag is the identity of an element: a known tag, or a custom tag with its literal name.
type Tag struct {
	Known KnownTag
	// Name is the literal spelling for custom tags. Empty for known tags.
	Name string
}

// LookupTag resolves a tag name case-insensitively.
func LookupTag(name string) Tag {
	if k, ok := knownTags[strings.ToLower(name)]; ok {
		return Tag{Known: k}
	}
	return Tag{Known: Custom, Name: name}
}

// KnownTagOf is a shorthand for a Tag of a known kind.
func KnownTagOf(k KnownTag) Tag {
	return Tag{Known: k}
}

// String returns the tag name as used in markup and in Type selectors.
func (t Tag) String() string {
	if t.Known == Custom {
		return t.Name
	}
	return t.Known.String()
}

// Is reports whether t is the given known tag.
func (t Tag) Is(k KnownTag) bool {
	return t.Known == k && k != Custom
}

// Matches reports whether the tag's name equals name, ignoring ASCII case.
// Custom tags are compared by their literal name.
func (t Tag) Matches(name string) bool {
	return strings.EqualFold(t.String(), name)
}

// IsVoid reports whether the element never has children or a closing tag.
func (t Tag) IsVoid() bool {
	switch t.Known {
	case Br, Hr, Img:
		return true
	}
	return false
}

// IsRawText reports whether the element's content is captured verbatim.
func (t Tag) IsRawText() bool {
	switch t.Known {
	case Script, Style:
		return true
	}
	return false
}

// IsHeadOnly reports whether a top-level occurrence belongs in <head>.
func (t Tag) IsHeadOnly() bool {
	return t.Known == Title
}
