// internal/browser/parser/types.go
package parser

import (
	"fmt"
	"strconv"
)

// SelectorKind enumerates the simple selector variants.
type SelectorKind int

const (
	SelectorUniversal SelectorKind = iota // *
	SelectorType                          // p
	SelectorClass                         // .note
	SelectorID                            // #main
)

// Selector is a simple selector expressing exactly one condition.
type Selector struct {
	Kind SelectorKind
	// Value is the tag name, class token or id. Empty for Universal.
	Value string
}

// String renders the selector in CSS syntax.
func (s Selector) String() string {
	switch s.Kind {
	case SelectorUniversal:
		return "*"
	case SelectorClass:
		return "." + s.Value
	case SelectorID:
		return "#" + s.Value
	default:
		return s.Value
	}
}

// Declaration is a single property assignment with its raw and parsed value.
type Declaration struct {
	Property string
	Raw      string
	Value    Value
}

// Rule pairs one selector with a declaration block.
// Rules produced from one comma-separated group share Declarations and Order.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	// Order is the position of the originating rule set in the combined source.
	Order int
}

// Value is a resolved property value: Length, Color or Keyword.
// The set is closed; switch on the concrete type.
type Value interface {
	fmt.Stringer
	isValue()
}

// Unit tags a Length.
type Unit int

const (
	UnitPx Unit = iota
	UnitEm
	UnitRem
	UnitPercent
)

func (u Unit) String() string {
	switch u {
	case UnitPx:
		return "px"
	case UnitEm:
		return "em"
	case UnitRem:
		return "rem"
	case UnitPercent:
		return "%"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

// Length is a number with a unit, stored unresolved.
type Length struct {
	Value float64
	Unit  Unit
}

func (Length) isValue() {}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// Color is an RGBA color with 8-bit channels.
type Color struct {
	R, G, B, A uint8
}

func (Color) isValue() {}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
}

// Keyword is a literal token such as "bold" or "none".
type Keyword string

func (Keyword) isValue() {}

func (k Keyword) String() string { return string(k) }

// Diagnostics counts recoveries made while parsing. Advisory only.
type Diagnostics struct {
	StrayEndTags        int
	UnclosedElements    int
	DroppedSelectors    int
	DroppedDeclarations int
	SkippedAtRules      int
	Warnings            []string
}

// Add merges other into d.
func (d *Diagnostics) Add(other Diagnostics) {
	d.StrayEndTags += other.StrayEndTags
	d.UnclosedElements += other.UnclosedElements
	d.DroppedSelectors += other.DroppedSelectors
	d.DroppedDeclarations += other.DroppedDeclarations
	d.SkippedAtRules += other.SkippedAtRules
	d.Warnings = append(d.Warnings, other.Warnings...)
}

func (d *Diagnostics) warn(format string, args ...any) {
	d.Warnings = append(d.Warnings, fmt.Sprintf(format, args...))
}
