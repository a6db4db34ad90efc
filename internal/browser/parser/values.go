// internal/browser/parser/values.go
package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// PropertyKind selects the value parser for a property.
type PropertyKind int

const (
	KindColor PropertyKind = iota + 1
	KindLength
	KindKeyword
)

func (k PropertyKind) String() string {
	switch k {
	case KindColor:
		return "color"
	case KindLength:
		return "length"
	case KindKeyword:
		return "keyword"
	default:
		return "unknown"
	}
}

// propertyKinds is the fixed table of supported properties. Read-only after init.
var propertyKinds = map[string]PropertyKind{
	"color":            KindColor,
	"text-color":       KindColor,
	"background-color": KindColor,
	"border-color":     KindColor,

	"margin":              KindLength,
	"margin-top":          KindLength,
	"margin-right":        KindLength,
	"margin-bottom":       KindLength,
	"margin-left":         KindLength,
	"padding":             KindLength,
	"padding-top":         KindLength,
	"padding-right":       KindLength,
	"padding-bottom":      KindLength,
	"padding-left":        KindLength,
	"border-width":        KindLength,
	"border-radius":       KindLength,
	"border-radius-ne":    KindLength,
	"border-radius-nw":    KindLength,
	"border-radius-se":    KindLength,
	"border-radius-sw":    KindLength,
	"width":               KindLength,
	"height":              KindLength,
	"font-size":           KindLength,

	"font-weight":     KindKeyword,
	"font-style":      KindKeyword,
	"font-family":     KindKeyword,
	"text-decoration": KindKeyword,
	"text-align":      KindKeyword,
	"display":         KindKeyword,
	"border-style":    KindKeyword,
	"visibility":      KindKeyword,
}

// LookupProperty returns the value kind of a property name (lowercase).
func LookupProperty(name string) (PropertyKind, bool) {
	k, ok := propertyKinds[name]
	return k, ok
}

// ParseValue parses raw according to the kind of property.
// It fails for unknown properties and for values that do not fit the kind.
func ParseValue(property, raw string) (Value, bool) {
	kind, ok := propertyKinds[property]
	if !ok {
		return nil, false
	}
	switch kind {
	case KindColor:
		if c, ok := ParseColor(raw); ok {
			return c, true
		}
	case KindLength:
		if l, ok := ParseLength(raw); ok {
			return l, true
		}
	case KindKeyword:
		if k, ok := ParseKeyword(raw); ok {
			return k, true
		}
	}
	return nil, false
}

type token struct {
	tt   css.TokenType
	data string
}

// lex splits a value into CSS tokens, dropping whitespace and comments.
func lex(s string) []token {
	l := css.NewLexer(parse.NewInputString(s))
	var out []token
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return out
		case css.WhitespaceToken, css.CommentToken:
			continue
		}
		out = append(out, token{tt: tt, data: string(data)})
	}
}

var lengthUnits = map[string]Unit{
	"px":  UnitPx,
	"em":  UnitEm,
	"rem": UnitRem,
}

// ParseLength accepts a single number followed by px, em, rem or %.
func ParseLength(raw string) (Length, bool) {
	toks := lex(raw)
	if len(toks) != 1 {
		return Length{}, false
	}
	switch t := toks[0]; t.tt {
	case css.PercentageToken:
		v, err := strconv.ParseFloat(strings.TrimSuffix(t.data, "%"), 64)
		if err != nil {
			return Length{}, false
		}
		return Length{Value: v, Unit: UnitPercent}, true
	case css.DimensionToken:
		num, unit := splitDimension(t.data)
		u, ok := lengthUnits[strings.ToLower(unit)]
		if !ok {
			return Length{}, false
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return Length{}, false
		}
		return Length{Value: v, Unit: u}, true
	}
	return Length{}, false
}

// splitDimension separates "12.5px" into "12.5" and "px".
func splitDimension(s string) (num, unit string) {
	i := len(s)
	for i > 0 {
		c := s[i-1]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			i--
			continue
		}
		break
	}
	return s[:i], s[i:]
}

// ParseKeyword accepts any non-empty trimmed token string as-is.
func ParseKeyword(raw string) (Keyword, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	return Keyword(raw), true
}

// ParseColor accepts hex, rgb(), rgba(), hsl(), hsla() and named colors.
func ParseColor(raw string) (Color, bool) {
	toks := lex(raw)
	if len(toks) == 0 {
		return Color{}, false
	}
	switch first := toks[0]; first.tt {
	case css.HashToken:
		if len(toks) != 1 {
			return Color{}, false
		}
		return parseHexColor(strings.TrimPrefix(first.data, "#"))
	case css.IdentToken:
		if len(toks) != 1 {
			return Color{}, false
		}
		c, ok := namedColors[strings.ToLower(first.data)]
		return c, ok
	case css.FunctionToken:
		args, ok := functionArgs(toks[1:])
		if !ok {
			return Color{}, false
		}
		return parseColorFunction(strings.ToLower(strings.TrimSuffix(first.data, "(")), args)
	}
	return Color{}, false
}

// functionArgs reads "n , n , n )" and returns the numbers.
// The closing parenthesis must be the last token.
func functionArgs(toks []token) ([]string, bool) {
	var args []string
	expectNumber := true
	for i, t := range toks {
		switch {
		case t.tt == css.RightParenthesisToken:
			if i != len(toks)-1 || expectNumber {
				return nil, false
			}
			return args, true
		case expectNumber && t.tt == css.NumberToken:
			args = append(args, t.data)
			expectNumber = false
		case !expectNumber && t.tt == css.CommaToken:
			expectNumber = true
		default:
			return nil, false
		}
	}
	return nil, false
}

func parseColorFunction(name string, args []string) (Color, bool) {
	var want int
	switch name {
	case "rgb", "hsl":
		want = 3
	case "rgba", "hsla":
		want = 4
	default:
		return Color{}, false
	}
	if len(args) != want {
		return Color{}, false
	}
	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(args[i], 10, 8)
		if err != nil {
			return Color{}, false
		}
		ch[i] = uint8(v)
	}
	alpha := uint8(255)
	if want == 4 {
		a, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return Color{}, false
		}
		alpha = uint8(math.Round(clamp(a, 0, 1) * 255))
	}
	if name == "hsl" || name == "hsla" {
		r, g, b := hslToRGB(ch[0], ch[1], ch[2])
		return Color{R: r, G: g, B: b, A: alpha}, true
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

func parseHexColor(hex string) (Color, bool) {
	for i := 0; i < len(hex); i++ {
		if _, ok := hexDigit(hex[i]); !ok {
			return Color{}, false
		}
	}
	nibble := func(i int) uint8 {
		v, _ := hexDigit(hex[i])
		return v<<4 | v
	}
	pair := func(i int) uint8 {
		hi, _ := hexDigit(hex[i])
		lo, _ := hexDigit(hex[i+1])
		return hi<<4 | lo
	}
	switch len(hex) {
	case 3:
		return Color{R: nibble(0), G: nibble(1), B: nibble(2), A: 255}, true
	case 4:
		return Color{R: nibble(0), G: nibble(1), B: nibble(2), A: nibble(3)}, true
	case 6:
		return Color{R: pair(0), G: pair(2), B: pair(4), A: 255}, true
	case 8:
		return Color{R: pair(0), G: pair(2), B: pair(4), A: pair(6)}, true
	}
	return Color{}, false
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// hslToRGB converts hue, saturation and lightness given as 0..255 each.
// Hue is scaled to degrees as h/255*360, saturation and lightness to s/255 and l/255.
func hslToRGB(h, s, l uint8) (uint8, uint8, uint8) {
	hue := float64(h) / 255 * 360
	sat := float64(s) / 255
	light := float64(l) / 255

	c := (1 - math.Abs(2*light-1)) * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := light - c/2

	var r1, g1, b1 float64
	switch {
	case hue < 60:
		r1, g1, b1 = c, x, 0
	case hue < 120:
		r1, g1, b1 = x, c, 0
	case hue < 180:
		r1, g1, b1 = 0, c, x
	case hue < 240:
		r1, g1, b1 = 0, x, c
	case hue < 300:
		r1, g1, b1 = x, 0, c
	default:
		r1, g1, b1 = c, 0, x
	}
	return toByte(r1 + m), toByte(g1 + m), toByte(b1 + m)
}

func toByte(f float64) uint8 {
	return uint8(math.Round(clamp(f, 0, 1) * 255))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
