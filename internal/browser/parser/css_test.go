// internal/browser/parser/css_test.go
package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Helper functions to build expected structures concisely
func d(prop, raw string, v Value) Declaration {
	return Declaration{Property: prop, Raw: raw, Value: v}
}

func sel(kind SelectorKind, value string) Selector {
	return Selector{Kind: kind, Value: value}
}

func TestParseSimpleSelectors(t *testing.T) {
	tests := []struct {
		input  string
		want   Selector
		reason bool
	}{
		{"div", sel(SelectorType, "div"), false},
		{"DIV", sel(SelectorType, "div"), false},
		{"my-widget", sel(SelectorType, "my-widget"), false},
		{"#main", sel(SelectorID, "main"), false},
		{"#1st", sel(SelectorID, "1st"), false},
		{".button", sel(SelectorClass, "button"), false},
		{".btn-primary_2", sel(SelectorClass, "btn-primary_2"), false},
		{"*", sel(SelectorUniversal, ""), false},

		{"", Selector{}, true},
		{".", Selector{}, true},
		{"#", Selector{}, true},
		{".1x", Selector{}, true},
		{"div p", Selector{}, true},
		{"div > p", Selector{}, true},
		{"a:hover", Selector{}, true},
		{"p::before", Selector{}, true},
		{"div.note", Selector{}, true},
		{"*.x", Selector{}, true},
		{"[disabled]", Selector{}, true},
		{"1div", Selector{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, reason := parseSimpleSelector(tt.input)
			if tt.reason {
				assert.NotEmpty(t, reason)
				return
			}
			assert.Empty(t, reason)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCSSParser_Basic(t *testing.T) {
	input := `
		p { color: red; padding: 50% }
		.x { color: #00f; font-weight: bold; }
	`
	rules := ParseCSS(input)
	want := []Rule{
		{
			Selector: sel(SelectorType, "p"),
			Declarations: []Declaration{
				d("color", "red", Color{255, 0, 0, 255}),
				d("padding", "50%", Length{50, UnitPercent}),
			},
			Order: 0,
		},
		{
			Selector: sel(SelectorClass, "x"),
			Declarations: []Declaration{
				d("color", "#00f", Color{0, 0, 255, 255}),
				d("font-weight", "bold", Keyword("bold")),
			},
			Order: 1,
		},
	}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Errorf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestCSSParser_SelectorGroups(t *testing.T) {
	rules := ParseCSS("h1, .title , #top { margin: 4px } div { display: block }")
	require.Len(t, rules, 4)

	assert.Equal(t, sel(SelectorType, "h1"), rules[0].Selector)
	assert.Equal(t, sel(SelectorClass, "title"), rules[1].Selector)
	assert.Equal(t, sel(SelectorID, "top"), rules[2].Selector)
	for _, r := range rules[:3] {
		assert.Equal(t, 0, r.Order, "a group shares its source position")
		assert.Equal(t, []Declaration{d("margin", "4px", Length{4, UnitPx})}, r.Declarations)
	}
	assert.Equal(t, 1, rules[3].Order)
}

func TestCSSParser_DropsBadSelectorOnly(t *testing.T) {
	sheet := NewCSSParser(zaptest.NewLogger(t)).Parse("p, div > span, , .ok { color: red }")
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, sel(SelectorType, "p"), sheet.Rules[0].Selector)
	assert.Equal(t, sel(SelectorClass, "ok"), sheet.Rules[1].Selector)
	assert.Equal(t, 2, sheet.Diagnostics.DroppedSelectors)
}

func TestCSSParser_DropsBadDeclarationOnly(t *testing.T) {
	input := `p {
		color: notacolor;
		float: left;
		: nothing;
		margin;
		padding: 2em;
		width: 10px 20px;
		font-style: italic
	}
	.after { color: red }`
	sheet := NewCSSParser(zaptest.NewLogger(t)).Parse(input)
	require.Len(t, sheet.Rules, 2)
	assert.Equal(t, []Declaration{
		d("padding", "2em", Length{2, UnitEm}),
		d("font-style", "italic", Keyword("italic")),
	}, sheet.Rules[0].Declarations)
	assert.Equal(t, 5, sheet.Diagnostics.DroppedDeclarations)
	assert.Len(t, sheet.Diagnostics.Warnings, 5)
	assert.Equal(t, sel(SelectorClass, "after"), sheet.Rules[1].Selector)
}

func TestCSSParser_Leniency(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Rule
	}{
		{
			name:  "Comments anywhere",
			input: "/* a */ p /* b */ { /* c */ color /* d */ : red; /* e */ }",
			want:  []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{d("color", "red", Color{255, 0, 0, 255})}}},
		},
		{
			name:  "At-rules skipped",
			input: "@import url(x.css); @media screen { p { color: blue } } p { color: red }",
			want:  []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{d("color", "red", Color{255, 0, 0, 255})}}},
		},
		{
			name:  "Missing final semicolon",
			input: "p { color: red; display: none }",
			want: []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{
				d("color", "red", Color{255, 0, 0, 255}),
				d("display", "none", Keyword("none")),
			}}},
		},
		{
			name:  "Important stripped",
			input: "p { color: red !important; display: none!IMPORTANT }",
			want: []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{
				d("color", "red", Color{255, 0, 0, 255}),
				d("display", "none", Keyword("none")),
			}}},
		},
		{
			name:  "Property names lowercased",
			input: "p { COLOR: red }",
			want:  []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{d("color", "red", Color{255, 0, 0, 255})}}},
		},
		{
			name:  "Stray closing brace",
			input: "} p { color: red }",
			want:  []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{d("color", "red", Color{255, 0, 0, 255})}}},
		},
		{
			name:  "Semicolons and braces inside values",
			input: "p { font-family: \"a;b}\"; color: rgb(1, 2, 3) } div { display: x{y}z; color: red }",
			want: []Rule{
				{Selector: sel(SelectorType, "p"), Declarations: []Declaration{
					d("font-family", "\"a;b}\"", Keyword("\"a;b}\"")),
					d("color", "rgb(1, 2, 3)", Color{1, 2, 3, 255}),
				}},
				{Selector: sel(SelectorType, "div"), Declarations: []Declaration{
					d("display", "x{y}z", Keyword("x{y}z")),
					d("color", "red", Color{255, 0, 0, 255}),
				}, Order: 1},
			},
		},
		{
			name:  "Rule with only dropped declarations is kept",
			input: "p { float: left }",
			want:  []Rule{{Selector: sel(SelectorType, "p")}},
		},
		{
			name:  "Unterminated block",
			input: "p { color: red",
			want:  []Rule{{Selector: sel(SelectorType, "p"), Declarations: []Declaration{d("color", "red", Color{255, 0, 0, 255})}}},
		},
		{
			name:  "Selector without block",
			input: "p",
			want:  nil,
		},
		{
			name:  "Empty",
			input: "   ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCSS(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("rules mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCSSParser_Diagnostics(t *testing.T) {
	sheet := parseSheet(t, "@font-face { x: y } @charset 'x'; a:hover { color: red } p { float: none }")
	assert.Equal(t, 2, sheet.Diagnostics.SkippedAtRules)
	assert.Equal(t, 1, sheet.Diagnostics.DroppedSelectors)
	assert.Equal(t, 1, sheet.Diagnostics.DroppedDeclarations)
	require.Len(t, sheet.Rules, 1)
	assert.Equal(t, 1, sheet.Rules[0].Order)
}

func parseSheet(t *testing.T, text string) StyleSheet {
	t.Helper()
	return NewCSSParser(zaptest.NewLogger(t)).Parse(text)
}

func TestStripImportant(t *testing.T) {
	assert.Equal(t, "red", stripImportant("red !important"))
	assert.Equal(t, "red", stripImportant("red!important"))
	assert.Equal(t, "red", stripImportant("red ! important"))
	assert.Equal(t, "unimportant", stripImportant("unimportant"))
	assert.Equal(t, "", stripImportant("!important"))
}

func FuzzParseCSS(f *testing.F) {
	for _, s := range []string{
		"p { color: red }",
		"h1, .x, #y { margin: 1px; padding: 2% }",
		"@media x { p { } } }}} {{{",
		"/* unterminated",
		"p { font-family: 'unterminated",
		"a { color: rgb(1,2,3",
	} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, text string) {
		sheet := NewCSSParser(nil).Parse(text)
		for i, r := range sheet.Rules {
			if i > 0 {
				require.GreaterOrEqual(t, r.Order, sheet.Rules[i-1].Order)
			}
			for _, decl := range r.Declarations {
				require.NotNil(t, decl.Value)
			}
		}
	})
}
