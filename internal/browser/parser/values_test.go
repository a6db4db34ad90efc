// internal/browser/parser/values_test.go
package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		input string
		want  Color
		ok    bool
	}{
		{"#ff0000", Color{255, 0, 0, 255}, true},
		{"#FF0000", Color{255, 0, 0, 255}, true},
		{"#f00", Color{255, 0, 0, 255}, true},
		{"#f008", Color{255, 0, 0, 136}, true},
		{"#12345678", Color{0x12, 0x34, 0x56, 0x78}, true},
		{"rgb(255,0,0)", Color{255, 0, 0, 255}, true},
		{"rgb( 10 , 20 , 30 )", Color{10, 20, 30, 255}, true},
		{"RGB(1,2,3)", Color{1, 2, 3, 255}, true},
		{"rgba(0,0,255,0.5)", Color{0, 0, 255, 128}, true},
		{"rgba(0,0,255,1)", Color{0, 0, 255, 255}, true},
		{"rgba(0,0,255,2)", Color{0, 0, 255, 255}, true},
		{"red", Color{255, 0, 0, 255}, true},
		{"Red", Color{255, 0, 0, 255}, true},
		{"transparent", Color{0, 0, 0, 0}, true},
		{"hsl(0,0,0)", Color{0, 0, 0, 255}, true},
		{"hsl(0,255,128)", Color{255, 1, 1, 255}, true},
		{"hsl(85,255,128)", Color{1, 255, 1, 255}, true},
		{"hsla(0,0,255,0)", Color{255, 255, 255, 0}, true},

		{"", Color{}, false},
		{"#ff00", Color{255, 255, 0, 0}, true},
		{"#ff000", Color{}, false},
		{"#ggg", Color{}, false},
		{"rgb(256,0,0)", Color{}, false},
		{"rgb(-1,0,0)", Color{}, false},
		{"rgb(1.5,0,0)", Color{}, false},
		{"rgb(1,2)", Color{}, false},
		{"rgb(1,2,3,0.5)", Color{}, false},
		{"rgba(1,2,3)", Color{}, false},
		{"rgb(1,2,3", Color{}, false},
		{"rgb(1,,2,3)", Color{}, false},
		{"cmyk(1,2,3)", Color{}, false},
		{"notacolor", Color{}, false},
		{"red blue", Color{}, false},
		{"12px", Color{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseColor(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseColor_EquivalentForms(t *testing.T) {
	want := Color{R: 255, G: 0, B: 0, A: 255}
	for _, in := range []string{"#ff0000", "rgb(255,0,0)", "red"} {
		got, ok := ParseColor(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseLength(t *testing.T) {
	tests := []struct {
		input string
		want  Length
		ok    bool
	}{
		{"10px", Length{10, UnitPx}, true},
		{"1.5em", Length{1.5, UnitEm}, true},
		{"2rem", Length{2, UnitRem}, true},
		{"50%", Length{50, UnitPercent}, true},
		{"-4px", Length{-4, UnitPx}, true},
		{".5em", Length{0.5, UnitEm}, true},
		{"10PX", Length{10, UnitPx}, true},
		{"  8px  ", Length{8, UnitPx}, true},

		{"0", Length{}, false},
		{"10", Length{}, false},
		{"10pt", Length{}, false},
		{"px", Length{}, false},
		{"10px 20px", Length{}, false},
		{"auto", Length{}, false},
		{"", Length{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLength(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseValue_Dispatch(t *testing.T) {
	tests := []struct {
		property string
		raw      string
		want     Value
		ok       bool
	}{
		{"color", "red", Color{255, 0, 0, 255}, true},
		{"text-color", "#000", Color{0, 0, 0, 255}, true},
		{"background-color", "rgba(0,0,0,0)", Color{0, 0, 0, 0}, true},
		{"padding", "50%", Length{50, UnitPercent}, true},
		{"border-radius-ne", "4px", Length{4, UnitPx}, true},
		{"font-weight", "bold", Keyword("bold"), true},
		{"display", "none", Keyword("none"), true},
		{"font-family", "Times New Roman", Keyword("Times New Roman"), true},

		{"color", "10px", nil, false},
		{"margin", "red", nil, false},
		{"display", "  ", nil, false},
		{"float", "left", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.property+":"+tt.raw, func(t *testing.T) {
			got, ok := ParseValue(tt.property, tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "50%", Length{50, UnitPercent}.String())
	assert.Equal(t, "1.5em", Length{1.5, UnitEm}.String())
	assert.Equal(t, "rgba(255,0,0,255)", Color{255, 0, 0, 255}.String())
	assert.Equal(t, "bold", Keyword("bold").String())
	assert.Equal(t, "length", KindLength.String())
}
