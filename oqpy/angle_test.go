package oqpy

import (
	"math"
	"testing"
)

func TestParseAngle(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		// Plain numbers
		{"1.5707", 1.5707, true},
		{"-0.5", -0.5, true},
		{"42", 42, true},

		// Pi constant
		{"pi", math.Pi, true},
		{"PI", math.Pi, true},
		{"π", math.Pi, true},

		// Fractions and coefficients
		{"pi/2", math.Pi / 2, true},
		{"pi/8", math.Pi / 8, true},
		{"2pi", 2 * math.Pi, true},
		{"3*pi/4", 3 * math.Pi / 4, true},
		{"-3*pi/4", -3 * math.Pi / 4, true},
		{" 3 * pi / 4 ", 3 * math.Pi / 4, true},

		// Invalid
		{"", 0, false},
		{"theta", 0, false},
		{"pi/0", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseAngle(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseAngle(%q): ok=%v, want ok=%v", tt.input, ok, tt.ok)
			continue
		}
		if ok && math.Abs(got-tt.want) > 1e-10 {
			t.Errorf("ParseAngle(%q) = %g, want %g", tt.input, got, tt.want)
		}
	}
}

func TestFormatAngle(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0.0"},
		{2, "2.0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		if got := FormatAngle(tt.input); got != tt.want {
			t.Errorf("FormatAngle(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatAngleRoundTrip(t *testing.T) {
	for _, v := range []float64{math.Pi / 3, -2 * math.Pi / 3, 0.125, 7} {
		got, ok := ParseAngle(FormatAngle(v))
		if !ok || math.Abs(got-v) > 1e-10 {
			t.Errorf("round trip of %g gave %g (ok=%v)", v, got, ok)
		}
	}
}
