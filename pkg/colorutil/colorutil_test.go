package colorutil

import (
	"image/color"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestRGBToHSV(t *testing.T) {
	tests := []struct {
		r, g, b float64
		h, s, v float64
	}{
		{255, 0, 0, 0, 255, 255},
		{0, 255, 0, 60, 255, 255},
		{0, 0, 255, 120, 255, 255},
		{128, 128, 128, 0, 0, 128},
		{255, 0, 255, 150, 255, 255},
	}
	for _, tt := range tests {
		h, s, v := RGBToHSV(tt.r, tt.g, tt.b)
		if !scalar.EqualWithinAbs(h, tt.h, 1e-9) || !scalar.EqualWithinAbs(s, tt.s, 1e-9) || !scalar.EqualWithinAbs(v, tt.v, 1e-9) {
			t.Errorf("RGBToHSV(%v,%v,%v) = %v,%v,%v; want %v,%v,%v", tt.r, tt.g, tt.b, h, s, v, tt.h, tt.s, tt.v)
		}
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(color.RGBA{R: 255, A: 255}); got != "#ff0000  H 0 S 255 V 255" {
		t.Errorf("Describe = %q", got)
	}
	half := color.RGBA{R: 100, G: 50, B: 0, A: 128}
	if got := Describe(half); got != "#c76300  H 15 S 255 V 199 A 128" {
		t.Errorf("Describe(premultiplied) = %q", got)
	}
}
