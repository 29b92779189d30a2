// Package colorutil provides shared colour conversions.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0
	}

	switch {
	case diff == 0:
		h = 0
	case maxC == r:
		h = 60 * math.Mod((g-b)/diff, 6)
	case maxC == g:
		h = 60 * ((b-r)/diff + 2)
	default:
		h = 60 * ((r-g)/diff + 4)
	}
	if h < 0 {
		h += 360
	}
	return h / 2, s, v
}

// Describe formats a pixel for the status readout. Colour is reported unpremultiplied.
func Describe(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	h, s, v := RGBToHSV(float64(n.R), float64(n.G), float64(n.B))
	text := fmt.Sprintf("#%02x%02x%02x  H %.0f S %.0f V %.0f", n.R, n.G, n.B, h, s, v)
	if n.A != 0xff {
		text += fmt.Sprintf(" A %d", n.A)
	}
	return text
}
