package canvas

import (
	"image"
	"testing"

	"cv-npr/pkg/geometry"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

func TestImageViewTapMapsThroughViewport(t *testing.T) {
	test.NewTempApp(t)

	iv := NewImageView()
	iv.SetImage(image.NewRGBA(image.Rect(0, 0, 200, 100)))
	iv.Resize(fyne.NewSize(400, 400))

	// 2:1 image in a square view: letterboxed vertically, top at 100.
	rect := iv.Viewport()
	if rect.Top != 100 || rect.Height != 200 || rect.Width != 400 {
		t.Fatalf("viewport = %+v", rect)
	}

	var got []geometry.PointInt
	iv.OnTap(func(p geometry.PointInt) { got = append(got, p) })

	test.TapAt(iv, fyne.NewPos(200, 200))
	test.TapAt(iv, fyne.NewPos(200, 50)) // in the letterbox band
	test.TapAt(iv, fyne.NewPos(0, 100))

	want := []geometry.PointInt{{X: 100, Y: 50}, {X: 0, Y: 0}}
	if len(got) != len(want) {
		t.Fatalf("taps = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tap %d = %v; want %v", i, got[i], want[i])
		}
	}
}

func TestImageViewEmpty(t *testing.T) {
	test.NewTempApp(t)

	iv := NewImageView()
	iv.Resize(fyne.NewSize(100, 100))
	tapped := false
	iv.OnTap(func(geometry.PointInt) { tapped = true })
	test.TapAt(iv, fyne.NewPos(50, 50))
	if tapped {
		t.Error("tap reported on an empty view")
	}
}
