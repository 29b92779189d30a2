package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func TestDetectMediaType(t *testing.T) {
	pngData := makePNG(t, 2, 2)
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"photo.png", nil, "image/png"},
		{"photo.JPG", nil, "image/jpeg"},
		{"drawing.svg", nil, MediaTypeSVG},
		{"notes.txt", nil, "text/plain"},
		{"", pngData, "image/png"},
		{"", []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`), MediaTypeSVG},
		{"", []byte("<svg width='1'></svg>"), MediaTypeSVG},
		{"", []byte("II*\x00\x08\x00\x00\x00"), "image/tiff"},
		{"", []byte("hello world"), "text/plain"},
		{"", nil, ""},
	}
	for _, tc := range tests {
		if got := DetectMediaType(tc.name, tc.data); got != tc.want {
			t.Errorf("DetectMediaType(%q, %q) = %q; want %q", tc.name, tc.data, got, tc.want)
		}
	}
}

func TestIsImage(t *testing.T) {
	for mt, want := range map[string]bool{
		"image/png":     true,
		MediaTypeSVG:    true,
		"text/plain":    false,
		"":              false,
		"application/x": false,
	} {
		if got := IsImage(mt); got != want {
			t.Errorf("IsImage(%q) = %v; want %v", mt, got, want)
		}
	}
}

func TestDecode(t *testing.T) {
	src, err := Decode(makePNG(t, 12, 7))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if src.Width() != 12 || src.Height() != 7 {
		t.Errorf("decoded size %dx%d; want 12x7", src.Width(), src.Height())
	}
	if src.Format != "png" || src.MediaType != "image/png" {
		t.Errorf("format %q media type %q", src.Format, src.MediaType)
	}

	if _, err := Decode([]byte("not an image")); err == nil {
		t.Errorf("Decode of garbage succeeded")
	}
}

func TestDecodeTooLarge(t *testing.T) {
	// A PNG header claiming a huge image is rejected before pixel decoding.
	img := image.NewGray(image.Rect(0, 0, MaxImageWidth+1, 1))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(buf.Bytes()); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Decode error = %v; want ErrTooLarge", err)
	}
}

func TestBufferDrawCopyEqual(t *testing.T) {
	src, err := Decode(makePNG(t, 8, 4))
	if err != nil {
		t.Fatal(err)
	}
	a := NewBuffer(1, 1)
	a.Resize(src.Width(), src.Height())
	a.DrawSource(src.Image)

	b := NewBuffer(8, 4)
	if a.Equal(b) {
		t.Fatalf("drawn buffer equals empty buffer")
	}
	b.CopyFrom(a)
	if !a.Equal(b) {
		t.Fatalf("copy differs from source")
	}
	if diff := cmp.Diff(a.Pix(), b.Clone().Pix); diff != "" {
		t.Errorf("Clone mismatch (-want +got):\n%s", diff)
	}
	if got := a.RGBA().RGBAAt(3, 2); got != (color.RGBA{R: 12, G: 8, B: 128, A: 255}) {
		t.Errorf("pixel (3,2) = %v", got)
	}
	if a.Equal(NewBuffer(4, 8)) {
		t.Errorf("buffers of different shape compare equal")
	}
}

func TestBufferEncodePNG(t *testing.T) {
	b := NewBuffer(3, 3)
	b.RGBA().Set(1, 1, color.RGBA{R: 255, A: 255})
	data, err := b.EncodePNG()
	if err != nil {
		t.Fatal(err)
	}
	src, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	back := NewBuffer(src.Width(), src.Height())
	back.DrawSource(src.Image)
	if !back.Equal(b) {
		t.Errorf("PNG round trip changed pixels")
	}
}

func TestBufferStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.SetNRGBA(2, 0, color.NRGBA{R: 90, G: 90, B: 90, A: 0})

	b := NewBuffer(3, 1)
	b.DrawSource(src)
	if got := b.Pix()[0]; got > 101 || got < 99 {
		t.Fatalf("stored red = %d; want premultiplied ~100", got)
	}

	straight := b.NRGBAPix()
	want := []byte{200, 100, 50, 128, 10, 20, 30, 255, 0, 0, 0, 0}
	for i := range want {
		if d := int(straight[i]) - int(want[i]); d < -1 || d > 1 {
			t.Errorf("straight byte %d = %d; want %d", i, straight[i], want[i])
		}
	}

	back := NewBuffer(3, 1)
	back.SetNRGBAPix(straight)
	for i, p := range b.Pix() {
		if d := int(back.Pix()[i]) - int(p); d < -1 || d > 1 {
			t.Errorf("round trip byte %d = %d; want %d", i, back.Pix()[i], p)
		}
	}
}
