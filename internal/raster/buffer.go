package raster

import (
	"bytes"
	"image"
	"image/png"

	"golang.org/x/image/draw"
)

// Buffer is an RGBA8 raster with its origin at (0, 0).
type Buffer struct {
	img *image.RGBA
}

// NewBuffer allocates a zeroed buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// Width returns the buffer width in pixels.
func (b *Buffer) Width() int {
	return b.img.Rect.Dx()
}

// Height returns the buffer height in pixels.
func (b *Buffer) Height() int {
	return b.img.Rect.Dy()
}

// Bounds returns the buffer rectangle.
func (b *Buffer) Bounds() image.Rectangle {
	return b.img.Rect
}

// Empty reports whether the buffer has no pixels.
func (b *Buffer) Empty() bool {
	return b.img.Rect.Empty()
}

// Pix exposes the backing pixels in premultiplied RGBA order, row stride Width()*4.
func (b *Buffer) Pix() []byte {
	return b.img.Pix
}

// RGBA exposes the backing image. Callers must not retain it across a Resize.
func (b *Buffer) RGBA() *image.RGBA {
	return b.img
}

// Resize reallocates the buffer. Content is discarded, as with a canvas.
func (b *Buffer) Resize(width, height int) {
	b.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// DrawSource paints img at the origin, replacing existing content.
func (b *Buffer) DrawSource(img image.Image) {
	draw.Draw(b.img, b.img.Rect, img, img.Bounds().Min, draw.Src)
}

// CopyFrom copies src into b. Both buffers must have the same size.
func (b *Buffer) CopyFrom(src *Buffer) {
	copy(b.img.Pix, src.img.Pix)
}

// SetPix copies tightly packed RGBA bytes into the buffer.
func (b *Buffer) SetPix(pix []byte) {
	copy(b.img.Pix, pix)
}

// NRGBAPix returns a copy of the pixels with colour unpremultiplied, the straight
// RGBA layout a canvas hands out and OpenCV expects.
func (b *Buffer) NRGBAPix() []byte {
	out := image.NewNRGBA(b.img.Rect)
	draw.Draw(out, out.Rect, b.img, b.img.Rect.Min, draw.Src)
	return out.Pix
}

// SetNRGBAPix stores tightly packed straight RGBA bytes, premultiplying them.
func (b *Buffer) SetNRGBAPix(pix []byte) {
	src := &image.NRGBA{Pix: pix, Stride: b.Width() * 4, Rect: b.img.Rect}
	draw.Draw(b.img, b.img.Rect, src, b.img.Rect.Min, draw.Src)
}

// Clone returns an independent copy, suitable for handing to a renderer.
func (b *Buffer) Clone() *image.RGBA {
	out := image.NewRGBA(b.img.Rect)
	copy(out.Pix, b.img.Pix)
	return out
}

// Equal reports whether two buffers have the same size and identical pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	return b.img.Rect.Eq(other.img.Rect) && bytes.Equal(b.img.Pix, other.img.Pix)
}

// EncodePNG serializes the buffer as PNG.
func (b *Buffer) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, b.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
