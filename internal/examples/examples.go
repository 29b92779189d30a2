// Package examples generates the bundled example images. Each example exists at
// full size under "example:<name>" and as a 64×64 thumbnail under
// "example:<name>-64". Both are PNG-encoded so they load through the normal
// decode path.
package examples

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

const (
	Scheme        = "example:"
	ThumbSuffix   = "-64"
	ThumbSize     = 64
	DefaultWidth  = 480
	DefaultHeight = 320
)

var ErrNotFound = errors.New("example not found")

type generator func(x, y, w, h int) color.RGBA

// Example is one bundled image.
type Example struct {
	Name  string
	Title string
	gen   generator
}

// Catalog renders examples on first use and keeps the encoded bytes.
type Catalog struct {
	examples []Example
	width    int
	height   int

	mu    sync.Mutex
	cache map[string][]byte
}

// NewCatalog returns the standard catalog at the default full size.
func NewCatalog() *Catalog {
	return NewCatalogSize(DefaultWidth, DefaultHeight)
}

// NewCatalogSize returns the standard catalog rendering full-size images at w×h.
func NewCatalogSize(w, h int) *Catalog {
	return &Catalog{
		examples: []Example{
			{Name: "sunset", Title: "Sunset", gen: sunset},
			{Name: "checker", Title: "Checkerboard", gen: checker},
			{Name: "rings", Title: "Rings", gen: rings},
			{Name: "stripes", Title: "Stripes", gen: stripes},
		},
		width:  w,
		height: h,
		cache:  make(map[string][]byte),
	}
}

// Examples lists the bundled examples in display order.
func (c *Catalog) Examples() []Example {
	return c.examples
}

// URL returns the full-size URL of name.
func URL(name string) string {
	return Scheme + name
}

// ThumbnailURL returns the thumbnail URL of name.
func ThumbnailURL(name string) string {
	return Scheme + name + ThumbSuffix
}

// FullURL maps a thumbnail URL to the full-size image it previews.
func FullURL(url string) string {
	return strings.TrimSuffix(url, ThumbSuffix)
}

// IsExampleURL reports whether url uses the example: scheme.
func IsExampleURL(url string) bool {
	return strings.HasPrefix(url, Scheme)
}

// Fetch returns the PNG bytes behind an example URL.
func (c *Catalog) Fetch(url string) ([]byte, error) {
	if !IsExampleURL(url) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	key := strings.TrimPrefix(url, Scheme)
	name, thumb := strings.CutSuffix(key, ThumbSuffix)

	var ex *Example
	for i := range c.examples {
		if c.examples[i].Name == name {
			ex = &c.examples[i]
			break
		}
	}
	if ex == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if data, ok := c.cache[key]; ok {
		return data, nil
	}

	var img image.Image = render(ex.gen, c.width, c.height)
	if thumb {
		img = thumbnail(img, ThumbSize)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode example %s: %w", key, err)
	}
	c.cache[key] = buf.Bytes()
	return buf.Bytes(), nil
}

func render(gen generator, w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gen(x, y, w, h))
		}
	}
	return img
}

// thumbnail scales img into a size×size square, cropping the long side.
func thumbnail(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	crop := image.Rect(0, 0, side, side).Add(image.Pt(
		b.Min.X+(b.Dx()-side)/2,
		b.Min.Y+(b.Dy()-side)/2,
	))
	out := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(out, out.Rect, img, crop, draw.Src, nil)
	return out
}

func sunset(x, y, w, h int) color.RGBA {
	t := float64(y) / float64(h)
	r := 255 * (1 - 0.3*t)
	g := 120 + 80*(1-t)
	b := 60 + 150*t
	// Sun disc.
	dx, dy := float64(x-w/2), float64(y-h*2/3)
	if math.Hypot(dx, dy) < float64(h)/6 {
		r, g, b = 255, 230, 120
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

func checker(x, y, w, h int) color.RGBA {
	const cell = 16
	if (x/cell+y/cell)%2 == 0 {
		return color.RGBA{R: 240, G: 240, B: 240, A: 255}
	}
	return color.RGBA{R: 40, G: 60, B: 90, A: 255}
}

func rings(x, y, w, h int) color.RGBA {
	d := math.Hypot(float64(x-w/2), float64(y-h/2))
	v := 0.5 + 0.5*math.Sin(d/6)
	return color.RGBA{R: uint8(60 + 180*v), G: uint8(30 + 100*v), B: uint8(200 - 120*v), A: 255}
}

func stripes(x, y, w, h int) color.RGBA {
	palette := [...]color.RGBA{
		{R: 230, G: 57, B: 70, A: 255},
		{R: 241, G: 250, B: 238, A: 255},
		{R: 168, G: 218, B: 220, A: 255},
		{R: 69, G: 123, B: 157, A: 255},
		{R: 29, G: 53, B: 87, A: 255},
	}
	return palette[((x+y)/24)%len(palette)]
}
