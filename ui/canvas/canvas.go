// Package canvas provides the image view of the filter panel: a letterboxed preview
// with a busy indicator and pointer mapping into image coordinates.
package canvas

import (
	"image"
	"sync"

	"cv-npr/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// ImageView shows one image scaled to fit its container while keeping its aspect.
type ImageView struct {
	widget.BaseWidget

	mu        sync.Mutex
	img       *fynecanvas.Image
	busy      *widget.ProgressBarInfinite
	intrinsic geometry.Size

	// Callbacks
	onTap   func(p geometry.PointInt) // Tap at image coordinates
	onHover func(p geometry.PointInt, inside bool)
}

// NewImageView creates an empty view.
func NewImageView() *ImageView {
	iv := &ImageView{
		img:  fynecanvas.NewImageFromImage(nil),
		busy: widget.NewProgressBarInfinite(),
	}
	iv.img.FillMode = fynecanvas.ImageFillContain
	iv.img.ScaleMode = fynecanvas.ImageScaleFastest
	iv.busy.Hide()
	iv.ExtendBaseWidget(iv)
	return iv
}

// SetImage replaces the displayed image. The view keeps img; callers pass a copy.
func (iv *ImageView) SetImage(img *image.RGBA) {
	iv.mu.Lock()
	iv.img.Image = img
	if img != nil {
		b := img.Bounds()
		iv.intrinsic = geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
	} else {
		iv.intrinsic = geometry.Size{}
	}
	iv.mu.Unlock()
	iv.img.Refresh()
}

// SetBusy shows or hides the processing indicator.
func (iv *ImageView) SetBusy(busy bool) {
	if busy {
		iv.busy.Show()
		iv.busy.Start()
	} else {
		iv.busy.Stop()
		iv.busy.Hide()
	}
}

// OnTap sets the callback for taps that land on the image.
func (iv *ImageView) OnTap(fn func(p geometry.PointInt)) {
	iv.onTap = fn
}

// OnHover sets the callback for pointer movement over the view.
func (iv *ImageView) OnHover(fn func(p geometry.PointInt, inside bool)) {
	iv.onHover = fn
}

// Viewport returns where the image is drawn inside the view.
func (iv *ImageView) Viewport() geometry.ViewportRect {
	iv.mu.Lock()
	intrinsic := iv.intrinsic
	iv.mu.Unlock()
	size := iv.Size()
	return geometry.ComputeViewportRect(geometry.NewSize(float64(size.Width), float64(size.Height)), intrinsic)
}

// toImage maps a position in the view to image pixel coordinates.
func (iv *ImageView) toImage(pos fyne.Position) (geometry.PointInt, bool) {
	iv.mu.Lock()
	intrinsic := iv.intrinsic
	iv.mu.Unlock()
	size := iv.Size()
	if intrinsic.Empty() || size.Width <= 0 || size.Height <= 0 {
		return geometry.PointInt{}, false
	}
	rect := geometry.ComputeViewportRect(geometry.NewSize(float64(size.Width), float64(size.Height)), intrinsic)
	p, ok := rect.ToImage(geometry.NewPoint2D(float64(pos.X), float64(pos.Y)), intrinsic)
	return p.Floor(), ok
}

// Tapped handles left-click events.
func (iv *ImageView) Tapped(ev *fyne.PointEvent) {
	if iv.onTap == nil {
		return
	}
	if p, ok := iv.toImage(ev.Position); ok {
		iv.onTap(p)
	}
}

// MouseIn implements desktop.Hoverable.
func (iv *ImageView) MouseIn(ev *desktop.MouseEvent) {
	iv.MouseMoved(ev)
}

// MouseMoved implements desktop.Hoverable.
func (iv *ImageView) MouseMoved(ev *desktop.MouseEvent) {
	if iv.onHover == nil {
		return
	}
	p, ok := iv.toImage(ev.Position)
	iv.onHover(p, ok)
}

// MouseOut implements desktop.Hoverable.
func (iv *ImageView) MouseOut() {
	if iv.onHover != nil {
		iv.onHover(geometry.PointInt{}, false)
	}
}

func (iv *ImageView) CreateRenderer() fyne.WidgetRenderer {
	busy := container.NewVBox(iv.busy)
	return widget.NewSimpleRenderer(container.NewStack(iv.img, container.NewBorder(nil, busy, nil, nil)))
}

func (iv *ImageView) MinSize() fyne.Size {
	return fyne.NewSize(160, 120)
}
