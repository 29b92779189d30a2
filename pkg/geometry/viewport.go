package geometry

// ViewportRect describes where an image of some intrinsic size is drawn inside a
// container of a different rendered size when it is scaled to fit and centered.
// All values are in container coordinates.
type ViewportRect struct {
	Width  float64
	Height float64
	Top    float64
	Left   float64
	Right  float64
	Bottom float64
}

// ComputeViewportRect returns the letterboxed rectangle of an intrinsic-sized image
// inside a rendered container. The container must not have a zero dimension.
// The result is not cached: containers resize.
func ComputeViewportRect(rendered, intrinsic Size) ViewportRect {
	aspect := intrinsic.Aspect()
	var r ViewportRect
	if rendered.Aspect() > aspect {
		// Container is relatively wider: bars left and right.
		r.Width = rendered.Height * aspect
		r.Height = rendered.Height
		r.Top = 0
		r.Left = (rendered.Width - r.Width) / 2
		r.Right = r.Left + r.Width
		r.Bottom = rendered.Height
	} else {
		r.Width = rendered.Width
		r.Height = rendered.Width / aspect
		r.Top = (rendered.Height - r.Height) / 2
		r.Left = 0
		r.Right = rendered.Width
		r.Bottom = r.Top + r.Height
	}
	return r
}

// Contains reports whether a container-space point lies inside the rectangle.
func (r ViewportRect) Contains(p Point2D) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// ToImage maps a container-space point to image pixel space. ok is false when the
// point falls on the letterbox bars.
func (r ViewportRect) ToImage(p Point2D, intrinsic Size) (Point2D, bool) {
	if !r.Contains(p) || r.Width == 0 || r.Height == 0 {
		return Point2D{}, false
	}
	x := (p.X - r.Left) * intrinsic.Width / r.Width
	y := (p.Y - r.Top) * intrinsic.Height / r.Height
	// The far edge belongs to the last pixel.
	x = min(x, intrinsic.Width-1)
	y = min(y, intrinsic.Height-1)
	return Point2D{X: x, Y: y}, true
}

// FromImage maps an image pixel position back into container space.
func (r ViewportRect) FromImage(p Point2D, intrinsic Size) Point2D {
	return Point2D{
		X: r.Left + p.X*r.Width/intrinsic.Width,
		Y: r.Top + p.Y*r.Height/intrinsic.Height,
	}
}
