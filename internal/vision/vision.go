// Package vision adapts the OpenCV binding to the filter.Engine interface.
//
// Every operation follows the same shape: wrap the straight-alpha RGBA source in a
// Mat, convert to BGR, run the OpenCV call, convert the result back to RGBA and copy
// it into the destination buffer. Mosaic skips the colour conversion and keeps alpha.
// All intermediate Mats are closed before returning.
package vision

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"

	"cv-npr/internal/capability"
	"cv-npr/internal/raster"
)

var ErrSizeMismatch = errors.New("source and destination sizes differ")

// CV is the loaded vision engine.
type CV struct {
	variant capability.Variant
	logger  *slog.Logger
}

// Load initializes the OpenCV binding for the given build variant. It fails if the
// native library cannot allocate a Mat.
func Load(ctx context.Context, variant capability.Variant, logger *slog.Logger) (*CV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	probe := gocv.NewMatWithSize(1, 1, gocv.MatTypeCV8UC3)
	defer probe.Close()
	if probe.Empty() {
		return nil, fmt.Errorf("opencv %s: failed to allocate", variant)
	}
	logger.Info("vision engine ready",
		"variant", variant.String(),
		"gocv", gocv.Version(),
		"opencv", gocv.OpenCVVersion(),
		"workers", variant.Workers())
	return &CV{variant: variant, logger: logger}, nil
}

// Variant reports the build variant the engine was loaded for.
func (cv *CV) Variant() capability.Variant {
	return cv.variant
}

// wrap copies src into a 4-channel RGBA Mat with straight alpha.
func wrap(src *raster.Buffer) (gocv.Mat, error) {
	m, err := gocv.NewMatFromBytes(src.Height(), src.Width(), gocv.MatTypeCV8UC4, src.NRGBAPix())
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to wrap buffer: %w", err)
	}
	return m, nil
}

// unwrap copies a 4-channel RGBA Mat into dst.
func unwrap(m gocv.Mat, dst *raster.Buffer) error {
	if m.Cols() != dst.Width() || m.Rows() != dst.Height() {
		return fmt.Errorf("%w: %dx%d into %dx%d", ErrSizeMismatch, m.Cols(), m.Rows(), dst.Width(), dst.Height())
	}
	dst.SetNRGBAPix(m.ToBytes())
	return nil
}

// toBGR wraps src in a Mat and converts it to 3-channel BGR.
func toBGR(src *raster.Buffer) (gocv.Mat, error) {
	rgba, err := wrap(src)
	if err != nil {
		return gocv.Mat{}, err
	}
	defer rgba.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(rgba, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// fromBGR converts a BGR Mat back to opaque RGBA and copies it into dst.
func fromBGR(bgr gocv.Mat, dst *raster.Buffer) error {
	rgba := gocv.NewMat()
	defer rgba.Close()
	gocv.CvtColor(bgr, &rgba, gocv.ColorBGRToRGBA)
	return unwrap(rgba, dst)
}

// run performs one BGR-to-BGR operation from src into dst.
func (cv *CV) run(name string, src, dst *raster.Buffer, op func(in gocv.Mat, out *gocv.Mat)) error {
	if src.Width() != dst.Width() || src.Height() != dst.Height() {
		return fmt.Errorf("%s: %w", name, ErrSizeMismatch)
	}
	in, err := toBGR(src)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer in.Close()

	out := gocv.NewMat()
	defer out.Close()
	op(in, &out)
	if out.Empty() {
		return fmt.Errorf("%s: empty result", name)
	}
	if err := fromBGR(out, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	cv.logger.Debug("applied", "op", name, "width", dst.Width(), "height", dst.Height())
	return nil
}

func (cv *CV) DetailEnhance(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return cv.run("detailEnhance", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		gocv.DetailEnhance(in, out, sigmaS, sigmaR)
	})
}

func (cv *CV) EdgePreservingFilter(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return cv.run("edgePreservingFilter", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		gocv.EdgePreservingFilter(in, out, gocv.RecursFilter, sigmaS, sigmaR)
	})
}

// PencilSketch keeps the colour sketch and discards the grey one.
func (cv *CV) PencilSketch(src, dst *raster.Buffer, sigmaS, sigmaR, shade float32) error {
	return cv.run("pencilSketch", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		gray := gocv.NewMat()
		defer gray.Close()
		gocv.PencilSketch(in, &gray, out, sigmaS, sigmaR, shade)
	})
}

func (cv *CV) Stylization(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return cv.run("stylization", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		gocv.Stylization(in, out, sigmaS, sigmaR)
	})
}

func (cv *CV) ApplyColorMap(src, dst *raster.Buffer, colormap int) error {
	return cv.run("applyColorMap", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		gocv.ApplyColorMap(in, out, gocv.ColormapTypes(colormap))
	})
}

// Mosaic averages blockSize×blockSize cells by shrinking with area interpolation and
// enlarging back with nearest-neighbour. All four channels are resized, so
// transparency survives.
func (cv *CV) Mosaic(src, dst *raster.Buffer, blockSize int) error {
	if blockSize < 1 {
		return fmt.Errorf("mosaic: block size %d", blockSize)
	}
	if src.Width() != dst.Width() || src.Height() != dst.Height() {
		return fmt.Errorf("mosaic: %w", ErrSizeMismatch)
	}
	w, h := src.Width(), src.Height()
	in, err := wrap(src)
	if err != nil {
		return fmt.Errorf("mosaic: %w", err)
	}
	defer in.Close()

	down := gocv.NewMat()
	defer down.Close()
	out := gocv.NewMat()
	defer out.Close()
	gocv.Resize(in, &down, image.Pt(max(1, w/blockSize), max(1, h/blockSize)), 0, 0, gocv.InterpolationArea)
	gocv.Resize(down, &out, image.Pt(w, h), 0, 0, gocv.InterpolationNearestNeighbor)
	if out.Empty() {
		return errors.New("mosaic: empty result")
	}
	if err := unwrap(out, dst); err != nil {
		return fmt.Errorf("mosaic: %w", err)
	}
	cv.logger.Debug("applied", "op", "mosaic", "width", w, "height", h)
	return nil
}

// OilPainting takes the neighbourhood window size (2·size+1 from the filter).
func (cv *CV) OilPainting(src, dst *raster.Buffer, size, dynRatio int) error {
	return cv.run("oilPainting", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		contrib.OilPainting(in, out, size, dynRatio)
	})
}

func (cv *CV) AnisotropicDiffusion(src, dst *raster.Buffer, alpha, k float32, iterations int) error {
	return cv.run("anisotropicDiffusion", src, dst, func(in gocv.Mat, out *gocv.Mat) {
		contrib.AnisotropicDiffusion(in, out, alpha, k, iterations)
	})
}
