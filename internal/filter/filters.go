package filter

import (
	"math"

	"cv-npr/internal/raster"
)

// sigmaFilter covers the edge-aware smoothing family that takes a spatial sigma and
// a range sigma. sigmaS = 0 is neutral.
type sigmaFilter struct {
	id, label      string
	sigmaS, sigmaR float64
	op             func(Engine, *raster.Buffer, *raster.Buffer, float32, float32) error
}

func (f sigmaFilter) ID() string    { return f.id }
func (f sigmaFilter) Label() string { return f.label }

func (f sigmaFilter) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "sigmaS", Label: "Sigma S", Min: 0, Max: 200, Step: 1, Default: f.sigmaS},
		{Name: "sigmaR", Label: "Sigma R", Min: 0, Max: 1, Step: 0.01, Default: f.sigmaR},
	}
}

func (f sigmaFilter) Neutral(v Values) bool {
	return v["sigmaS"] == 0
}

func (f sigmaFilter) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	return f.op(e, src, dst, float32(v["sigmaS"]), float32(v["sigmaR"]))
}

type pencilSketch struct{}

func (pencilSketch) ID() string    { return IDPencilSketch }
func (pencilSketch) Label() string { return "Pencil Sketch" }

func (pencilSketch) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "sigmaS", Label: "Sigma S", Min: 0, Max: 200, Step: 1, Default: 60},
		{Name: "sigmaR", Label: "Sigma R", Min: 0, Max: 1, Step: 0.01, Default: 0.07},
		{Name: "shade", Label: "Shade", Min: 0, Max: 0.1, Step: 0.001, Default: 0.02},
	}
}

func (pencilSketch) Neutral(v Values) bool {
	return v["sigmaS"] == 0
}

func (pencilSketch) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	return e.PencilSketch(src, dst, float32(v["sigmaS"]), float32(v["sigmaR"]), float32(v["shade"]))
}

type oilPainting struct{}

func (oilPainting) ID() string    { return IDOilPainting }
func (oilPainting) Label() string { return "Oil Painting" }

func (oilPainting) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "size", Label: "Size", Min: 0, Max: 10, Step: 1, Default: 3},
		{Name: "dynRatio", Label: "Dynamic Ratio", Min: 0, Max: 10, Step: 1, Default: 1},
	}
}

func (oilPainting) Neutral(v Values) bool {
	return v["dynRatio"] == 0
}

// Apply passes the odd window width 2*size+1.
func (oilPainting) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	size := int(v["size"])*2 + 1
	return e.OilPainting(src, dst, size, int(v["dynRatio"]))
}

type anisotropicDiffusion struct{}

func (anisotropicDiffusion) ID() string    { return IDAnisotropicDiffusion }
func (anisotropicDiffusion) Label() string { return "Anisotropic Diffusion" }

func (anisotropicDiffusion) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "alpha", Label: "Alpha", Min: 0, Max: 0.25, Step: 0.01, Default: 0.1},
		{Name: "K", Label: "K", Min: 0, Max: 100, Step: 1, Default: 10},
		{Name: "iterations", Label: "Iterations", Min: 0, Max: 50, Step: 1, Default: 5},
	}
}

// Neutral: any of the three at zero leaves the image as is.
func (anisotropicDiffusion) Neutral(v Values) bool {
	return v["alpha"] == 0 || v["K"] == 0 || v["iterations"] == 0
}

func (anisotropicDiffusion) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	return e.AnisotropicDiffusion(src, dst, float32(v["alpha"]), float32(v["K"]), int(v["iterations"]))
}

// colorMap maps intensities through one of OpenCV's colormaps. Index 0 (autumn) is
// reserved as the off position.
type colorMap struct{}

func (colorMap) ID() string    { return IDApplyColorMap }
func (colorMap) Label() string { return "Color Map" }

func (colorMap) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "colormap", Label: "Colormap", Min: 0, Max: 21, Step: 1, Default: 2},
	}
}

func (colorMap) Neutral(v Values) bool {
	return v["colormap"] == 0
}

func (colorMap) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	return e.ApplyColorMap(src, dst, int(v["colormap"]))
}

type mosaic struct{}

func (mosaic) ID() string    { return IDMosaic }
func (mosaic) Label() string { return "Mosaic" }

func (mosaic) Parameters() []ParameterSpec {
	return []ParameterSpec{
		{Name: "dsize", Label: "Block Size", Min: 1, Max: 64, Step: 1, Default: 8},
	}
}

// Neutral: one-pixel blocks are the identity.
func (mosaic) Neutral(v Values) bool {
	return v["dsize"] <= 1
}

func (mosaic) Apply(e Engine, src, dst *raster.Buffer, v Values) error {
	return e.Mosaic(src, dst, int(math.Round(v["dsize"])))
}
