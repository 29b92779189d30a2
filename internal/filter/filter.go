// Package filter defines the registered non-photorealistic filters: their parameter
// controls, their neutral settings and how each one drives the vision engine.
package filter

import (
	"errors"
	"fmt"
	"math"

	"cv-npr/internal/raster"
)

var (
	ErrUnknownFilter    = errors.New("unknown filter")
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Engine is the synchronous call interface of the external vision library. Every
// operation reads src and writes dst; both have the same size.
type Engine interface {
	DetailEnhance(src, dst *raster.Buffer, sigmaS, sigmaR float32) error
	EdgePreservingFilter(src, dst *raster.Buffer, sigmaS, sigmaR float32) error
	PencilSketch(src, dst *raster.Buffer, sigmaS, sigmaR, shade float32) error
	Stylization(src, dst *raster.Buffer, sigmaS, sigmaR float32) error
	OilPainting(src, dst *raster.Buffer, size, dynRatio int) error
	AnisotropicDiffusion(src, dst *raster.Buffer, alpha, k float32, iterations int) error
	ApplyColorMap(src, dst *raster.Buffer, colormap int) error
	Mosaic(src, dst *raster.Buffer, blockSize int) error
}

// ParameterSpec declares one numeric control.
type ParameterSpec struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Constrain clamps v into the control's range and snaps it to the step grid.
func (p ParameterSpec) Constrain(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	v = math.Max(p.Min, math.Min(p.Max, v))
	if p.Step > 0 {
		v = p.Min + math.Round((v-p.Min)/p.Step)*p.Step
		// Round to the step's decimal places so 0.15 stays 0.15.
		scale := stepScale(p.Step)
		v = math.Round(v*scale) / scale
		v = math.Max(p.Min, math.Min(p.Max, v))
	}
	return v
}

func stepScale(step float64) float64 {
	scale := 1.0
	for i := 0; i < 6; i++ {
		if math.Abs(step*scale-math.Round(step*scale)) < 1e-9 {
			break
		}
		scale *= 10
	}
	return scale
}

// Values holds the current setting of each control by name.
type Values map[string]float64

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, x := range v {
		out[k] = x
	}
	return out
}

// Filter is one registered filter.
type Filter interface {
	ID() string
	Label() string
	Parameters() []ParameterSpec
	// Neutral reports whether the strength parameters make the filter a no-op.
	Neutral(v Values) bool
	// Apply runs the engine operation. It is only called when Neutral is false.
	Apply(e Engine, src, dst *raster.Buffer, v Values) error
}

// Defaults returns a Values map holding every declared default of f.
func Defaults(f Filter) Values {
	params := f.Parameters()
	v := make(Values, len(params))
	for _, p := range params {
		v[p.Name] = p.Default
	}
	return v
}

// Lookup returns the named parameter spec of f.
func Lookup(f Filter, name string) (ParameterSpec, error) {
	for _, p := range f.Parameters() {
		if p.Name == name {
			return p, nil
		}
	}
	return ParameterSpec{}, fmt.Errorf("%w: %s.%s", ErrUnknownParameter, f.ID(), name)
}

// Run applies f from src into dst. A neutral setting copies src unchanged without
// touching the engine. src is never written.
func Run(f Filter, e Engine, src, dst *raster.Buffer, v Values) error {
	if f.Neutral(v) {
		dst.CopyFrom(src)
		return nil
	}
	if err := f.Apply(e, src, dst, v); err != nil {
		return fmt.Errorf("%s: %w", f.ID(), err)
	}
	return nil
}
