// Package filtertest provides a deterministic stand-in for the vision engine.
package filtertest

import (
	"fmt"
	"sync"

	"cv-npr/internal/raster"
)

// Call records one engine invocation.
type Call struct {
	Op   string
	Args []float64
}

// Engine implements filter.Engine without OpenCV. Every operation writes a
// recognisable function of src into dst: each channel is inverted and then offset
// by a per-operation amount, so different operations produce different pixels.
type Engine struct {
	mu    sync.Mutex
	calls []Call

	// Err, when set, is returned by every operation.
	Err error
	// Hook, when set, runs at the start of every operation.
	Hook func(op string)
}

// Calls returns a copy of the recorded invocations.
func (e *Engine) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// Reset forgets recorded invocations.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.calls = nil
	e.mu.Unlock()
}

func (e *Engine) record(op string, offset byte, src, dst *raster.Buffer, args ...float64) error {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Op: op, Args: args})
	e.mu.Unlock()
	if e.Hook != nil {
		e.Hook(op)
	}
	if e.Err != nil {
		return e.Err
	}
	if !src.Bounds().Eq(dst.Bounds()) {
		return fmt.Errorf("%s: size mismatch", op)
	}
	sp, dp := src.Pix(), dst.Pix()
	for i := 0; i < len(sp); i += 4 {
		dp[i] = 255 - sp[i] + offset
		dp[i+1] = 255 - sp[i+1] + offset
		dp[i+2] = 255 - sp[i+2] + offset
		dp[i+3] = 255
	}
	return nil
}

func (e *Engine) DetailEnhance(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return e.record("DetailEnhance", 1, src, dst, float64(sigmaS), float64(sigmaR))
}

func (e *Engine) EdgePreservingFilter(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return e.record("EdgePreservingFilter", 2, src, dst, float64(sigmaS), float64(sigmaR))
}

func (e *Engine) PencilSketch(src, dst *raster.Buffer, sigmaS, sigmaR, shade float32) error {
	return e.record("PencilSketch", 3, src, dst, float64(sigmaS), float64(sigmaR), float64(shade))
}

func (e *Engine) Stylization(src, dst *raster.Buffer, sigmaS, sigmaR float32) error {
	return e.record("Stylization", 4, src, dst, float64(sigmaS), float64(sigmaR))
}

func (e *Engine) OilPainting(src, dst *raster.Buffer, size, dynRatio int) error {
	return e.record("OilPainting", 5, src, dst, float64(size), float64(dynRatio))
}

func (e *Engine) AnisotropicDiffusion(src, dst *raster.Buffer, alpha, k float32, iterations int) error {
	return e.record("AnisotropicDiffusion", 6, src, dst, float64(alpha), float64(k), float64(iterations))
}

func (e *Engine) ApplyColorMap(src, dst *raster.Buffer, colormap int) error {
	return e.record("ApplyColorMap", 7, src, dst, float64(colormap))
}

func (e *Engine) Mosaic(src, dst *raster.Buffer, blockSize int) error {
	return e.record("Mosaic", 8, src, dst, float64(blockSize))
}
