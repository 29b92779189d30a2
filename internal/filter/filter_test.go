package filter_test

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"

	"cv-npr/internal/filter"
	"cv-npr/internal/filter/filtertest"
	"cv-npr/internal/raster"
)

func gradient(w, h int) *raster.Buffer {
	b := raster.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.RGBA().SetRGBA(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 77, A: 255})
		}
	}
	return b
}

func TestBuiltinOrder(t *testing.T) {
	want := []string{
		"detailEnhance", "edgePreservingFilter", "pencilSketch", "stylization",
		"oilPainting", "anisotropicDiffusion", "applyColorMap", "mosaic",
	}
	if diff := cmp.Diff(want, filter.Builtin().IDs()); diff != "" {
		t.Errorf("registry order (-want +got):\n%s", diff)
	}
	if _, err := filter.Builtin().Get(filter.DefaultID); err != nil {
		t.Errorf("default filter missing: %v", err)
	}
	if _, err := filter.Builtin().Get("sepia"); !errors.Is(err, filter.ErrUnknownFilter) {
		t.Errorf("Get(sepia) err = %v", err)
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	f, _ := filter.Builtin().Get(filter.IDMosaic)
	if _, err := filter.NewRegistry(f, f); err == nil {
		t.Errorf("duplicate filter accepted")
	}
}

func TestDefaultsAreInRangeAndNotNeutral(t *testing.T) {
	for _, f := range filter.Builtin().All() {
		v := filter.Defaults(f)
		for _, p := range f.Parameters() {
			if p.Default < p.Min || p.Default > p.Max {
				t.Errorf("%s.%s default %v outside [%v, %v]", f.ID(), p.Name, p.Default, p.Min, p.Max)
			}
			if got := p.Constrain(p.Default); got != p.Default {
				t.Errorf("%s.%s default %v is off the step grid (%v)", f.ID(), p.Name, p.Default, got)
			}
		}
		if f.Neutral(v) {
			t.Errorf("%s is neutral at its defaults", f.ID())
		}
	}
}

// neutralSettings sets each filter's strength control to its no-op value.
var neutralSettings = map[string]filter.Values{
	filter.IDDetailEnhance:        {"sigmaS": 0},
	filter.IDEdgePreserving:       {"sigmaS": 0},
	filter.IDPencilSketch:         {"sigmaS": 0},
	filter.IDStylization:          {"sigmaS": 0},
	filter.IDOilPainting:          {"dynRatio": 0},
	filter.IDAnisotropicDiffusion: {"iterations": 0},
	filter.IDApplyColorMap:        {"colormap": 0},
	filter.IDMosaic:               {"dsize": 1},
}

func TestRunNeutralCopiesOriginal(t *testing.T) {
	src := gradient(6, 5)
	for _, f := range filter.Builtin().All() {
		v := filter.Defaults(f)
		for k, x := range neutralSettings[f.ID()] {
			v[k] = x
		}
		eng := &filtertest.Engine{}
		dst := raster.NewBuffer(6, 5)
		if err := filter.Run(f, eng, src, dst, v); err != nil {
			t.Fatalf("%s: %v", f.ID(), err)
		}
		if !dst.Equal(src) {
			t.Errorf("%s: neutral run changed pixels", f.ID())
		}
		if calls := eng.Calls(); len(calls) != 0 {
			t.Errorf("%s: neutral run called the engine: %v", f.ID(), calls)
		}
	}
}

func TestRunPassesParameters(t *testing.T) {
	tests := []struct {
		id   string
		set  filter.Values
		want filtertest.Call
	}{
		{filter.IDDetailEnhance, nil, filtertest.Call{Op: "DetailEnhance", Args: []float64{10, float64(float32(0.15))}}},
		{filter.IDEdgePreserving, nil, filtertest.Call{Op: "EdgePreservingFilter", Args: []float64{60, float64(float32(0.4))}}},
		{filter.IDPencilSketch, nil, filtertest.Call{Op: "PencilSketch", Args: []float64{60, float64(float32(0.07)), float64(float32(0.02))}}},
		{filter.IDStylization, nil, filtertest.Call{Op: "Stylization", Args: []float64{60, float64(float32(0.45))}}},
		{filter.IDOilPainting, filter.Values{"size": 4, "dynRatio": 2}, filtertest.Call{Op: "OilPainting", Args: []float64{9, 2}}},
		{filter.IDAnisotropicDiffusion, nil, filtertest.Call{Op: "AnisotropicDiffusion", Args: []float64{float64(float32(0.1)), 10, 5}}},
		{filter.IDApplyColorMap, filter.Values{"colormap": 11}, filtertest.Call{Op: "ApplyColorMap", Args: []float64{11}}},
		{filter.IDMosaic, filter.Values{"dsize": 4}, filtertest.Call{Op: "Mosaic", Args: []float64{4}}},
	}
	reg := filter.Builtin()
	src := gradient(4, 4)
	for _, tc := range tests {
		f, err := reg.Get(tc.id)
		if err != nil {
			t.Fatal(err)
		}
		v := filter.Defaults(f)
		for k, x := range tc.set {
			v[k] = x
		}
		eng := &filtertest.Engine{}
		dst := raster.NewBuffer(4, 4)
		if err := filter.Run(f, eng, src, dst, v); err != nil {
			t.Fatalf("%s: %v", tc.id, err)
		}
		if diff := cmp.Diff([]filtertest.Call{tc.want}, eng.Calls()); diff != "" {
			t.Errorf("%s engine calls (-want +got):\n%s", tc.id, diff)
		}
		if dst.Equal(src) {
			t.Errorf("%s: engine output not written", tc.id)
		}
	}
}

func TestRunWrapsEngineError(t *testing.T) {
	boom := errors.New("boom")
	f, _ := filter.Builtin().Get(filter.IDStylization)
	err := filter.Run(f, &filtertest.Engine{Err: boom}, gradient(2, 2), raster.NewBuffer(2, 2), filter.Defaults(f))
	if !errors.Is(err, boom) {
		t.Errorf("Run err = %v; want wrapped boom", err)
	}
}

func TestConstrain(t *testing.T) {
	p := filter.ParameterSpec{Name: "sigmaR", Min: 0, Max: 1, Step: 0.01, Default: 0.15}
	tests := []struct{ in, want float64 }{
		{0.15, 0.15},
		{0.154, 0.15},
		{0.156, 0.16},
		{-3, 0},
		{7, 1},
	}
	for _, tc := range tests {
		if got := p.Constrain(tc.in); got != tc.want {
			t.Errorf("Constrain(%v) = %v; want %v", tc.in, got, tc.want)
		}
	}

	block := filter.ParameterSpec{Name: "dsize", Min: 1, Max: 64, Step: 1, Default: 8}
	if got := block.Constrain(3.6); got != 4 {
		t.Errorf("Constrain(3.6) = %v; want 4", got)
	}
}

func TestLookup(t *testing.T) {
	f, _ := filter.Builtin().Get(filter.IDPencilSketch)
	p, err := filter.Lookup(f, "shade")
	if err != nil || p.Default != 0.02 {
		t.Errorf("Lookup(shade) = %+v, %v", p, err)
	}
	if _, err := filter.Lookup(f, "dsize"); !errors.Is(err, filter.ErrUnknownParameter) {
		t.Errorf("Lookup(dsize) err = %v", err)
	}
}
