package capability

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		probe Static
		want  Variant
	}{
		{Static{}, VariantWasm},
		{Static{HasSIMD: true}, VariantSIMD},
		{Static{HasThreads: true}, VariantWasm},
		{Static{HasThreads: true, IsIsolated: true}, VariantThreads},
		{Static{HasSIMD: true, HasThreads: true}, VariantSIMD},
		{Static{HasSIMD: true, HasThreads: true, IsIsolated: true}, VariantThreadedSIMD},
	}
	for _, tc := range tests {
		if got := Resolve(tc.probe); got != tc.want {
			t.Errorf("Resolve(%+v) = %v; want %v", tc.probe, got, tc.want)
		}
	}
}

func TestVariantNames(t *testing.T) {
	for v := VariantWasm; v <= VariantThreadedSIMD; v++ {
		got, ok := Parse(v.String())
		if !ok || got != v {
			t.Errorf("Parse(%q) = %v, %v", v.String(), got, ok)
		}
	}
	if _, ok := Parse("gpu"); ok {
		t.Errorf("Parse accepted an unknown variant")
	}
	if got := VariantThreadedSIMD.AssetPath(); got != "opencv/threaded-simd/opencv_js.wasm" {
		t.Errorf("AssetPath = %q", got)
	}
}

func TestWorkers(t *testing.T) {
	if VariantSIMD.Workers() != 1 || VariantWasm.Workers() != 1 {
		t.Errorf("single-threaded variants must use one worker")
	}
	if VariantThreads.Workers() < 1 {
		t.Errorf("threaded variant reported %d workers", VariantThreads.Workers())
	}
}
