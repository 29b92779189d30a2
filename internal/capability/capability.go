// Package capability probes the host once at startup and picks which build of the
// vision runtime to load.
package capability

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Variant is one of the four prebuilt vision runtime configurations.
type Variant int

const (
	VariantWasm Variant = iota
	VariantSIMD
	VariantThreads
	VariantThreadedSIMD
)

func (v Variant) String() string {
	switch v {
	case VariantSIMD:
		return "simd"
	case VariantThreads:
		return "threads"
	case VariantThreadedSIMD:
		return "threaded-simd"
	default:
		return "wasm"
	}
}

// Threaded reports whether the variant may use more than one worker.
func (v Variant) Threaded() bool {
	return v == VariantThreads || v == VariantThreadedSIMD
}

// Workers returns how many stripes the native filters split an image into.
func (v Variant) Workers() int {
	if !v.Threaded() {
		return 1
	}
	return max(runtime.GOMAXPROCS(0), 1)
}

// AssetPath returns the variant's runtime asset, relative to the asset base URL.
func (v Variant) AssetPath() string {
	return "opencv/" + v.String() + "/opencv_js.wasm"
}

// Prober reports host features. It is an interface so tests can pin a variant.
type Prober interface {
	SIMD() bool
	Threads() bool
	// Isolated reports whether threads may actually run in parallel.
	Isolated() bool
}

// Resolve picks the variant for the probed host. Threads count only when the
// process is isolated enough to use them.
func Resolve(p Prober) Variant {
	simd := p.SIMD()
	threads := p.Isolated() && p.Threads()
	switch {
	case simd && threads:
		return VariantThreadedSIMD
	case simd:
		return VariantSIMD
	case threads:
		return VariantThreads
	default:
		return VariantWasm
	}
}

// HostProber inspects the running machine.
type HostProber struct{}

var _ Prober = HostProber{}

func (HostProber) SIMD() bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return cpu.X86.HasAVX2 || cpu.X86.HasSSE41
	case "arm64":
		return cpu.ARM64.HasASIMD
	default:
		return false
	}
}

func (HostProber) Threads() bool {
	return runtime.NumCPU() > 1
}

func (HostProber) Isolated() bool {
	return runtime.GOMAXPROCS(0) > 1
}

// Static is a fixed answer, used by tests and the -variant flag.
type Static struct {
	HasSIMD, HasThreads, IsIsolated bool
}

func (s Static) SIMD() bool     { return s.HasSIMD }
func (s Static) Threads() bool  { return s.HasThreads }
func (s Static) Isolated() bool { return s.IsIsolated }

// Parse maps a variant name back to its value.
func Parse(name string) (Variant, bool) {
	for v := VariantWasm; v <= VariantThreadedSIMD; v++ {
		if v.String() == name {
			return v, true
		}
	}
	return VariantWasm, false
}
