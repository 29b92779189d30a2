package filter

import (
	"fmt"
)

// Filter identifiers, in registry order.
const (
	IDDetailEnhance        = "detailEnhance"
	IDEdgePreserving       = "edgePreservingFilter"
	IDPencilSketch         = "pencilSketch"
	IDStylization          = "stylization"
	IDOilPainting          = "oilPainting"
	IDAnisotropicDiffusion = "anisotropicDiffusion"
	IDApplyColorMap        = "applyColorMap"
	IDMosaic               = "mosaic"
)

// DefaultID is the filter active before the user picks one.
const DefaultID = IDDetailEnhance

// Registry is the fixed, ordered set of filters.
type Registry struct {
	filters []Filter
	byID    map[string]Filter
}

// NewRegistry registers filters in the given order. IDs must be unique.
func NewRegistry(filters ...Filter) (*Registry, error) {
	r := &Registry{byID: make(map[string]Filter, len(filters))}
	for _, f := range filters {
		if _, dup := r.byID[f.ID()]; dup {
			return nil, fmt.Errorf("duplicate filter %q", f.ID())
		}
		r.filters = append(r.filters, f)
		r.byID[f.ID()] = f
	}
	return r, nil
}

// Builtin returns the standard registry.
func Builtin() *Registry {
	r, err := NewRegistry(
		sigmaFilter{id: IDDetailEnhance, label: "Detail Enhance", sigmaS: 10, sigmaR: 0.15,
			op: Engine.DetailEnhance},
		sigmaFilter{id: IDEdgePreserving, label: "Edge Preserving", sigmaS: 60, sigmaR: 0.4,
			op: Engine.EdgePreservingFilter},
		pencilSketch{},
		sigmaFilter{id: IDStylization, label: "Stylization", sigmaS: 60, sigmaR: 0.45,
			op: Engine.Stylization},
		oilPainting{},
		anisotropicDiffusion{},
		colorMap{},
		mosaic{},
	)
	if err != nil {
		panic(err)
	}
	return r
}

// All returns the filters in registry order.
func (r *Registry) All() []Filter {
	return r.filters
}

// Get returns the filter with the given id.
func (r *Registry) Get(id string) (Filter, error) {
	f, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	return f, nil
}

// IDs returns the filter identifiers in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.filters))
	for i, f := range r.filters {
		ids[i] = f.ID()
	}
	return ids
}
