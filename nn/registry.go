package nn

import (
	"fmt"
	"sort"
)

// Geometry is the per-kind length and connectivity rule of a layer.
// Adding a layer kind means registering a new Geometry, nothing else.
type Geometry interface {
	// Resolve computes the output length and left padding for an input length
	Resolve(inDim int) LayerDims

	// Connections calls fn for every input position in [0, inDim) that output
	// unit n reads from. Positions may repeat across units, never within one.
	Connections(n int, dims LayerDims, inDim int, fn func(prev int))
}

// GeometryFactory builds the Geometry for a layer spec
type GeometryFactory func(spec LayerSpec) Geometry

// geometryRegistry is the global registry of layer geometries
var geometryRegistry = map[LayerType]GeometryFactory{
	LayerConv1D: func(spec LayerSpec) Geometry { return newConv1DGeometry(spec) },
}

// RegisterGeometry adds or replaces the geometry for a layer type. Specs of
// a registered type keep it through Normalized, network edits and fragments.
func RegisterGeometry(t LayerType, factory GeometryFactory) {
	geometryRegistry[t] = factory
}

// GeometryFor returns the geometry of a spec
func GeometryFor(spec LayerSpec) (Geometry, error) {
	factory, ok := geometryRegistry[spec.Type]
	if !ok {
		return nil, fmt.Errorf("no geometry registered for %s", spec.Type)
	}
	return factory(spec), nil
}

// mustGeometry falls back to the normalized (Conv1D) spec for unregistered
// types so that length and field computations stay total.
func mustGeometry(spec LayerSpec) Geometry {
	if g, err := GeometryFor(spec); err == nil {
		return g
	}
	g, err := GeometryFor(spec.Normalized())
	if err != nil {
		panic(err)
	}
	return g
}

// ListLayerTypes returns every registered layer type in ordinal order
func ListLayerTypes() []LayerType {
	types := make([]LayerType, 0, len(geometryRegistry))
	for t := range geometryRegistry {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
