package nn

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyStage = errors.New("stage has no units")
	ErrStageRange = errors.New("stage range invalid")
)

// ConnectivityMatrix returns the out x in 0/1 matrix of one layer:
// entry (n, prev) is 1 when output unit n reads input unit prev.
func ConnectivityMatrix(spec LayerSpec, dims LayerDims, inDim int) (*mat.Dense, error) {
	if dims.OutputDim <= 0 || inDim <= 0 {
		return nil, ErrEmptyStage
	}
	m := mat.NewDense(dims.OutputDim, inDim, nil)
	g := mustGeometry(spec)
	for n := 0; n < dims.OutputDim; n++ {
		g.Connections(n, dims, inDim, func(prev int) {
			m.Set(n, prev, 1)
		})
	}
	return m, nil
}

// PathCounts returns, for every unit of stage `to` (rows) and stage `from`
// (columns), the number of distinct connection paths between them. Its
// non-zero pattern per row is that unit's receptive field in stage `from`.
func PathCounts(net *Network, from, to int) (*mat.Dense, error) {
	if from < 0 || to > net.Len() || from >= to {
		return nil, fmt.Errorf("%w: from %d to %d over %d layers", ErrStageRange, from, to, net.Len())
	}
	specs := net.Specs()
	dims := net.Dims()
	stages := net.StageDims()

	var acc *mat.Dense
	for l := from; l < to; l++ {
		c, err := ConnectivityMatrix(specs[l], dims[l], stages[l])
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", l, err)
		}
		if acc == nil {
			acc = c
			continue
		}
		var prod mat.Dense
		prod.Mul(c, acc)
		acc = &prod
	}
	return acc, nil
}

// PathWeights normalizes one row of a path-count matrix into a distribution
// over the source stage: how much of unit's input paths pass through each
// source unit. A row without paths yields all zeros.
func PathWeights(counts *mat.Dense, unit int) []float64 {
	rows, cols := counts.Dims()
	if unit < 0 || unit >= rows {
		return nil
	}
	w := mat.Row(nil, unit, counts)
	total := floats.Sum(w)
	if total == 0 {
		return make([]float64, cols)
	}
	floats.Scale(1/total, w)
	return w
}
