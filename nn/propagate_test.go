package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propagate(t *testing.T, inputDim int, layers []LayerSpec, sel Selection) FieldMasks {
	t.Helper()
	masks, ok := Propagate(layers, inputDim, Resolve(inputDim, layers), sel)
	require.True(t, ok, "expected masks for %s", sel)
	return masks
}

func TestPropagateReceptiveSingleLayer(t *testing.T) {
	layers := []LayerSpec{conv(3, 1, 1, PaddingValid)}
	masks := propagate(t, 32, layers, Select(1, 0, FieldReceptive))

	assert.Equal(t, []int{0, 1, 2}, masks.Indices(0))
	assert.Equal(t, []int{0}, masks.Indices(1))
	assert.Len(t, masks[0], 32)
	assert.Len(t, masks[1], 30)
}

func TestPropagateProjectiveSingleLayer(t *testing.T) {
	layers := []LayerSpec{conv(3, 1, 1, PaddingValid)}
	masks := propagate(t, 32, layers, Select(0, 1, FieldProjective))

	assert.Equal(t, []int{1}, masks.Indices(0))
	assert.Equal(t, []int{0, 1}, masks.Indices(1))
}

// Receptive and projective fields must agree on every single connection
func TestPropagateDuality(t *testing.T) {
	layers := []LayerSpec{conv(3, 2, 2, PaddingSame)}
	const in = 17
	dims := Resolve(in, layers)
	out := dims[0].OutputDim

	for n := 0; n < out; n++ {
		rec := propagate(t, in, layers, Select(1, n, FieldReceptive))
		for _, i := range rec.Indices(0) {
			proj := propagate(t, in, layers, Select(0, i, FieldProjective))
			assert.True(t, proj[1][n], "input %d reaches output %d receptively but not projectively", i, n)
		}
	}
}

func TestPropagateMultiLayer(t *testing.T) {
	layers := []LayerSpec{
		conv(3, 1, 1, PaddingValid),
		conv(3, 1, 1, PaddingValid),
	}
	masks := propagate(t, 32, layers, Select(2, 0, FieldReceptive))

	assert.Equal(t, []int{0, 1, 2}, masks.Indices(1))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, masks.Indices(0))

	// Projective from the middle leaves the input stage unmarked
	masks = propagate(t, 32, layers, Select(1, 5, FieldProjective))
	assert.Equal(t, 0, masks.Count(0))
	assert.Len(t, masks[0], 32)
	assert.Equal(t, []int{3, 4, 5}, masks.Indices(2))
}

func TestPropagateDilationStride(t *testing.T) {
	// effK 5, taps at 0,2,4; unit n starts at 2n
	layers := []LayerSpec{conv(3, 2, 2, PaddingValid)}
	masks := propagate(t, 20, layers, Select(1, 3, FieldReceptive))
	assert.Equal(t, []int{6, 8, 10}, masks.Indices(0))
}

func TestPropagateSamePaddingEdge(t *testing.T) {
	// PadLeft 1: unit 0 reads -1 (padding), 0 and 1
	layers := []LayerSpec{conv(3, 1, 1, PaddingSame)}
	masks := propagate(t, 8, layers, Select(1, 0, FieldReceptive))
	assert.Equal(t, []int{0, 1}, masks.Indices(0))

	masks = propagate(t, 8, layers, Select(1, 7, FieldReceptive))
	assert.Equal(t, []int{6, 7}, masks.Indices(0))
}

func TestPropagateCausal(t *testing.T) {
	plain := conv(3, 1, 1, PaddingValid)
	causal := plain
	causal.Causal = true

	full := propagate(t, 32, []LayerSpec{plain}, Select(1, 4, FieldReceptive))
	cut := propagate(t, 32, []LayerSpec{causal}, Select(1, 4, FieldReceptive))

	assert.Equal(t, []int{4, 5, 6}, full.Indices(0))
	assert.Equal(t, []int{4, 5}, cut.Indices(0))
	assert.Less(t, cut.Count(0), full.Count(0))

	assert.Equal(t, []int{0, 1}, newConv1DGeometry(causal).taps())
	assert.Equal(t, []int{0, 1, 2}, newConv1DGeometry(plain).taps())
}

func TestPropagateIdempotent(t *testing.T) {
	layers := []LayerSpec{
		conv(4, 2, 1, PaddingSame),
		conv(3, 1, 2, PaddingValid),
		conv(5, 1, 1, PaddingSame),
	}
	dims := Resolve(50, layers)
	sel := Select(3, 2, FieldReceptive)

	a, okA := Propagate(layers, 50, dims, sel)
	b, okB := Propagate(layers, 50, dims, sel)
	require.True(t, okA)
	require.True(t, okB)
	assert.True(t, a.Equal(b))
}

func TestPropagateNoMasks(t *testing.T) {
	layers := []LayerSpec{conv(3, 1, 1, PaddingValid)}
	dims := Resolve(32, layers)

	tests := []struct {
		name string
		sel  Selection
	}{
		{"none", NoSelection},
		{"stage too high", Select(2, 0, FieldReceptive)},
		{"negative stage", Select(-1, 0, FieldProjective)},
		{"unit too high", Select(1, 30, FieldReceptive)},
		{"negative unit", Select(0, -1, FieldProjective)},
		{"receptive on input", Select(0, 3, FieldReceptive)},
		{"unknown mode", Select(1, 0, FieldMode(7))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			masks, ok := Propagate(layers, 32, dims, tt.sel)
			assert.False(t, ok)
			assert.Nil(t, masks)
		})
	}
}

func TestPropagateEmptyStage(t *testing.T) {
	layers := []LayerSpec{
		conv(3, 1, 1, PaddingValid),
		conv(9, 1, 1, PaddingValid),
	}
	masks := propagate(t, 6, layers, Select(0, 2, FieldProjective))
	assert.Len(t, masks[2], 0)
	assert.Equal(t, []int{0, 1, 2}, masks.Indices(1))
}

func TestPropagateStaleDims(t *testing.T) {
	layers := []LayerSpec{conv(3, 1, 1, PaddingValid)}
	masks, ok := Propagate(layers, 32, nil, Select(1, 0, FieldReceptive))
	require.True(t, ok)
	assert.Equal(t, 3, masks.Count(0))
}
