package nn

// Resolve computes every layer's output length and left padding in a single
// forward pass from the input. Each layer's input length is the previous
// layer's output length (inputDim for layers[0]).
func Resolve(inputDim int, layers []LayerSpec) []LayerDims {
	dims := make([]LayerDims, len(layers))
	prevDim := max(inputDim, 0)
	for l, spec := range layers {
		dims[l] = mustGeometry(spec).Resolve(prevDim)
		prevDim = dims[l].OutputDim
	}
	return dims
}

// stageDims returns the unit count of every stage: stage 0 is the input,
// stage k is the output of layers[k-1].
func stageDims(inputDim int, dims []LayerDims) []int {
	out := make([]int, len(dims)+1)
	out[0] = max(inputDim, 0)
	for l, d := range dims {
		out[l+1] = d.OutputDim
	}
	return out
}
