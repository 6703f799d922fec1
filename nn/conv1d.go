package nn

// =============================================================================
// Conv1D geometry
// =============================================================================

// conv1DGeometry derives lengths and connectivity of a dilated, strided 1-D
// convolution. Kernel values are irrelevant; only tap positions matter.
type conv1DGeometry struct {
	stride   int
	dilation int
	effK     int
	padding  PaddingMode
	causal   bool
}

func newConv1DGeometry(spec LayerSpec) conv1DGeometry {
	spec = spec.Normalized()
	return conv1DGeometry{
		stride:   spec.Stride,
		dilation: spec.DilationRate,
		effK:     spec.EffectiveKernelWidth(),
		padding:  spec.Padding,
		causal:   spec.Causal,
	}
}

// Resolve computes the output length and left padding.
// Causal never changes either value.
func (g conv1DGeometry) Resolve(inDim int) LayerDims {
	if inDim < 0 {
		inDim = 0
	}

	var dims LayerDims
	switch g.padding {
	case PaddingSame:
		dims.OutputDim = max(ceilDiv(inDim, g.stride), 0)
		// Right padding is total-PadLeft; the larger half goes right
		totalPad := max((dims.OutputDim-1)*g.stride+g.effK-inDim, 0)
		dims.PadLeft = totalPad / 2
	default:
		dims.OutputDim = max(ceilDiv(inDim-g.effK+1, g.stride), 0)
	}
	return dims
}

// tapSpan is the exclusive upper bound of the window offset di
func (g conv1DGeometry) tapSpan() int {
	if g.causal {
		return (g.effK-1)/2 + 1
	}
	return g.effK
}

// Connections walks the window of output unit n and keeps offsets that land
// on a real (non-dilation) tap inside the input.
func (g conv1DGeometry) Connections(n int, dims LayerDims, inDim int, fn func(prev int)) {
	base := g.stride*n - dims.PadLeft
	span := g.tapSpan()
	for di := 0; di < span; di += g.dilation {
		prev := base + di
		if prev >= 0 && prev < inDim {
			fn(prev)
		}
	}
}

// taps lists the window offsets used for connectivity
func (g conv1DGeometry) taps() []int {
	var out []int
	for di := 0; di < g.tapSpan(); di += g.dilation {
		out = append(out, di)
	}
	return out
}

// ceilDiv is ceil(a/b) for b > 0, exact for negative a
func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}
