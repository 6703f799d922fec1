package nn

// FieldMasks holds one boolean slice per stage, sized to the stage's unit
// count. true marks membership in the visualized field.
type FieldMasks [][]bool

// Count returns the number of marked units in a stage
func (m FieldMasks) Count(stage int) int {
	if stage < 0 || stage >= len(m) {
		return 0
	}
	n := 0
	for _, v := range m[stage] {
		if v {
			n++
		}
	}
	return n
}

// Indices returns the marked unit indices of a stage in ascending order
func (m FieldMasks) Indices(stage int) []int {
	if stage < 0 || stage >= len(m) {
		return nil
	}
	var out []int
	for i, v := range m[stage] {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// Equal reports whether two mask sets have identical contents
func (m FieldMasks) Equal(other FieldMasks) bool {
	if len(m) != len(other) {
		return false
	}
	for k := range m {
		if len(m[k]) != len(other[k]) {
			return false
		}
		for i := range m[k] {
			if m[k][i] != other[k][i] {
				return false
			}
		}
	}
	return true
}

func newFieldMasks(stages []int) FieldMasks {
	masks := make(FieldMasks, len(stages))
	for k, n := range stages {
		masks[k] = make([]bool, n)
	}
	return masks
}

// Propagate computes the receptive or projective field of the selected unit.
// dims must come from Resolve(inputDim, layers). It returns false ("no
// masks") when the selection is none or does not fit the current geometry;
// the caller is expected to reset its selection in that case.
func Propagate(layers []LayerSpec, inputDim int, dims []LayerDims, sel Selection) (FieldMasks, bool) {
	if len(dims) != len(layers) {
		dims = Resolve(inputDim, layers)
	}
	stages := stageDims(inputDim, dims)
	if !sel.Valid(stages) {
		return nil, false
	}

	masks := newFieldMasks(stages)
	masks[sel.Stage][sel.Unit] = true

	switch sel.Mode {
	case FieldProjective:
		for l := sel.Stage; l < len(layers); l++ {
			projectLayer(mustGeometry(layers[l]), dims[l], masks[l], masks[l+1])
		}
	case FieldReceptive:
		for l := sel.Stage - 1; l >= 0; l-- {
			receiveLayer(mustGeometry(layers[l]), dims[l], masks[l+1], masks[l])
		}
	}
	return masks, true
}

// projectLayer marks every output unit with at least one marked input
func projectLayer(g Geometry, dims LayerDims, in, out []bool) {
	inDim := len(in)
	for n := range out {
		hit := false
		g.Connections(n, dims, inDim, func(prev int) {
			if in[prev] {
				hit = true
			}
		})
		out[n] = hit
	}
}

// receiveLayer marks every input read by a marked output unit
func receiveLayer(g Geometry, dims LayerDims, out, in []bool) {
	inDim := len(in)
	for n, marked := range out {
		if !marked {
			continue
		}
		g.Connections(n, dims, inDim, func(prev int) {
			in[prev] = true
		})
	}
}
