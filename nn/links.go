package nn

// Link connects unit From of stage l to unit To of stage l+1, where l is the
// index of the layer carrying it.
type Link struct {
	From        int  `json:"from"`
	To          int  `json:"to"`
	Highlighted bool `json:"highlighted"`
}

// StageLinks lists every connection made by layers[layer], in output-unit
// order. A link is highlighted when it carries the visualized field: for a
// projective field its source is marked, for a receptive field both ends are.
// masks may be nil.
func StageLinks(layers []LayerSpec, inputDim int, dims []LayerDims, masks FieldMasks, sel Selection, layer int) []Link {
	if layer < 0 || layer >= len(layers) {
		return nil
	}
	if len(dims) != len(layers) {
		dims = Resolve(inputDim, layers)
	}
	stages := stageDims(inputDim, dims)
	g := mustGeometry(layers[layer])

	var in, out []bool
	if masks != nil && len(masks) == len(stages) {
		in, out = masks[layer], masks[layer+1]
	}

	var links []Link
	for n := 0; n < stages[layer+1]; n++ {
		g.Connections(n, dims[layer], stages[layer], func(prev int) {
			link := Link{From: prev, To: n}
			if in != nil && sel.Active {
				switch sel.Mode {
				case FieldProjective:
					link.Highlighted = in[prev]
				case FieldReceptive:
					link.Highlighted = in[prev] && out[n]
				}
			}
			links = append(links, link)
		})
	}
	return links
}
