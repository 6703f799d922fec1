package nn

// Blueprint contains the structural summary of a network
type Blueprint struct {
	InputDim int              `json:"input_dim"`
	Layers   []LayerTelemetry `json:"layers"`

	// Span of input units seen by one unit of the last stage, ignoring borders
	ReceptiveSpan int `json:"receptive_span"`
}

// LayerTelemetry contains derived metadata about one layer
type LayerTelemetry struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Padding string `json:"padding"`
	Causal  bool   `json:"causal,omitempty"`

	InputDim  int `json:"input_dim"`
	OutputDim int `json:"output_dim"`
	PadLeft   int `json:"pad_left"`

	EffectiveKernel int   `json:"effective_kernel"`
	Taps            []int `json:"taps"` // Window offsets used for connectivity

	// Input-unit distance between neighbouring units of this layer's output
	Jump int `json:"jump"`
	// Input units spanned by one output unit of this layer, ignoring borders
	ReceptiveSpan int `json:"receptive_span"`
}

// ExtractBlueprint computes per-layer telemetry from the cached geometry
func ExtractBlueprint(net *Network) Blueprint {
	specs := net.Specs()
	dims := net.Dims()
	bp := Blueprint{
		InputDim: net.InputDim(),
		Layers:   make([]LayerTelemetry, 0, len(specs)),
	}

	jump, span := 1, 1
	inDim := net.InputDim()
	for i, s := range specs {
		lt := LayerTelemetry{
			Index:           i,
			Name:            s.Name,
			Type:            s.Type.String(),
			Padding:         s.Padding.String(),
			Causal:          s.Causal,
			InputDim:        inDim,
			OutputDim:       dims[i].OutputDim,
			PadLeft:         dims[i].PadLeft,
			EffectiveKernel: s.EffectiveKernelWidth(),
		}
		if g, ok := mustGeometry(s).(conv1DGeometry); ok {
			lt.Taps = g.taps()
			last := 0
			if n := len(lt.Taps); n > 0 {
				last = lt.Taps[n-1]
			}
			span += last * jump
			jump *= g.stride
		}
		lt.Jump = jump
		lt.ReceptiveSpan = span

		bp.Layers = append(bp.Layers, lt)
		inDim = dims[i].OutputDim
	}
	bp.ReceptiveSpan = span
	return bp
}
