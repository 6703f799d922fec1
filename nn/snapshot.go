package nn

// StageSnapshot is everything a renderer needs to draw one stage
type StageSnapshot struct {
	Stage int    `json:"stage"`
	Name  string `json:"name"`
	Units int    `json:"units"`
	Mask  []bool `json:"mask,omitempty"`

	// Connections from the previous stage into this one; empty for the input
	Links []Link `json:"links,omitempty"`
}

// Snapshot is a self-contained, read-only view of a session
type Snapshot struct {
	InputDim  int               `json:"input_dim"`
	Layers    []LayerDefinition `json:"layers"`
	Stages    []StageSnapshot   `json:"stages"`
	Selection Selection         `json:"selection"`
	Fragment  string            `json:"fragment"`
	Revision  uint64            `json:"revision"`
}

// Snapshot captures the state of the latest recompute
func (s *Session) Snapshot() Snapshot {
	specs := s.net.Specs()
	inputDim := s.net.InputDim()

	snap := Snapshot{
		InputDim:  inputDim,
		Layers:    ToConfig(s.net, "").Layers,
		Stages:    make([]StageSnapshot, s.net.Len()+1),
		Selection: s.selection,
		Fragment:  EncodeFragment(s.net),
		Revision:  s.revision,
	}
	for k := range snap.Stages {
		st := StageSnapshot{
			Stage: k,
			Name:  s.net.StageName(k),
			Units: s.net.StageDim(k),
		}
		if s.masks != nil {
			st.Mask = append([]bool(nil), s.masks[k]...)
		}
		if k > 0 {
			st.Links = StageLinks(specs, inputDim, s.dims, s.masks, s.selection, k-1)
		}
		snap.Stages[k] = st
	}
	return snap
}
