package nn

import (
	"log/slog"

	"github.com/openfluke/convfield/gpu"
)

// Session owns a Network, the current Selection and the derived lengths and
// masks. Every mutation is followed by a full, synchronous recompute of the
// dimensions and then the field masks; there is no incremental path.
// A Session is single-owner and not safe for concurrent use.
type Session struct {
	net       *Network
	selection Selection
	dims      []LayerDims
	masks     FieldMasks
	observer  FieldObserver
	useGPU    bool
	revision  uint64
}

// NewSession takes ownership of net. A nil net starts from DefaultNetwork.
func NewSession(net *Network) *Session {
	if net == nil {
		net = DefaultNetwork()
	}
	s := &Session{net: net}
	s.recompute()
	return s
}

// SetObserver installs an observer notified after every recompute
func (s *Session) SetObserver(o FieldObserver) {
	s.observer = o
}

// UseGPU switches field propagation to the WebGPU backend. If no adapter can
// be initialized the session stays on the CPU and the error is returned;
// later GPU failures fall back to the CPU path per recompute.
func (s *Session) UseGPU(enabled bool) error {
	var err error
	if enabled {
		if err = gpu.EnsureGPU(); err != nil {
			Logger().Warn("GPU unavailable, staying on CPU", slog.Any("err", err))
			enabled = false
		}
	}
	s.useGPU = enabled
	s.recompute()
	return err
}

// Network returns a copy of the current network
func (s *Session) Network() *Network { return s.net.Clone() }

// Selection returns the current selection (possibly none)
func (s *Session) Selection() Selection { return s.selection }

// Dims returns the geometry from the latest recompute
func (s *Session) Dims() []LayerDims { return append([]LayerDims(nil), s.dims...) }

// Masks returns the field masks from the latest recompute, or nil when no
// field is visualized. The result must not be modified.
func (s *Session) Masks() FieldMasks { return s.masks }

// Revision counts recomputes
func (s *Session) Revision() uint64 { return s.revision }

// SetInputDim changes the network input length
func (s *Session) SetInputDim(dim int) {
	s.net.SetInputDim(dim)
	s.recompute()
}

// InsertLayer adds spec at index and shifts a selection anchored beyond it
func (s *Session) InsertLayer(index int, spec LayerSpec) (LayerID, error) {
	id, err := s.net.InsertLayer(index, spec)
	if err != nil {
		return 0, err
	}
	if s.selection.Active && s.selection.Stage > index {
		s.selection.Stage++
	}
	Logger().Info("layer inserted", slog.Int("index", index), slog.Int("layers", s.net.Len()))
	s.recompute()
	return id, nil
}

// RemoveLayer deletes the layer at index. A selection on the removed layer's
// output is reset; selections further toward the output shift down.
func (s *Session) RemoveLayer(index int) error {
	if err := s.net.RemoveLayer(index); err != nil {
		return err
	}
	if s.selection.Active {
		switch {
		case s.selection.Stage == index+1:
			s.resetSelection("anchor layer removed")
		case s.selection.Stage > index+1:
			s.selection.Stage--
		}
	}
	Logger().Info("layer removed", slog.Int("index", index), slog.Int("layers", s.net.Len()))
	s.recompute()
	return nil
}

// UpdateLayerParam edits one integer-encoded field of a layer
func (s *Session) UpdateLayerParam(index int, field ParamField, value int) error {
	if err := s.net.UpdateLayerParam(index, field, value); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// SetLayer replaces the parameters of a layer, keeping its name
func (s *Session) SetLayer(index int, spec LayerSpec) error {
	if err := s.net.SetLayer(index, spec); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// RenameLayer changes a layer's display name
func (s *Session) RenameLayer(index int, name string) error {
	if err := s.net.RenameLayer(index, name); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// Reset restores a single default layer and clears the selection
func (s *Session) Reset() {
	s.net.Reset()
	s.selection = NoSelection
	s.recompute()
}

// Load replaces the network and clears the selection
func (s *Session) Load(net *Network) {
	if net == nil {
		net = DefaultNetwork()
	}
	s.net = net
	s.selection = NoSelection
	Logger().Info("network loaded", slog.Int("input_dim", net.InputDim()), slog.Int("layers", net.Len()))
	s.recompute()
}

// Select anchors the field on a unit. An out-of-range anchor yields none.
func (s *Session) Select(sel Selection) Selection {
	s.selection = sel
	s.recompute()
	return s.selection
}

// ClearSelection sets the selection to none
func (s *Session) ClearSelection() {
	s.selection = NoSelection
	s.recompute()
}

func (s *Session) resetSelection(reason string) {
	Logger().Warn("selection reset", slog.String("selection", s.selection.String()), slog.String("reason", reason))
	s.selection = NoSelection
}

// recompute resolves all lengths, validates the selection and rebuilds masks
func (s *Session) recompute() {
	s.revision++
	s.dims = s.net.Dims()
	specs := s.net.Specs()

	if s.selection.Active && !s.selection.Valid(stageDims(s.net.InputDim(), s.dims)) {
		s.resetSelection("out of range")
	}

	s.masks = nil
	if s.selection.Active {
		var ok bool
		if s.useGPU {
			s.masks, ok = propagateWithFallback(specs, s.net.InputDim(), s.dims, s.selection)
		} else {
			s.masks, ok = Propagate(specs, s.net.InputDim(), s.dims, s.selection)
		}
		if !ok {
			s.resetSelection("no masks")
			s.masks = nil
		}
	}

	Logger().Debug("recomputed",
		slog.Uint64("revision", s.revision),
		slog.Int("input_dim", s.net.InputDim()),
		slog.Int("layers", len(s.dims)),
		slog.String("selection", s.selection.String()))
	s.notifyObserver()
}
