package nn

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrLayerIndex = errors.New("layer index out of range")

// LayerID identifies a layer independently of its position
type LayerID uint64

type layerEntry struct {
	id       LayerID
	spec     LayerSpec
	autoName bool
	dims     LayerDims
}

// Network is an ordered stack of 1-D layers over an input of InputDim units.
// layers[0] is nearest the input. Cached lengths are refreshed after every
// mutation, so reads never see stale geometry.
type Network struct {
	inputDim int
	layers   []layerEntry
	nextID   LayerID
}

// NewNetwork creates a network from specs ordered input-most first.
// Specs named "", "Layer" or "Layer <n>" are auto-numbered.
func NewNetwork(inputDim int, specs ...LayerSpec) *Network {
	n := &Network{inputDim: clamp(inputDim, 0, MaxInputDim)}
	for _, spec := range specs {
		n.layers = append(n.layers, n.newEntry(spec))
	}
	n.renumber()
	n.resolve()
	return n
}

// DefaultNetwork is a 32-unit input under a single default layer
func DefaultNetwork() *Network {
	return NewNetwork(DefaultInputDim, DefaultLayerSpec())
}

func (n *Network) newEntry(spec LayerSpec) layerEntry {
	n.nextID++
	return layerEntry{id: n.nextID, spec: spec.Normalized(), autoName: isAutoName(spec.Name)}
}

// isAutoName reports whether a name is empty, "Layer" or "Layer <n>"
func isAutoName(name string) bool {
	if name == "" || name == "Layer" {
		return true
	}
	rest, ok := strings.CutPrefix(name, "Layer ")
	if !ok {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// Clone returns an independent copy, layer IDs included
func (n *Network) Clone() *Network {
	c := &Network{inputDim: n.inputDim, nextID: n.nextID}
	c.layers = append([]layerEntry(nil), n.layers...)
	return c
}

// Len is the number of layers
func (n *Network) Len() int { return len(n.layers) }

// InputDim is the network input length
func (n *Network) InputDim() int { return n.inputDim }

// Layer returns the spec at index i
func (n *Network) Layer(i int) (LayerSpec, error) {
	if i < 0 || i >= len(n.layers) {
		return LayerSpec{}, fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	return n.layers[i].spec, nil
}

// LayerIDAt returns the identity of the layer at index i
func (n *Network) LayerIDAt(i int) (LayerID, error) {
	if i < 0 || i >= len(n.layers) {
		return 0, fmt.Errorf("%w: %d", ErrLayerIndex, i)
	}
	return n.layers[i].id, nil
}

// IndexOf returns the current position of a layer, or -1
func (n *Network) IndexOf(id LayerID) int {
	for i, e := range n.layers {
		if e.id == id {
			return i
		}
	}
	return -1
}

// Specs returns a copy of all layer specs, input-most first
func (n *Network) Specs() []LayerSpec {
	out := make([]LayerSpec, len(n.layers))
	for i, e := range n.layers {
		out[i] = e.spec
	}
	return out
}

// Dims returns the cached geometry of every layer
func (n *Network) Dims() []LayerDims {
	out := make([]LayerDims, len(n.layers))
	for i, e := range n.layers {
		out[i] = e.dims
	}
	return out
}

// StageDims returns the unit count of every stage (input first)
func (n *Network) StageDims() []int {
	return stageDims(n.inputDim, n.Dims())
}

// StageDim returns the unit count of stage k, or 0 if k does not exist
func (n *Network) StageDim(k int) int {
	switch {
	case k == 0:
		return n.inputDim
	case k > 0 && k <= len(n.layers):
		return n.layers[k-1].dims.OutputDim
	}
	return 0
}

// StageName labels stage k: "Input" for the network input, otherwise the
// name of the layer producing it.
func (n *Network) StageName(k int) string {
	if k == 0 {
		return "Input"
	}
	if k > 0 && k <= len(n.layers) {
		return n.layers[k-1].spec.Name
	}
	return ""
}

// SetInputDim changes the input length, clamped to [0, MaxInputDim]
func (n *Network) SetInputDim(dim int) {
	n.inputDim = clamp(dim, 0, MaxInputDim)
	n.resolve()
}

// InsertLayer places spec at index (0..Len), shifting later layers toward
// the output.
func (n *Network) InsertLayer(index int, spec LayerSpec) (LayerID, error) {
	if index < 0 || index > len(n.layers) {
		return 0, fmt.Errorf("%w: insert at %d of %d", ErrLayerIndex, index, len(n.layers))
	}
	e := n.newEntry(spec)
	n.layers = append(n.layers, layerEntry{})
	copy(n.layers[index+1:], n.layers[index:])
	n.layers[index] = e
	n.renumber()
	n.resolve()
	return e.id, nil
}

// RemoveLayer deletes the layer at index
func (n *Network) RemoveLayer(index int) error {
	if index < 0 || index >= len(n.layers) {
		return fmt.Errorf("%w: remove %d of %d", ErrLayerIndex, index, len(n.layers))
	}
	n.layers = append(n.layers[:index], n.layers[index+1:]...)
	n.renumber()
	n.resolve()
	return nil
}

// UpdateLayerParam sets one integer-encoded field of the layer at index.
// Integer fields are clamped to their bounds; enum fields outside their
// range are rejected.
func (n *Network) UpdateLayerParam(index int, field ParamField, value int) error {
	if index < 0 || index >= len(n.layers) {
		return fmt.Errorf("%w: update %d of %d", ErrLayerIndex, index, len(n.layers))
	}
	spec, err := n.layers[index].spec.WithParam(field, value)
	if err != nil {
		return fmt.Errorf("layer %d: %w", index, err)
	}
	n.layers[index].spec = spec
	n.resolve()
	return nil
}

// SetLayer replaces every parameter of the layer at index except its name
func (n *Network) SetLayer(index int, spec LayerSpec) error {
	if index < 0 || index >= len(n.layers) {
		return fmt.Errorf("%w: set %d of %d", ErrLayerIndex, index, len(n.layers))
	}
	spec = spec.Normalized()
	spec.Name = n.layers[index].spec.Name
	n.layers[index].spec = spec
	n.resolve()
	return nil
}

// RenameLayer gives a layer a fixed name, excluding it from auto-numbering.
// An empty name hands it back to auto-numbering.
func (n *Network) RenameLayer(index int, name string) error {
	if index < 0 || index >= len(n.layers) {
		return fmt.Errorf("%w: rename %d of %d", ErrLayerIndex, index, len(n.layers))
	}
	n.layers[index].autoName = name == ""
	n.layers[index].spec.Name = name
	n.renumber()
	return nil
}

// Reset replaces all layers by a single default layer
func (n *Network) Reset() {
	n.layers = []layerEntry{n.newEntry(DefaultLayerSpec())}
	n.renumber()
	n.resolve()
}

// renumber names auto-named layers "Layer 1" (output-most) to "Layer N"
// (input-most).
func (n *Network) renumber() {
	count := len(n.layers)
	for i := range n.layers {
		if n.layers[i].autoName {
			n.layers[i].spec.Name = "Layer " + strconv.Itoa(count-i)
		}
	}
}

func (n *Network) resolve() {
	dims := Resolve(n.inputDim, n.Specs())
	for i := range n.layers {
		n.layers[i].dims = dims[i]
	}
}
