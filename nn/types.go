package nn

import (
	"fmt"
	"strings"
)

// LayerType defines the kind of 1-D layer in the stack
type LayerType int

const (
	LayerConv1D LayerType = 0 // Strided, dilated 1-D convolution
)

// String returns the display name of the layer type
func (t LayerType) String() string {
	switch t {
	case LayerConv1D:
		return "Conv1D"
	default:
		return fmt.Sprintf("LayerType(%d)", int(t))
	}
}

// ParseLayerType converts a display name back to a LayerType
func ParseLayerType(s string) (LayerType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conv1d", "":
		return LayerConv1D, nil
	default:
		return 0, fmt.Errorf("unknown layer type %q", s)
	}
}

// PaddingMode defines how a layer pads its input
type PaddingMode int

const (
	PaddingValid PaddingMode = 0 // No padding, output shrinks by the effective kernel
	PaddingSame  PaddingMode = 1 // Zero-pad so output is ceil(input/stride)
)

func (p PaddingMode) String() string {
	switch p {
	case PaddingValid:
		return "VALID"
	case PaddingSame:
		return "SAME"
	default:
		return fmt.Sprintf("PaddingMode(%d)", int(p))
	}
}

// ParsePaddingMode accepts "VALID" or "SAME" in any case
func ParsePaddingMode(s string) (PaddingMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "VALID", "":
		return PaddingValid, nil
	case "SAME":
		return PaddingSame, nil
	default:
		return 0, fmt.Errorf("unknown padding mode %q", s)
	}
}

// LayerSpec holds the user-editable parameters of one layer.
// Lengths are never stored here; they are derived by Resolve.
type LayerSpec struct {
	Type         LayerType
	Name         string // Display only
	KernelWidth  int
	DilationRate int
	Stride       int
	Padding      PaddingMode
	Causal       bool // Truncates the tap range used for connectivity, never the length
}

// DefaultLayerSpec returns the layer added by the editor's "+" button
func DefaultLayerSpec() LayerSpec {
	return LayerSpec{
		Type:         LayerConv1D,
		Name:         "Layer",
		KernelWidth:  3,
		DilationRate: 1,
		Stride:       1,
		Padding:      PaddingValid,
		Causal:       false,
	}
}

// EffectiveKernelWidth is the kernel width after inserting
// DilationRate-1 zero taps between consecutive weights.
func (s LayerSpec) EffectiveKernelWidth() int {
	return (s.KernelWidth-1)*s.DilationRate + 1
}

// LayerDims is the derived geometry of one layer for a given input length
type LayerDims struct {
	OutputDim int `json:"output_dim"`
	PadLeft   int `json:"pad_left"`
}
