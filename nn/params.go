package nn

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownParam = errors.New("unknown layer parameter")
	ErrParamValue   = errors.New("parameter value out of range")
)

// ParamField names one integer-encoded field of a layer record
type ParamField int

const (
	ParamType         ParamField = iota // Layer kind ordinal
	ParamDim                            // Derived output length, persisted but never read back
	ParamKernelWidth                    // Kernel width before dilation
	ParamDilationRate                   // Spacing between taps
	ParamStride                         // Output step
	ParamPadding                        // PaddingMode ordinal
	ParamCausal                         // 0 or 1
)

// ParamSchema describes how a field is encoded and bounded
type ParamSchema struct {
	Field   ParamField
	Key     string
	Min     int
	Max     int
	Default int
	Enum    bool // Out-of-range values are rejected instead of clamped
	Derived bool // Written on save, ignored on load
}

// layerParams lists the persisted fields in record order
var layerParams = []ParamSchema{
	{Field: ParamType, Key: "type", Min: 0, Max: 0, Default: int(LayerConv1D), Enum: true},
	{Field: ParamDim, Key: "dim", Min: 0, Max: 400, Default: 0, Derived: true},
	{Field: ParamKernelWidth, Key: "kernel_width", Min: 1, Max: 64, Default: 3},
	{Field: ParamDilationRate, Key: "dilation_rate", Min: 1, Max: 64, Default: 1},
	{Field: ParamStride, Key: "stride", Min: 1, Max: 64, Default: 1},
	{Field: ParamPadding, Key: "padding_mode", Min: 0, Max: 1, Default: int(PaddingValid), Enum: true},
	{Field: ParamCausal, Key: "causal", Min: 0, Max: 1, Default: 0, Enum: true},
}

// MaxInputDim bounds the network input length
const MaxInputDim = 400

// DefaultInputDim is the input length of a fresh network
const DefaultInputDim = 32

// LayerParams returns the record schema in persisted order
func LayerParams() []ParamSchema {
	out := make([]ParamSchema, len(layerParams))
	for i, p := range layerParams {
		out[i], _ = p.Field.schema()
	}
	return out
}

func (f ParamField) schema() (ParamSchema, bool) {
	if f < 0 || int(f) >= len(layerParams) {
		return ParamSchema{}, false
	}
	p := layerParams[f]
	if f == ParamType {
		// Bounded by whatever geometries are registered
		if types := ListLayerTypes(); len(types) > 0 {
			p.Max = int(types[len(types)-1])
		}
	}
	return p, true
}

func (f ParamField) String() string {
	if s, ok := f.schema(); ok {
		return s.Key
	}
	return fmt.Sprintf("ParamField(%d)", int(f))
}

// ParseParamField looks a field up by its record key
func ParseParamField(key string) (ParamField, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range layerParams {
		if p.Key == key {
			return p.Field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, key)
}

// normalize clamps integer fields and rejects enum values outside their range
func (p ParamSchema) normalize(value int) (int, error) {
	if value < p.Min || value > p.Max {
		if p.Enum {
			return 0, fmt.Errorf("%w: %s=%d (want %d..%d)", ErrParamValue, p.Key, value, p.Min, p.Max)
		}
		value = clamp(value, p.Min, p.Max)
	}
	return value, nil
}

// Param reads one integer-encoded field of the spec
func (s LayerSpec) Param(f ParamField) int {
	switch f {
	case ParamType:
		return int(s.Type)
	case ParamKernelWidth:
		return s.KernelWidth
	case ParamDilationRate:
		return s.DilationRate
	case ParamStride:
		return s.Stride
	case ParamPadding:
		return int(s.Padding)
	case ParamCausal:
		if s.Causal {
			return 1
		}
		return 0
	}
	return 0
}

// WithParam returns a copy of the spec with one field set.
// Integer fields are clamped to the schema bounds.
func (s LayerSpec) WithParam(f ParamField, value int) (LayerSpec, error) {
	p, ok := f.schema()
	if !ok {
		return s, fmt.Errorf("%w: %d", ErrUnknownParam, int(f))
	}
	if p.Derived {
		return s, fmt.Errorf("%w: %s is derived", ErrUnknownParam, p.Key)
	}
	v, err := p.normalize(value)
	if err != nil {
		return s, err
	}
	if f == ParamType {
		if _, ok := geometryRegistry[LayerType(v)]; !ok {
			return s, fmt.Errorf("%w: %s=%d has no geometry", ErrParamValue, p.Key, v)
		}
	}

	switch f {
	case ParamType:
		s.Type = LayerType(v)
	case ParamKernelWidth:
		s.KernelWidth = v
	case ParamDilationRate:
		s.DilationRate = v
	case ParamStride:
		s.Stride = v
	case ParamPadding:
		s.Padding = PaddingMode(v)
	case ParamCausal:
		s.Causal = v == 1
	}
	return s, nil
}

// Normalized clamps every integer field into its schema bounds.
// Unknown enum values fall back to their defaults.
func (s LayerSpec) Normalized() LayerSpec {
	for _, p := range layerParams {
		if p.Derived {
			continue
		}
		next, err := s.WithParam(p.Field, s.Param(p.Field))
		if err != nil {
			next, _ = s.WithParam(p.Field, p.Default)
		}
		s = next
	}
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
