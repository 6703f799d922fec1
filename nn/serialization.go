package nn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// NetworkConfig is the document form of a network
type NetworkConfig struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	InputDim int               `json:"input_dim" yaml:"input_dim"`
	Layers   []LayerDefinition `json:"layers" yaml:"layers"` // Input-most first
}

// LayerDefinition defines a single layer's parameters
type LayerDefinition struct {
	Type         string `json:"type" yaml:"type"`
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	KernelWidth  int    `json:"kernel_width" yaml:"kernel_width"`
	DilationRate int    `json:"dilation_rate,omitempty" yaml:"dilation_rate,omitempty"`
	Stride       int    `json:"stride,omitempty" yaml:"stride,omitempty"`
	Padding      string `json:"padding,omitempty" yaml:"padding,omitempty"` // "VALID" or "SAME"
	Causal       bool   `json:"causal,omitempty" yaml:"causal,omitempty"`

	// Derived, written for readers, ignored on load
	OutputDim int `json:"output_dim,omitempty" yaml:"output_dim,omitempty"`
	PadLeft   int `json:"pad_left,omitempty" yaml:"pad_left,omitempty"`
}

// ToConfig converts a network into its document form
func ToConfig(net *Network, id string) NetworkConfig {
	specs := net.Specs()
	dims := net.Dims()
	cfg := NetworkConfig{
		ID:       id,
		InputDim: net.InputDim(),
		Layers:   make([]LayerDefinition, len(specs)),
	}
	for i, s := range specs {
		cfg.Layers[i] = LayerDefinition{
			Type:         s.Type.String(),
			Name:         s.Name,
			KernelWidth:  s.KernelWidth,
			DilationRate: s.DilationRate,
			Stride:       s.Stride,
			Padding:      s.Padding.String(),
			Causal:       s.Causal,
			OutputDim:    dims[i].OutputDim,
			PadLeft:      dims[i].PadLeft,
		}
	}
	return cfg
}

// FromConfig builds a network from its document form.
// Missing dilation and stride default to 1; integers are clamped.
func FromConfig(cfg NetworkConfig) (*Network, error) {
	specs := make([]LayerSpec, len(cfg.Layers))
	for i, def := range cfg.Layers {
		t, err := ParseLayerType(def.Type)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		if _, err := GeometryFor(LayerSpec{Type: t}); err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		p, err := ParsePaddingMode(def.Padding)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		spec := LayerSpec{
			Type:         t,
			Name:         def.Name,
			KernelWidth:  def.KernelWidth,
			DilationRate: def.DilationRate,
			Stride:       def.Stride,
			Padding:      p,
			Causal:       def.Causal,
		}
		if spec.DilationRate == 0 {
			spec.DilationRate = 1
		}
		if spec.Stride == 0 {
			spec.Stride = 1
		}
		specs[i] = spec
	}
	return NewNetwork(cfg.InputDim, specs...), nil
}

// MarshalNetworkJSON returns the indented JSON document of a network
func MarshalNetworkJSON(net *Network, id string) ([]byte, error) {
	data, err := json.MarshalIndent(ToConfig(net, id), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal network: %w", err)
	}
	return data, nil
}

// UnmarshalNetworkJSON parses a JSON network document
func UnmarshalNetworkJSON(data []byte) (*Network, error) {
	var cfg NetworkConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}
	return FromConfig(cfg)
}

// MarshalNetworkYAML returns the YAML document of a network
func MarshalNetworkYAML(net *Network, id string) ([]byte, error) {
	data, err := yaml.Marshal(ToConfig(net, id))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal network: %w", err)
	}
	return data, nil
}

// UnmarshalNetworkYAML parses a YAML network document
func UnmarshalNetworkYAML(data []byte) (*Network, error) {
	var cfg NetworkConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal network: %w", err)
	}
	return FromConfig(cfg)
}

// SaveNetwork writes a network document; .yaml/.yml selects YAML, anything
// else JSON.
func SaveNetwork(net *Network, id, path string) error {
	var data []byte
	var err error
	if isYAMLPath(path) {
		data, err = MarshalNetworkYAML(net, id)
	} else {
		data, err = MarshalNetworkJSON(net, id)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadNetwork reads a network document, picking the format by extension
func LoadNetwork(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if isYAMLPath(path) {
		return UnmarshalNetworkYAML(data)
	}
	return UnmarshalNetworkJSON(data)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
