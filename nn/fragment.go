package nn

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	recordSeparator = "~"
	fieldSeparator  = ","
)

// ErrMalformed is the root of every fragment decoding failure
var ErrMalformed = errors.New("malformed network fragment")

// ParseError reports where a fragment could not be decoded.
// Record 0 is the input length, record i >= 1 the i-th layer record.
// Field is -1 when the record as a whole is at fault.
type ParseError struct {
	Record int
	Field  int
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("record %d", e.Record)
	if e.Field >= 0 {
		where += " field " + ParamField(e.Field).String()
	}
	if e.Token != "" {
		return fmt.Sprintf("%v: %s: token %q: %v", ErrMalformed, where, e.Token, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrMalformed, where, e.Err)
}

// Unwrap exposes both ErrMalformed and the underlying cause
func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformed, e.Err}
}

// EncodeFragment writes the shareable form of a network:
// "input~rec~rec..." with output-most layer first and every record the
// integer fields of LayerParams() joined by ",".
func EncodeFragment(net *Network) string {
	specs := net.Specs()
	dims := net.Dims()

	parts := make([]string, 0, len(specs)+1)
	parts = append(parts, strconv.Itoa(net.InputDim()))
	for l := len(specs) - 1; l >= 0; l-- {
		fields := make([]string, len(layerParams))
		for i, p := range layerParams {
			v := specs[l].Param(p.Field)
			if p.Field == ParamDim {
				v = dims[l].OutputDim
			}
			fields[i] = strconv.Itoa(v)
		}
		parts = append(parts, strings.Join(fields, fieldSeparator))
	}
	return strings.Join(parts, recordSeparator)
}

// DecodeFragment parses a fragment produced by EncodeFragment. A leading "#"
// and percent-encoding are accepted. Any malformed record rejects the whole
// fragment with a *ParseError; nothing is partially applied.
func DecodeFragment(fragment string) (*Network, error) {
	inputDim, specs, err := decodeFragment(fragment)
	if err != nil {
		return nil, err
	}
	return NewNetwork(inputDim, specs...), nil
}

// DecodeFragmentOrDefault never returns a nil network: on failure it falls
// back to a single default layer, keeping the input length if that much
// parsed, and still reports the error.
func DecodeFragmentOrDefault(fragment string) (*Network, error) {
	inputDim, specs, err := decodeFragment(fragment)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Record > 0 {
			return NewNetwork(inputDim, DefaultLayerSpec()), err
		}
		return DefaultNetwork(), err
	}
	return NewNetwork(inputDim, specs...), nil
}

func decodeFragment(fragment string) (int, []LayerSpec, error) {
	fragment = strings.TrimPrefix(strings.TrimSpace(fragment), "#")
	unescaped, err := url.PathUnescape(fragment)
	if err != nil {
		return 0, nil, &ParseError{Record: 0, Field: -1, Token: fragment, Err: err}
	}
	if unescaped == "" {
		return 0, nil, &ParseError{Record: 0, Field: -1, Err: errors.New("empty fragment")}
	}

	records := strings.Split(unescaped, recordSeparator)
	inputDim, err := strconv.Atoi(strings.TrimSpace(records[0]))
	if err != nil {
		return 0, nil, &ParseError{Record: 0, Field: -1, Token: records[0], Err: err}
	}
	inputDim = clamp(inputDim, 0, MaxInputDim)

	// Records are stored output-most first
	specs := make([]LayerSpec, len(records)-1)
	for r := 1; r < len(records); r++ {
		spec, err := decodeRecord(r, records[r])
		if err != nil {
			return inputDim, nil, err
		}
		specs[len(specs)-r] = spec
	}
	return inputDim, specs, nil
}

func decodeRecord(r int, record string) (LayerSpec, error) {
	tokens := strings.Split(record, fieldSeparator)
	if len(tokens) != len(layerParams) {
		return LayerSpec{}, &ParseError{
			Record: r, Field: -1, Token: record,
			Err: fmt.Errorf("want %d fields, got %d", len(layerParams), len(tokens)),
		}
	}

	spec := DefaultLayerSpec()
	for i, p := range layerParams {
		v, err := strconv.Atoi(strings.TrimSpace(tokens[i]))
		if err != nil {
			return LayerSpec{}, &ParseError{Record: r, Field: i, Token: tokens[i], Err: err}
		}
		if p.Derived {
			continue
		}
		spec, err = spec.WithParam(p.Field, v)
		if err != nil {
			return LayerSpec{}, &ParseError{Record: r, Field: i, Token: tokens[i], Err: err}
		}
	}
	return spec, nil
}
