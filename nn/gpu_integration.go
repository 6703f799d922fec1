package nn

import (
	"fmt"
	"log/slog"

	"github.com/openfluke/convfield/gpu"
)

// fieldStepSpecs translates the layers crossed by a selection into GPU mask
// steps, in execution order.
func fieldStepSpecs(layers []LayerSpec, dims []LayerDims, stages []int, sel Selection) ([]gpu.FieldStepSpec, error) {
	var specs []gpu.FieldStepSpec
	step := func(l int, dir gpu.Direction) error {
		g, ok := mustGeometry(layers[l]).(conv1DGeometry)
		if !ok {
			return fmt.Errorf("layer %d: %s has no GPU field kernel", l, layers[l].Type)
		}
		specs = append(specs, gpu.FieldStepSpec{
			InDim:     stages[l],
			OutDim:    stages[l+1],
			Stride:    g.stride,
			PadLeft:   dims[l].PadLeft,
			Dilation:  g.dilation,
			Span:      g.tapSpan(),
			Direction: dir,
		})
		return nil
	}

	switch sel.Mode {
	case FieldProjective:
		for l := sel.Stage; l < len(layers); l++ {
			if err := step(l, gpu.DirectionForward); err != nil {
				return nil, err
			}
		}
	case FieldReceptive:
		for l := sel.Stage - 1; l >= 0; l-- {
			if err := step(l, gpu.DirectionBackward); err != nil {
				return nil, err
			}
		}
	}
	return specs, nil
}

// PropagateGPU computes the same masks as Propagate with one WebGPU compute
// pass per crossed layer. ok is false for an invalid selection; err reports
// GPU failures.
func PropagateGPU(layers []LayerSpec, inputDim int, dims []LayerDims, sel Selection) (masks FieldMasks, ok bool, err error) {
	if len(dims) != len(layers) {
		dims = Resolve(inputDim, layers)
	}
	stages := stageDims(inputDim, dims)
	if !sel.Valid(stages) {
		return nil, false, nil
	}

	specs, err := fieldStepSpecs(layers, dims, stages, sel)
	if err != nil {
		return nil, true, err
	}

	masks = newFieldMasks(stages)
	masks[sel.Stage][sel.Unit] = true
	if len(specs) == 0 {
		return masks, true, nil
	}

	steps := make([]gpu.ComputeStep, len(specs))
	for i := range specs {
		steps[i] = &gpu.FieldStepLayer{Spec: specs[i]}
	}
	seed := make([]float32, stages[sel.Stage])
	seed[sel.Unit] = 1

	outputs, err := gpu.RunChain(steps, seed)
	if err != nil {
		return nil, true, err
	}

	applyStepOutputs(masks, sel, outputs)
	return masks, true, nil
}

// applyStepOutputs thresholds step i's 0/1 output into the stage one step
// further from the anchor.
func applyStepOutputs(masks FieldMasks, sel Selection, outputs [][]float32) {
	dir := 1
	if sel.Mode == FieldReceptive {
		dir = -1
	}
	for i, out := range outputs {
		stage := sel.Stage + dir*(i+1)
		for u, v := range out {
			masks[stage][u] = v > 0.5
		}
	}
}

// propagateWithFallback runs PropagateGPU and falls back to the CPU on error
func propagateWithFallback(layers []LayerSpec, inputDim int, dims []LayerDims, sel Selection) (FieldMasks, bool) {
	masks, ok, err := PropagateGPU(layers, inputDim, dims, sel)
	if err != nil {
		Logger().Warn("GPU propagation failed, using CPU", slog.Any("err", err))
		return Propagate(layers, inputDim, dims, sel)
	}
	return masks, ok
}
