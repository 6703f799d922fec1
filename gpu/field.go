package gpu

import (
	"fmt"
	"log/slog"

	"github.com/openfluke/webgpu/wgpu"
)

// Direction selects which way a field step moves through a layer
type Direction int

const (
	DirectionForward  Direction = 0 // Input mask -> output mask (projective)
	DirectionBackward Direction = 1 // Output mask -> input mask (receptive)
)

func (d Direction) String() string {
	if d == DirectionBackward {
		return "backward"
	}
	return "forward"
}

const workgroupSize = 256

// FieldStepSpec describes one layer's connectivity for a single mask step.
// Output unit n reads input s*n + di - PadLeft for di in [0, Span) with
// di divisible by Dilation.
type FieldStepSpec struct {
	InDim     int
	OutDim    int
	Stride    int
	PadLeft   int
	Dilation  int
	Span      int
	Direction Direction
}

// FieldStepLayer holds GPU resources for one mask propagation step.
// Masks are float32 0/1 buffers.
type FieldStepLayer struct {
	Spec FieldStepSpec

	pipeline  *wgpu.ComputePipeline
	bindGroup *wgpu.BindGroup

	InputBuffer  *wgpu.Buffer
	OutputBuffer *wgpu.Buffer
}

func (l *FieldStepLayer) GetInputBuffer() *wgpu.Buffer  { return l.InputBuffer }
func (l *FieldStepLayer) GetOutputBuffer() *wgpu.Buffer { return l.OutputBuffer }

// InputLen is the length of the mask this step reads
func (l *FieldStepLayer) InputLen() int {
	if l.Spec.Direction == DirectionBackward {
		return l.Spec.OutDim
	}
	return l.Spec.InDim
}

// OutputLen is the length of the mask this step writes
func (l *FieldStepLayer) OutputLen() int {
	if l.Spec.Direction == DirectionBackward {
		return l.Spec.InDim
	}
	return l.Spec.OutDim
}

func (l *FieldStepLayer) normalize() {
	if l.Spec.Stride < 1 {
		l.Spec.Stride = 1
	}
	if l.Spec.Dilation < 1 {
		l.Spec.Dilation = 1
	}
	if l.Spec.Span < 0 {
		l.Spec.Span = 0
	}
}

func (l *FieldStepLayer) AllocateBuffers(ctx *Context, labelPrefix string) error {
	l.normalize()
	var err error
	l.InputBuffer, err = ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: labelPrefix + "_In",
		Size:  uint64(max(l.InputLen(), 1) * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return err
	}
	l.OutputBuffer, err = ctx.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: labelPrefix + "_Out",
		Size:  uint64(max(l.OutputLen(), 1) * 4),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc,
	})
	return err
}

// GenerateShader returns the WGSL gather kernel for the step direction.
// Both directions are gathers so no atomics are needed.
func (l *FieldStepLayer) GenerateShader() string {
	l.normalize()
	header := fmt.Sprintf(`
		@group(0) @binding(0) var<storage, read> src : array<f32>;
		@group(0) @binding(1) var<storage, read_write> dst : array<f32>;

		const IN_DIM: i32 = %d;
		const OUT_DIM: i32 = %d;
		const STRIDE: i32 = %d;
		const PAD_LEFT: i32 = %d;
		const DILATION: i32 = %d;
		const SPAN: i32 = %d;
`, l.Spec.InDim, l.Spec.OutDim, l.Spec.Stride, l.Spec.PadLeft, l.Spec.Dilation, l.Spec.Span)

	if l.Spec.Direction == DirectionBackward {
		return header + fmt.Sprintf(`
		@compute @workgroup_size(%d)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let i = i32(gid.x);
			if (i >= IN_DIM) { return; }

			var hit: f32 = 0.0;
			for (var di: i32 = 0; di < SPAN; di += DILATION) {
				let num = i + PAD_LEFT - di;
				if (num >= 0 && num %% STRIDE == 0) {
					let n = num / STRIDE;
					if (n < OUT_DIM && src[n] > 0.5) { hit = 1.0; }
				}
			}
			dst[i] = hit;
		}
	`, workgroupSize)
	}

	return header + fmt.Sprintf(`
		@compute @workgroup_size(%d)
		fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
			let n = i32(gid.x);
			if (n >= OUT_DIM) { return; }

			var hit: f32 = 0.0;
			for (var di: i32 = 0; di < SPAN; di += DILATION) {
				let prev = STRIDE * n + di - PAD_LEFT;
				if (prev >= 0 && prev < IN_DIM && src[prev] > 0.5) { hit = 1.0; }
			}
			dst[n] = hit;
		}
	`, workgroupSize)
}

func (l *FieldStepLayer) Compile(ctx *Context, labelPrefix string) error {
	mod, err := ctx.Device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          labelPrefix + "_Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: l.GenerateShader()},
	})
	if err != nil {
		return err
	}
	l.pipeline, err = ctx.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:   labelPrefix + "_Pipe",
		Compute: wgpu.ProgrammableStageDescriptor{Module: mod, EntryPoint: "main"},
	})
	return err
}

func (l *FieldStepLayer) CreateBindGroup(ctx *Context, labelPrefix string) error {
	var err error
	l.bindGroup, err = ctx.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  labelPrefix + "_Bind",
		Layout: l.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: l.InputBuffer, Size: l.InputBuffer.GetSize()},
			{Binding: 1, Buffer: l.OutputBuffer, Size: l.OutputBuffer.GetSize()},
		},
	})
	return err
}

func (l *FieldStepLayer) Dispatch(pass *wgpu.ComputePassEncoder) {
	pass.SetPipeline(l.pipeline)
	pass.SetBindGroup(0, l.bindGroup, nil)
	total := max(l.OutputLen(), 1)
	pass.DispatchWorkgroups(uint32((total+workgroupSize-1)/workgroupSize), 1, 1)
}

func (l *FieldStepLayer) Cleanup() {
	for _, b := range []*wgpu.Buffer{l.InputBuffer, l.OutputBuffer} {
		if b != nil {
			b.Destroy()
		}
	}
	if l.pipeline != nil {
		l.pipeline.Release()
	}
	if l.bindGroup != nil {
		l.bindGroup.Release()
	}
}

// RunChain uploads seed into the first step, runs every step in order with
// each output copied into the next input, and returns every step's output.
// Each step's InputLen must equal the previous step's OutputLen.
func RunChain(steps []ComputeStep, seed []float32) ([][]float32, error) {
	if len(steps) == 0 {
		return nil, nil
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].InputLen() != steps[i-1].OutputLen() {
			return nil, fmt.Errorf("step %d reads %d units, step %d writes %d",
				i, steps[i].InputLen(), i-1, steps[i-1].OutputLen())
		}
	}
	if len(seed) != steps[0].InputLen() {
		return nil, fmt.Errorf("seed has %d units, first step reads %d", len(seed), steps[0].InputLen())
	}

	c, err := GetContext()
	if err != nil {
		return nil, err
	}

	defer func() {
		for _, s := range steps {
			s.Cleanup()
		}
	}()
	for i, s := range steps {
		label := fmt.Sprintf("FieldStep%d", i)
		if err := s.AllocateBuffers(c, label); err != nil {
			return nil, fmt.Errorf("%s allocate: %w", label, err)
		}
		if err := s.Compile(c, label); err != nil {
			return nil, fmt.Errorf("%s compile: %w", label, err)
		}
		if err := s.CreateBindGroup(c, label); err != nil {
			return nil, fmt.Errorf("%s bind: %w", label, err)
		}
	}

	if len(seed) > 0 {
		c.Queue.WriteBuffer(steps[0].GetInputBuffer(), 0, wgpu.ToBytes(seed))
	}

	enc, err := c.Device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("command encoder: %w", err)
	}
	for i, s := range steps {
		pass := enc.BeginComputePass(nil)
		s.Dispatch(pass)
		pass.End()
		if i+1 < len(steps) && s.OutputLen() > 0 {
			enc.CopyBufferToBuffer(s.GetOutputBuffer(), 0, steps[i+1].GetInputBuffer(), 0, uint64(s.OutputLen()*4))
		}
	}
	cmd, err := enc.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("command encoder finish: %w", err)
	}
	c.Queue.Submit(cmd)

	out := make([][]float32, len(steps))
	for i, s := range steps {
		out[i], err = ReadBuffer(s.GetOutputBuffer(), s.OutputLen())
		if err != nil {
			return nil, fmt.Errorf("read step %d: %w", i, err)
		}
	}
	Logger().Debug("field chain complete", slog.Int("steps", len(steps)))
	return out, nil
}
