package gpu

import "github.com/openfluke/webgpu/wgpu"

// ComputeStep is the common interface of chained GPU compute stages
type ComputeStep interface {
	AllocateBuffers(ctx *Context, labelPrefix string) error
	Compile(ctx *Context, labelPrefix string) error
	CreateBindGroup(ctx *Context, labelPrefix string) error

	Dispatch(pass *wgpu.ComputePassEncoder)

	// Resource access for chaining one step's output into the next input
	GetInputBuffer() *wgpu.Buffer
	GetOutputBuffer() *wgpu.Buffer
	InputLen() int
	OutputLen() int

	Cleanup()
}
