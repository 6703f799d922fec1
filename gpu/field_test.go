package gpu

import (
	"strings"
	"testing"
)

func TestFieldStepLengths(t *testing.T) {
	fwd := &FieldStepLayer{Spec: FieldStepSpec{InDim: 32, OutDim: 30, Direction: DirectionForward}}
	if fwd.InputLen() != 32 || fwd.OutputLen() != 30 {
		t.Errorf("forward lengths: got %d -> %d", fwd.InputLen(), fwd.OutputLen())
	}

	bwd := &FieldStepLayer{Spec: FieldStepSpec{InDim: 32, OutDim: 30, Direction: DirectionBackward}}
	if bwd.InputLen() != 30 || bwd.OutputLen() != 32 {
		t.Errorf("backward lengths: got %d -> %d", bwd.InputLen(), bwd.OutputLen())
	}
}

func TestFieldShaderConstants(t *testing.T) {
	l := &FieldStepLayer{Spec: FieldStepSpec{InDim: 17, OutDim: 9, Stride: 2, PadLeft: 1, Dilation: 2, Span: 5}}
	src := l.GenerateShader()

	for _, want := range []string{
		"const IN_DIM: i32 = 17;",
		"const OUT_DIM: i32 = 9;",
		"const STRIDE: i32 = 2;",
		"const PAD_LEFT: i32 = 1;",
		"const DILATION: i32 = 2;",
		"const SPAN: i32 = 5;",
		"@workgroup_size(256)",
		"if (n >= OUT_DIM)",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("forward shader missing %q", want)
		}
	}
}

func TestFieldShaderBackward(t *testing.T) {
	l := &FieldStepLayer{Spec: FieldStepSpec{InDim: 8, OutDim: 6, Stride: 1, Span: 3, Direction: DirectionBackward}}
	src := l.GenerateShader()

	if !strings.Contains(src, "num % STRIDE == 0") {
		t.Error("backward shader should test stride alignment")
	}
	if !strings.Contains(src, "if (i >= IN_DIM)") {
		t.Error("backward shader should run one invocation per input unit")
	}
	if strings.Contains(src, "%!") {
		t.Error("shader contains a formatting error")
	}
}

func TestFieldStepNormalize(t *testing.T) {
	l := &FieldStepLayer{Spec: FieldStepSpec{InDim: 4, OutDim: 4, Stride: 0, Dilation: -1, Span: -3}}
	src := l.GenerateShader()
	if l.Spec.Stride != 1 || l.Spec.Dilation != 1 || l.Spec.Span != 0 {
		t.Errorf("unexpected normalized spec %+v", l.Spec)
	}
	if !strings.Contains(src, "const STRIDE: i32 = 1;") {
		t.Error("shader should use the normalized stride")
	}
}

func TestRunChainValidates(t *testing.T) {
	steps := []ComputeStep{
		&FieldStepLayer{Spec: FieldStepSpec{InDim: 8, OutDim: 6}},
		&FieldStepLayer{Spec: FieldStepSpec{InDim: 5, OutDim: 3}},
	}
	if _, err := RunChain(steps, make([]float32, 8)); err == nil {
		t.Error("expected mismatched chain to fail before touching the device")
	}

	steps = steps[:1]
	if _, err := RunChain(steps, make([]float32, 3)); err == nil {
		t.Error("expected wrong seed length to fail")
	}

	out, err := RunChain(nil, nil)
	if err != nil || out != nil {
		t.Errorf("empty chain: got %v, %v", out, err)
	}
}

func TestDirectionString(t *testing.T) {
	if DirectionForward.String() != "forward" || DirectionBackward.String() != "backward" {
		t.Error("unexpected direction names")
	}
}
