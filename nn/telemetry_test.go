package nn

import "testing"

func TestExtractBlueprint(t *testing.T) {
	dilated := conv(3, 2, 1, PaddingValid)
	net := NewNetwork(64, conv(3, 1, 2, PaddingValid), conv(3, 1, 1, PaddingValid), dilated)
	bp := ExtractBlueprint(net)

	if len(bp.Layers) != 3 {
		t.Fatalf("Expected 3 layers, got %d", len(bp.Layers))
	}

	wantJump := []int{2, 2, 2}
	wantSpan := []int{3, 7, 15}
	for i, lt := range bp.Layers {
		if lt.Jump != wantJump[i] {
			t.Errorf("layer %d jump: expected %d, got %d", i, wantJump[i], lt.Jump)
		}
		if lt.ReceptiveSpan != wantSpan[i] {
			t.Errorf("layer %d span: expected %d, got %d", i, wantSpan[i], lt.ReceptiveSpan)
		}
	}
	if bp.ReceptiveSpan != 15 {
		t.Errorf("Expected network span 15, got %d", bp.ReceptiveSpan)
	}

	last := bp.Layers[2]
	if last.EffectiveKernel != 5 || len(last.Taps) != 3 || last.Taps[2] != 4 {
		t.Errorf("unexpected dilated taps %v (effK %d)", last.Taps, last.EffectiveKernel)
	}
	if last.InputDim != bp.Layers[1].OutputDim {
		t.Errorf("layer 2 input %d != layer 1 output %d", last.InputDim, bp.Layers[1].OutputDim)
	}
}

// The blueprint span matches the receptive field of an interior unit
func TestBlueprintMatchesPropagation(t *testing.T) {
	net := NewNetwork(100, conv(3, 1, 2, PaddingValid), conv(3, 2, 1, PaddingValid))
	bp := ExtractBlueprint(net)

	masks, ok := Propagate(net.Specs(), net.InputDim(), net.Dims(), Select(2, 3, FieldReceptive))
	if !ok {
		t.Fatal("Expected masks")
	}
	idx := masks.Indices(0)
	got := idx[len(idx)-1] - idx[0] + 1
	if got != bp.ReceptiveSpan {
		t.Errorf("Expected span %d, got %d (indices %v)", bp.ReceptiveSpan, got, idx)
	}
}

func TestBlueprintCausal(t *testing.T) {
	causal := conv(5, 1, 1, PaddingValid)
	causal.Causal = true
	bp := ExtractBlueprint(NewNetwork(16, causal))
	if len(bp.Layers[0].Taps) != 3 || bp.ReceptiveSpan != 3 {
		t.Errorf("Expected 3 causal taps, got %v (span %d)", bp.Layers[0].Taps, bp.ReceptiveSpan)
	}
}
