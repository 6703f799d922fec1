package nn

import "fmt"

// FieldMode selects the direction of field propagation
type FieldMode int

const (
	FieldReceptive  FieldMode = 0 // Toward the input: units the anchor depends on
	FieldProjective FieldMode = 1 // Toward the output: units the anchor influences
)

func (m FieldMode) String() string {
	switch m {
	case FieldReceptive:
		return "receptive"
	case FieldProjective:
		return "projective"
	default:
		return fmt.Sprintf("FieldMode(%d)", int(m))
	}
}

// ModeFromModifier maps the editor's modifier flag (shift held) to a mode
func ModeFromModifier(shift bool) FieldMode {
	if shift {
		return FieldProjective
	}
	return FieldReceptive
}

// Selection is the anchor unit of the visualized field, or none.
// Stage 0 is the network input, stage k the output of layers[k-1].
type Selection struct {
	Active bool      `json:"active"`
	Stage  int       `json:"stage"`
	Unit   int       `json:"unit"`
	Mode   FieldMode `json:"mode"`
}

// NoSelection is the "none" selection
var NoSelection = Selection{}

// Select builds an active selection
func Select(stage, unit int, mode FieldMode) Selection {
	return Selection{Active: true, Stage: stage, Unit: unit, Mode: mode}
}

// Valid reports whether the selection can be propagated over stages with the
// given unit counts. A receptive field anchored on the input has nothing to
// propagate into.
func (s Selection) Valid(stages []int) bool {
	if !s.Active {
		return false
	}
	if s.Mode != FieldReceptive && s.Mode != FieldProjective {
		return false
	}
	if s.Stage < 0 || s.Stage >= len(stages) {
		return false
	}
	if s.Unit < 0 || s.Unit >= stages[s.Stage] {
		return false
	}
	if s.Mode == FieldReceptive && s.Stage == 0 {
		return false
	}
	return true
}

func (s Selection) String() string {
	if !s.Active {
		return "none"
	}
	return fmt.Sprintf("%s@%d:%d", s.Mode, s.Stage, s.Unit)
}
