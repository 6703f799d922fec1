package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSelect(t *testing.T) {
	s := NewSession(nil)
	assert.Nil(t, s.Masks())

	sel := s.Select(Select(1, 0, FieldReceptive))
	require.True(t, sel.Active)
	require.NotNil(t, s.Masks())
	assert.Equal(t, []int{0, 1, 2}, s.Masks().Indices(0))

	s.ClearSelection()
	assert.False(t, s.Selection().Active)
	assert.Nil(t, s.Masks())
}

func TestSessionInvalidSelectionResets(t *testing.T) {
	s := NewSession(nil)
	sel := s.Select(Select(1, 99, FieldReceptive))
	assert.False(t, sel.Active)
	assert.Nil(t, s.Masks())

	sel = s.Select(Select(0, 0, FieldReceptive))
	assert.False(t, sel.Active)
}

// Deleting the layer that produced the anchor stage resets the selection
func TestSessionRemoveAnchorLayer(t *testing.T) {
	s := NewSession(NewNetwork(32, DefaultLayerSpec(), DefaultLayerSpec()))
	s.Select(Select(2, 0, FieldReceptive))
	require.True(t, s.Selection().Active)

	require.NoError(t, s.RemoveLayer(1))
	assert.Equal(t, NoSelection, s.Selection())
	assert.Nil(t, s.Masks())

	_, ok := Propagate(s.Network().Specs(), 32, s.Dims(), Select(2, 0, FieldReceptive))
	assert.False(t, ok)
}

func TestSessionRemoveShiftsSelection(t *testing.T) {
	s := NewSession(NewNetwork(32, DefaultLayerSpec(), DefaultLayerSpec(), DefaultLayerSpec()))
	s.Select(Select(3, 0, FieldReceptive))

	require.NoError(t, s.RemoveLayer(0))
	assert.Equal(t, Select(2, 0, FieldReceptive), s.Selection())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.Masks().Indices(0))

	// Below the removed layer nothing moves
	s.Select(Select(0, 4, FieldProjective))
	require.NoError(t, s.RemoveLayer(1))
	assert.Equal(t, Select(0, 4, FieldProjective), s.Selection())
}

func TestSessionInsertShiftsSelection(t *testing.T) {
	s := NewSession(nil)
	s.Select(Select(1, 3, FieldReceptive))

	_, err := s.InsertLayer(0, DefaultLayerSpec())
	require.NoError(t, err)
	assert.Equal(t, Select(2, 3, FieldReceptive), s.Selection())
	assert.Equal(t, []int{3, 4, 5, 6, 7}, s.Masks().Indices(0))

	// Insert above the anchor keeps the stage
	_, err = s.InsertLayer(2, DefaultLayerSpec())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Selection().Stage)
}

func TestSessionEditInvalidatesSelection(t *testing.T) {
	s := NewSession(nil)
	s.Select(Select(1, 29, FieldReceptive))
	require.True(t, s.Selection().Active)

	// Output shrinks from 30 to 26; unit 29 disappears
	require.NoError(t, s.UpdateLayerParam(0, ParamKernelWidth, 7))
	assert.False(t, s.Selection().Active)

	s.Select(Select(0, 31, FieldProjective))
	s.SetInputDim(16)
	assert.False(t, s.Selection().Active)
}

func TestSessionObserver(t *testing.T) {
	s := NewSession(nil)
	var events []FieldEvent
	s.SetObserver(FieldObserverFunc(func(e FieldEvent) { events = append(events, e) }))

	s.Select(Select(1, 0, FieldReceptive))
	require.Len(t, events, 1)
	e := events[0]
	assert.True(t, e.Masked)
	assert.Equal(t, s.Revision(), e.Revision)
	require.Len(t, e.Stages, 2)
	assert.Equal(t, StageStats{Stage: 0, Name: "Input", TotalUnits: 32, MarkedUnits: 3}, e.Stages[0])
	assert.Equal(t, 1, e.Stages[1].MarkedUnits)

	s.Reset()
	require.Len(t, events, 2)
	assert.False(t, events[1].Masked)
	assert.Greater(t, events[1].Revision, e.Revision)
}

func TestSessionLoad(t *testing.T) {
	s := NewSession(nil)
	s.Select(Select(1, 0, FieldReceptive))
	s.Load(NewNetwork(10, conv(3, 2, 1, PaddingValid)))

	assert.False(t, s.Selection().Active)
	require.Len(t, s.Dims(), 1)
	assert.Equal(t, 6, s.Dims()[0].OutputDim)

	s.Load(nil)
	assert.Equal(t, 32, s.Network().InputDim())
}

func TestSessionNetworkIsCopy(t *testing.T) {
	s := NewSession(nil)
	n := s.Network()
	n.SetInputDim(5)
	assert.Equal(t, 32, s.Network().InputDim())
}
