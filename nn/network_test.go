package nn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultNetwork(t *testing.T) {
	net := DefaultNetwork()
	require.Equal(t, 1, net.Len())
	assert.Equal(t, 32, net.InputDim())
	assert.Equal(t, []int{32, 30}, net.StageDims())
	assert.Equal(t, "Input", net.StageName(0))
	assert.Equal(t, "Layer 1", net.StageName(1))
	assert.Equal(t, "", net.StageName(2))
}

func TestNetworkAutoNames(t *testing.T) {
	named := DefaultLayerSpec()
	named.Name = "stem"
	net := NewNetwork(32, DefaultLayerSpec(), named, DefaultLayerSpec())

	// Layer 1 is output-most
	assert.Equal(t, "Layer 3", net.StageName(1))
	assert.Equal(t, "stem", net.StageName(2))
	assert.Equal(t, "Layer 1", net.StageName(3))

	_, err := net.InsertLayer(3, DefaultLayerSpec())
	require.NoError(t, err)
	assert.Equal(t, "Layer 4", net.StageName(1))
	assert.Equal(t, "Layer 2", net.StageName(3))
	assert.Equal(t, "Layer 1", net.StageName(4))

	require.NoError(t, net.RenameLayer(1, ""))
	assert.Equal(t, "Layer 3", net.StageName(2))

	assert.True(t, isAutoName("Layer 12"))
	assert.False(t, isAutoName("Layer x"))
	assert.False(t, isAutoName("Layers 1"))
}

func TestNetworkInsertRemove(t *testing.T) {
	net := NewNetwork(32, conv(3, 1, 1, PaddingValid))
	id, err := net.InsertLayer(0, conv(5, 1, 1, PaddingValid))
	require.NoError(t, err)

	assert.Equal(t, 0, net.IndexOf(id))
	assert.Equal(t, []int{32, 28, 26}, net.StageDims())

	require.NoError(t, net.RemoveLayer(1))
	assert.Equal(t, []int{32, 28}, net.StageDims())
	assert.Equal(t, 0, net.IndexOf(id))

	require.NoError(t, net.RemoveLayer(0))
	assert.Equal(t, 0, net.Len())
	assert.Equal(t, -1, net.IndexOf(id))
	assert.Equal(t, []int{32}, net.StageDims())

	_, err = net.InsertLayer(2, DefaultLayerSpec())
	assert.True(t, errors.Is(err, ErrLayerIndex))
	assert.ErrorIs(t, net.RemoveLayer(0), ErrLayerIndex)
}

func TestNetworkLayerIdentity(t *testing.T) {
	net := NewNetwork(32, DefaultLayerSpec(), DefaultLayerSpec())
	first, err := net.LayerIDAt(0)
	require.NoError(t, err)
	second, err := net.LayerIDAt(1)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = net.InsertLayer(1, DefaultLayerSpec())
	require.NoError(t, err)
	assert.Equal(t, 0, net.IndexOf(first))
	assert.Equal(t, 2, net.IndexOf(second))

	_, err = net.LayerIDAt(5)
	assert.ErrorIs(t, err, ErrLayerIndex)
}

func TestNetworkUpdateParam(t *testing.T) {
	net := DefaultNetwork()

	require.NoError(t, net.UpdateLayerParam(0, ParamPadding, int(PaddingSame)))
	assert.Equal(t, 32, net.StageDim(1))

	// Integers clamp
	require.NoError(t, net.UpdateLayerParam(0, ParamKernelWidth, 500))
	spec, err := net.Layer(0)
	require.NoError(t, err)
	assert.Equal(t, 64, spec.KernelWidth)

	require.NoError(t, net.UpdateLayerParam(0, ParamStride, 0))
	spec, _ = net.Layer(0)
	assert.Equal(t, 1, spec.Stride)

	// Enums reject
	err = net.UpdateLayerParam(0, ParamPadding, 2)
	assert.ErrorIs(t, err, ErrParamValue)
	err = net.UpdateLayerParam(0, ParamDim, 10)
	assert.ErrorIs(t, err, ErrUnknownParam)
	err = net.UpdateLayerParam(3, ParamStride, 1)
	assert.ErrorIs(t, err, ErrLayerIndex)
}

func TestNetworkSetInputDimClamps(t *testing.T) {
	net := DefaultNetwork()
	net.SetInputDim(1000)
	assert.Equal(t, MaxInputDim, net.InputDim())
	assert.Equal(t, MaxInputDim-2, net.StageDim(1))

	net.SetInputDim(-4)
	assert.Equal(t, 0, net.InputDim())
	assert.Equal(t, 0, net.StageDim(1))
}

func TestNetworkSetLayerKeepsName(t *testing.T) {
	net := DefaultNetwork()
	require.NoError(t, net.RenameLayer(0, "head"))

	replacement := conv(5, 1, 1, PaddingValid)
	replacement.Name = "ignored"
	require.NoError(t, net.SetLayer(0, replacement))

	spec, _ := net.Layer(0)
	assert.Equal(t, "head", spec.Name)
	assert.Equal(t, 5, spec.KernelWidth)
	assert.Equal(t, 28, net.StageDim(1))
}

func TestNetworkCloneIndependent(t *testing.T) {
	net := DefaultNetwork()
	c := net.Clone()
	require.NoError(t, c.UpdateLayerParam(0, ParamKernelWidth, 7))
	c.SetInputDim(10)

	assert.Equal(t, 32, net.InputDim())
	assert.Equal(t, 30, net.StageDim(1))
	assert.Equal(t, 4, c.StageDim(1))
}

func TestNetworkReset(t *testing.T) {
	net := NewNetwork(64, conv(5, 1, 1, PaddingValid), conv(5, 1, 1, PaddingValid))
	net.Reset()
	assert.Equal(t, 1, net.Len())
	assert.Equal(t, 64, net.InputDim())
	spec, _ := net.Layer(0)
	assert.Equal(t, 3, spec.KernelWidth)
	assert.Equal(t, "Layer 1", spec.Name)
}
