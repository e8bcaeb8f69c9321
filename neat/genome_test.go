package neat

import (
	"math"
	"testing"

	"github.com/baldhumanity/evonet/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenome(t *testing.T, in, out int, tracker *Tracker) *Genome {
	t.Helper()
	g, err := NewGenome(DefaultGenomeOptions(in, out), tracker)
	require.NoError(t, err)
	return g
}

func TestNewGenomeIsMinimal(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)
	assert.Equal(t, 3, g.NumNodes())
	assert.True(t, g.Weights.IsSquare())
	assert.Empty(t, g.Connections())
	assert.Equal(t, []int{0, 1}, g.InputNodes())
	assert.Equal(t, []int{2}, g.OutputNodes())
	assert.Equal(t, 0.0, g.Nodes[0].Bias)
	assert.Equal(t, 1.0, g.Nodes[2].Bias)
	assert.Equal(t, NoID, g.Nodes[2].ID)
	assert.True(t, math.IsInf(g.Fitness, -1))
	assert.Zero(t, g.Stagnation)
}

func TestNewGenomeRejectsBadOptions(t *testing.T) {
	_, err := NewGenome(DefaultGenomeOptions(0, 1), nil)
	assert.Error(t, err)
	_, err = NewGenome(DefaultGenomeOptions(1, 0), nil)
	assert.Error(t, err)

	opts := DefaultGenomeOptions(1, 1)
	opts.Activation = "nope"
	_, err = NewGenome(opts, nil)
	assert.Error(t, err)
}

func TestNewGenomeRandomBias(t *testing.T) {
	opts := DefaultGenomeOptions(1, 5)
	opts.RandomBias = true
	opts.BiasBound = 0.5
	g, err := NewGenome(opts, nil)
	require.NoError(t, err)
	for _, i := range g.OutputNodes() {
		assert.GreaterOrEqual(t, g.Nodes[i].Bias, -0.5)
		assert.Less(t, g.Nodes[i].Bias, 0.5)
	}
}

func TestForward(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)

	out, err := g.Forward([]float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out)

	require.NoError(t, g.AddConnection(0, 2, 0.5))
	require.NoError(t, g.AddConnection(1, 2, -1))
	out, err = g.Forward([]float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, out[0], 1e-12)

	_, err = g.Forward([]float64{1})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestForwardAppliesActivation(t *testing.T) {
	opts := DefaultGenomeOptions(1, 1)
	opts.Activation = "relu"
	opts.FixedBias = 0
	g, err := NewGenome(opts, nil)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(0, 1, 1))

	out, err := g.Forward([]float64{-3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0])
	out, err = g.Forward([]float64{3})
	require.NoError(t, err)
	assert.Equal(t, 3.0, out[0])
}

func TestAddConnectionErrors(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)

	assert.ErrorIs(t, g.AddConnection(2, 0, 1), ErrConnectFromOutput)
	assert.ErrorIs(t, g.AddConnection(0, 1, 1), ErrConnectToInput)
	assert.ErrorIs(t, g.AddConnection(0, 9, 1), grid.ErrOutOfRange)
	assert.ErrorIs(t, g.AddConnection(-1, 2, 1), grid.ErrOutOfRange)

	require.NoError(t, g.AddConnection(0, 2, 1))
	assert.ErrorIs(t, g.AddConnection(0, 2, 0.3), ErrConnectionExists)

	w, ok, err := g.Weight(0, 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)
}

func TestAddNodeSplitsEdge(t *testing.T) {
	g := newTestGenome(t, 2, 1, nil)
	assert.ErrorIs(t, g.AddNode(0, 2), ErrNoConnection)

	require.NoError(t, g.AddConnection(0, 2, 0.5))
	require.NoError(t, g.AddConnection(1, 2, -1))
	require.NoError(t, g.AddNode(0, 2))

	assert.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 4, g.Weights.Rows())
	assert.Equal(t, 4, g.Weights.Cols())
	_, ok, _ := g.Weight(0, 2)
	assert.False(t, ok)
	w, ok, _ := g.Weight(0, 3)
	assert.True(t, ok)
	assert.Equal(t, 1.0, w)
	w, ok, _ = g.Weight(3, 2)
	assert.True(t, ok)
	assert.Equal(t, 0.5, w)
	assert.Equal(t, 1.0, g.Nodes[3].Bias)

	// hidden = 2*1 + 1; output = 3*0.5 + 3*-1 + 1
	out, err := g.Forward([]float64{2, 3})
	require.NoError(t, err)
	assert.InDelta(t, -0.5, out[0], 1e-12)
}

func TestForwardDetectsCycle(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	require.NoError(t, g.AddConnection(0, 1, 1))
	require.NoError(t, g.AddNode(0, 1))
	require.NoError(t, g.AddNode(2, 1))
	require.NoError(t, g.AddConnection(3, 2, 1))

	_, err := g.Forward([]float64{1})
	assert.ErrorIs(t, err, ErrInvariant)
	assert.ErrorIs(t, err, grid.ErrCycle)
}

func TestDisableAndReenableConnection(t *testing.T) {
	tr := NewTracker()
	g := newTestGenome(t, 1, 1, tr)
	require.NoError(t, g.AddConnection(0, 1, 0.7))
	require.Len(t, g.Registry, 1)
	assert.False(t, g.IsDisabled(0, 1))

	require.NoError(t, g.DisableConnection(0, 1))
	assert.True(t, g.IsDisabled(0, 1))
	assert.Empty(t, g.Connections())
	require.Len(t, g.Registry, 1)

	require.NoError(t, g.AddConnection(0, 1, 0.2))
	assert.False(t, g.IsDisabled(0, 1))
	require.Len(t, g.Registry, 1)
	assert.True(t, g.Registry[0].Enabled)
}

func TestStandaloneGenomeHasNoRegistry(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	require.NoError(t, g.AddConnection(0, 1, 1))
	require.NoError(t, g.DisableConnection(0, 1))
	assert.Empty(t, g.Registry)
	assert.False(t, g.IsDisabled(0, 1))
}

func TestSharedSplitsGetSameIDs(t *testing.T) {
	tr := NewTracker()
	a := newTestGenome(t, 2, 1, tr)
	b := newTestGenome(t, 2, 1, tr)

	for _, g := range []*Genome{a, b} {
		require.NoError(t, g.AddConnection(0, 2, 0.5))
		require.NoError(t, g.AddNode(0, 2))
	}

	assert.Equal(t, []int{0, 1, 2, 3}, []int{a.Nodes[0].ID, a.Nodes[1].ID, a.Nodes[2].ID, a.Nodes[3].ID})
	assert.Equal(t, a.Nodes, b.Nodes)
	assert.Equal(t, a.Registry, b.Registry)
	assert.Equal(t, []ConnectionGene{{ID: 0, Enabled: false}, {ID: 1, Enabled: true}, {ID: 2, Enabled: true}}, a.Registry)
	assert.Equal(t, 4, tr.NumNodeIDs())
	assert.Equal(t, 3, tr.NumConnectionIDs())
	assert.True(t, a.IsDisabled(0, 2))
}

func TestEvaluateStagnation(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	inputs := [][]float64{{0}, {1}}
	targets := [][]float64{{0.5}, {0.5}}

	require.NoError(t, g.Evaluate(inputs, targets, MSELoss))
	assert.InDelta(t, -0.25, g.Fitness, 1e-12)
	assert.Zero(t, g.Stagnation)

	require.NoError(t, g.Evaluate(inputs, targets, MSELoss))
	require.NoError(t, g.Evaluate(inputs, targets, MSELoss))
	assert.Equal(t, 2, g.Stagnation)

	g.Nodes[1].Bias = 0.5
	require.NoError(t, g.Evaluate(inputs, targets, MSELoss))
	assert.InDelta(t, 0.0, g.Fitness, 1e-12)
	assert.Zero(t, g.Stagnation)
}

func TestEvaluateErrors(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	assert.ErrorIs(t, g.Evaluate(nil, nil, MSELoss), ErrDimensionMismatch)
	assert.ErrorIs(t, g.Evaluate([][]float64{{1}}, [][]float64{{1}, {2}}, MSELoss), ErrDimensionMismatch)
	assert.ErrorIs(t, g.Evaluate([][]float64{{1}}, [][]float64{{1, 2}}, MSELoss), ErrDimensionMismatch)
	assert.ErrorIs(t, g.Evaluate([][]float64{{1, 2}}, [][]float64{{1}}, MSELoss), ErrDimensionMismatch)
}

func TestEvaluateNaNLossIsWorst(t *testing.T) {
	g := newTestGenome(t, 1, 1, nil)
	nanLoss := func(_, _ []float64) float64 { return math.NaN() }
	require.NoError(t, g.Evaluate([][]float64{{1}}, [][]float64{{1}}, nanLoss))
	assert.True(t, math.IsInf(g.Fitness, -1))
	assert.Equal(t, 1, g.Stagnation)
}
