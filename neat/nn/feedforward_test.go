package nn

import (
	"testing"

	"github.com/baldhumanity/evonet/neat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileMatchesForward(t *testing.T) {
	opts := neat.DefaultGenomeOptions(3, 2)
	opts.Activation = "tanh"
	opts.RandomBias = true
	rates := neat.MutationRates{AddNode: 0.7, AddConnection: 1, PerturbWeight: 0.5}

	for n := 0; n < 20; n++ {
		g, err := neat.NewGenome(opts, neat.NewTracker())
		require.NoError(t, err)
		for i := 0; i < 12; i++ {
			require.NoError(t, g.Mutate(rates))
		}

		net, err := Compile(g)
		require.NoError(t, err)
		for _, in := range [][]float64{{0, 0, 0}, {1, -1, 0.5}, {0.2, 0.4, 0.8}} {
			want, err := g.Forward(in)
			require.NoError(t, err)
			got, err := net.Activate(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
	}
}

func TestCompileLayers(t *testing.T) {
	g, err := neat.NewGenome(neat.DefaultGenomeOptions(2, 1), nil)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(0, 2, 0.5))
	require.NoError(t, g.AddConnection(1, 2, 0.5))
	require.NoError(t, g.AddNode(0, 2))

	net, err := Compile(g)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1}, {3}, {2}}, net.Layers)
	assert.Equal(t, 3, net.Depth())
	require.Len(t, net.Nodes, 2)
	assert.Equal(t, 3, net.Nodes[0].Index)
	assert.Equal(t, []link{{From: 1, Weight: 0.5}, {From: 3, Weight: 0.5}}, net.Nodes[1].Inputs)

	// hidden = 1*1 + 1; output = 1*0.5 + 2*0.5 + 1
	out, err := net.Activate([]float64{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, out[0], 1e-12)

	_, err = net.Activate([]float64{1})
	assert.ErrorIs(t, err, neat.ErrDimensionMismatch)
}

func TestCompileRejectsCycle(t *testing.T) {
	g, err := neat.NewGenome(neat.DefaultGenomeOptions(1, 1), nil)
	require.NoError(t, err)
	require.NoError(t, g.AddConnection(0, 1, 1))
	require.NoError(t, g.AddNode(0, 1))
	require.NoError(t, g.AddNode(2, 1))
	require.NoError(t, g.AddConnection(3, 2, 1))

	_, err = Compile(g)
	assert.ErrorIs(t, err, neat.ErrInvariant)
}
