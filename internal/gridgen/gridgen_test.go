package gridgen

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridpath"
)

func TestGenerate_SameSeedSameGrid(t *testing.T) {
	for _, style := range []Style{StyleScatter, StyleClusters} {
		p := Params{Width: 30, Height: 20, Density: DefaultDensity, Seed: 42, Style: style}
		a, err := Generate(p)
		require.NoError(t, err)
		b, err := Generate(p)
		require.NoError(t, err)
		assert.Equal(t, a.Rows(), b.Rows(), style)
	}
}

func TestGenerate_DensityBounds(t *testing.T) {
	empty, err := Generate(Params{Width: 10, Height: 10, Density: 0, Seed: 1})
	require.NoError(t, err)
	assert.Zero(t, empty.BlockedCount())

	full, err := Generate(Params{Width: 10, Height: 10, Density: 1, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 100, full.BlockedCount())

	scatter, err := Generate(Params{Width: 100, Height: 100, Density: DefaultDensity, Seed: 7})
	require.NoError(t, err)
	assert.InDelta(t, 2000, scatter.BlockedCount(), 300)
}

func TestGenerate_KeepsCellsFree(t *testing.T) {
	keep := []gridpath.Node{{X: 0, Y: 0}, {X: 4, Y: 4}}
	g, err := Generate(Params{Width: 5, Height: 5, Density: 1, Seed: 3, Keep: keep})
	require.NoError(t, err)
	for _, n := range keep {
		assert.False(t, g.Blocked(n.X, n.Y))
	}
	assert.Equal(t, 23, g.BlockedCount())
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(Params{Width: 0, Height: 5})
	assert.ErrorIs(t, err, gridpath.ErrInvalidDimensions)

	_, err = Generate(Params{Width: 5, Height: 5, Density: 1.5})
	assert.Error(t, err)

	_, err = Generate(Params{Width: 5, Height: 5, Style: "spiral"})
	assert.Error(t, err)
}

func TestFreeCell(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	g, err := gridpath.ParseGrid("##", "#.")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		n, ok := FreeCell(g, r)
		require.True(t, ok)
		assert.Equal(t, gridpath.Node{X: 1, Y: 1}, n)
	}

	full, err := gridpath.ParseGrid("#")
	require.NoError(t, err)
	_, ok := FreeCell(full, r)
	assert.False(t, ok)
}
