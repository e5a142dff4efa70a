package gridpath

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepper_RunMatchesSearch(t *testing.T) {
	g := mustGrid(t,
		"......",
		".####.",
		"......",
		"##.###",
		"......",
	)
	start, end := Node{0, 0}, Node{5, 4}

	want, err := Search[Node](context.Background(), g, start, end, Manhattan)
	require.NoError(t, err)
	require.True(t, want.Found)

	for _, workers := range []int{0, 2} {
		stepper := NewStepper[Node](context.Background(), g, start, end, Manhattan, WithWorkers(workers))
		final, err := stepper.Run()
		stepper.Close()
		require.NoError(t, err)

		assert.True(t, final.Done)
		assert.True(t, final.Found)
		assert.Equal(t, want.Path, final.Path)
		assert.Equal(t, want.ExpandedNodes, final.StepIndex)
		assert.Equal(t, end, final.Current)
	}
}

func TestStepper_SnapshotsGrow(t *testing.T) {
	g := freeGrid(t, 4, 4)
	stepper := NewStepper[Node](context.Background(), g, Node{0, 0}, Node{3, 3}, Manhattan)
	defer stepper.Close()

	first, err := stepper.Step()
	require.NoError(t, err)
	assert.Equal(t, 1, first.StepIndex)
	assert.Equal(t, Node{0, 0}, first.Current)
	assert.True(t, first.Closed[Node{0, 0}])
	assert.True(t, first.Open[Node{0, 1}])
	assert.True(t, first.Open[Node{1, 0}])
	assert.Equal(t, Node{0, 0}, first.CameFrom[Node{1, 0}])
	assert.False(t, first.Done)

	// snapshots are copies
	first.Closed[Node{3, 3}] = true
	second, err := stepper.Step()
	require.NoError(t, err)
	assert.False(t, second.Closed[Node{3, 3}])
	assert.Equal(t, 2, second.StepIndex)
}

func TestStepper_Unreachable(t *testing.T) {
	g := mustGrid(t, ".", "#", ".")
	stepper := NewStepper[Node](context.Background(), g, Node{0, 0}, Node{0, 2}, Manhattan)
	defer stepper.Close()

	final, err := stepper.Run()
	require.NoError(t, err)
	assert.True(t, final.Done)
	assert.False(t, final.Found)
	assert.Empty(t, final.Path)
	assert.True(t, stepper.Done())

	again, err := stepper.Step()
	require.NoError(t, err)
	assert.True(t, again.Done)
	assert.Equal(t, final.StepIndex, again.StepIndex)
}

func TestStepper_Close(t *testing.T) {
	g := freeGrid(t, 5, 5)
	stepper := NewStepper[Node](context.Background(), g, Node{0, 0}, Node{4, 4}, Manhattan)
	stepper.Close()

	snap, err := stepper.Step()
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, snap.Done)
}
