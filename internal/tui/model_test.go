package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/gridgen"
)

func newModel(t *testing.T, mode gridpath.Mode, rows ...string) Model {
	t.Helper()
	g, err := gridpath.ParseGrid(rows...)
	require.NoError(t, err)
	m := New(context.Background(), Config{Grid: g, Mode: mode, Generate: gridgen.Params{Density: 0.3}})
	t.Cleanup(m.Close)
	return m
}

func apply(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok, "Update returned %T, want Model", next)
	return got
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = apply(t, m, msg)
	}
	return m
}

// await feeds the next completion from the controller into the model.
func await(t *testing.T, m Model) Model {
	t.Helper()
	select {
	case c := <-m.completions:
		return apply(t, m, completionMsg{completion: c})
	case <-time.After(5 * time.Second):
		t.Fatal("no completion delivered")
		return m
	}
}

func TestManualFlowShowsPathLength(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "...", "...", "...")

	m = press(t, m, "enter")
	start, ok := m.sel.Start()
	require.True(t, ok)
	assert.Equal(t, gridpath.Node{X: 0, Y: 0}, start)

	m = press(t, m, "l", "l", "j", "j", "enter")
	assert.Equal(t, gridpath.StateStartAndEndChosen, m.sel.State())

	m = await(t, m)
	want := gridpath.Path{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: 2}, {X: 1, Y: 2}, {X: 2, Y: 2}}
	assert.True(t, want.Equal(m.path), "got %v", m.path)
	assert.Contains(t, m.View(), "path length 5")
}

func TestManualNoPath(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, ".#.")

	m = press(t, m, "enter", "l", "l", "enter")
	m = await(t, m)
	assert.Nil(t, m.path)
	assert.Contains(t, m.status, "no path")
}

func TestSelectBlockedCellReportsError(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, ".#.")

	m = press(t, m, "l", "enter")
	assert.Equal(t, gridpath.StateEmpty, m.sel.State())
	assert.Contains(t, m.status, "blocked")
}

func TestLiveModeKeepsPathWhenUnreachable(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "..#.")

	m = press(t, m, "m")
	require.Equal(t, gridpath.ModeLive, m.sel.Mode())

	m = press(t, m, "enter", "l")
	m = await(t, m)
	require.Len(t, m.path, 2)

	// onto the wall: cancels, nothing submitted
	id := m.sel.LastRequestID()
	m = press(t, m, "l")
	assert.Equal(t, id, m.sel.LastRequestID())

	m = press(t, m, "l")
	m = await(t, m)
	assert.Len(t, m.path, 2)
	assert.Contains(t, m.status, "no path")
}

func TestStaleCompletionIgnored(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "...")
	m = press(t, m, "enter", "l", "l", "enter")
	m = await(t, m)
	require.Len(t, m.path, 3)

	stale := gridpath.Completion{ID: m.sel.LastRequestID() + 10, Request: gridpath.Request{Grid: m.sel.Grid()}}
	m = apply(t, m, completionMsg{completion: stale})
	assert.Len(t, m.path, 3)
}

func TestResetAndModeToggleClearPath(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "...")
	m = press(t, m, "enter", "l", "enter")
	m = await(t, m)
	require.NotEmpty(t, m.path)

	m = press(t, m, "r")
	assert.Empty(t, m.path)
	assert.Equal(t, gridpath.StateEmpty, m.sel.State())

	m = press(t, m, "enter", "l", "enter")
	m = await(t, m)
	m = press(t, m, "m")
	assert.Empty(t, m.path)
	_, hasStart := m.sel.Start()
	assert.True(t, hasStart)
}

func TestRegenerateKeepsSize(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "....", "....")
	m = press(t, m, "enter")

	m = press(t, m, "g")
	assert.Equal(t, 4, m.sel.Grid().Width())
	assert.Equal(t, 2, m.sel.Grid().Height())
	assert.Equal(t, gridpath.StateEmpty, m.sel.State())
}

func TestReloadedGridResetsSelection(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "....", "....")
	m = press(t, m, "l", "l", "l", "j", "enter")

	g, err := gridpath.ParseGrid("..", "#.")
	require.NoError(t, err)
	next, cmd := m.Update(gridMsg{grid: g})
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Same(t, g, m.sel.Grid())
	assert.Equal(t, gridpath.StateEmpty, m.sel.State())
	assert.Equal(t, gridpath.Node{X: 1, Y: 1}, m.cursor)
}

func TestMouseSelectsAndHovers(t *testing.T) {
	m := newModel(t, gridpath.ModeLive, "...", "...")

	m = apply(t, m, tea.MouseMsg{X: 0, Y: gridTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	start, ok := m.sel.Start()
	require.True(t, ok)
	assert.Equal(t, gridpath.Node{X: 0, Y: 0}, start)

	m = apply(t, m, tea.MouseMsg{X: 2, Y: gridTop + 1, Action: tea.MouseActionMotion})
	m = await(t, m)
	assert.Len(t, m.path, 4)

	// off the grid is ignored
	m = apply(t, m, tea.MouseMsg{X: 10, Y: 0, Action: tea.MouseActionMotion})
	assert.Equal(t, gridpath.Node{X: 2, Y: 1}, m.cursor)
}

func TestViewMarksEndpoints(t *testing.T) {
	m := newModel(t, gridpath.ModeManual, "...", ".#.")
	m = press(t, m, "enter", "l", "l", "j", "enter")
	m = await(t, m)

	lines := strings.Split(m.View(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, lines[0], "manual")
	assert.Contains(t, lines[1], "S")
	assert.Contains(t, lines[2], "█")
	assert.Contains(t, lines[2], "E")
}

func TestDeliverDropsOlder(t *testing.T) {
	ch := make(chan gridpath.Completion, 1)
	send := deliver(ch)
	send(gridpath.Completion{ID: 1})
	send(gridpath.Completion{ID: 2})
	assert.Equal(t, uint64(2), (<-ch).ID)
}
