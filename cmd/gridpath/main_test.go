package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/gridfile"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenThenFind(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grid.yaml")
	_, err := run(t, "gen", "--width", "5", "--height", "4", "--density", "0", "--seed", "7", "-o", path)
	require.NoError(t, err)

	doc, grid, err := gridfile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, grid.Width())
	assert.Equal(t, 4, grid.Height())
	assert.Zero(t, grid.BlockedCount())
	require.NotNil(t, doc.Start)
	require.NotNil(t, doc.End)
	assert.NotEqual(t, *doc.Start, *doc.End)

	out, err := run(t, "find", path, "--from", "0,0", "--to", "4,3", "--draw")
	require.NoError(t, err)
	assert.Contains(t, out, "length: 8\n")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2+4)
	assert.Equal(t, byte('S'), lines[2][0])
	assert.Equal(t, byte('E'), lines[5][4])
}

func TestGen_SameSeedSameOutput(t *testing.T) {
	args := []string{"gen", "--width", "12", "--height", "6", "--seed", "99", "--style", "clusters"}
	a, err := run(t, args...)
	require.NoError(t, err)
	b, err := run(t, args...)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	doc, err := gridfile.Decode(strings.NewReader(a))
	require.NoError(t, err)
	assert.Equal(t, 12, doc.Width)
}

func TestGen_RejectsBadSize(t *testing.T) {
	_, err := run(t, "gen", "--width", "1000")
	assert.ErrorIs(t, err, gridpath.ErrInvalidDimensions)
}

const walled = `width: 3
height: 3
rows:
  - "..."
  - "##."
  - "..."
start: {x: 0, y: 0}
end: {x: 0, y: 2}
`

func TestFind_DocumentEndpoints(t *testing.T) {
	path := writeFile(t, "grid.yaml", walled)
	out, err := run(t, "find", path)
	require.NoError(t, err)
	assert.Equal(t, "path: (0,0),(1,0),(2,0),(2,1),(2,2),(1,2),(0,2)\nlength: 7\n", out)
}

func TestFind_NoPath(t *testing.T) {
	path := writeFile(t, "grid.yaml", "width: 3\nheight: 1\nrows: [\".#.\"]\n")
	out, err := run(t, "find", path, "--from", "0,0", "--to", "2,0")
	require.NoError(t, err)
	assert.Equal(t, "no path from (0,0) to (2,0)\n", out)
}

func TestFind_Errors(t *testing.T) {
	path := writeFile(t, "grid.yaml", walled)
	bare := writeFile(t, "bare.yaml", "width: 2\nheight: 1\nrows: [\"..\"]\n")

	_, err := run(t, "find", path, "--to", "0,1")
	assert.ErrorIs(t, err, gridpath.ErrCellBlocked)

	_, err = run(t, "find", path, "--to", "5,5")
	assert.ErrorIs(t, err, gridpath.ErrOutOfRange)

	_, err = run(t, "find", path, "--to", "0,0")
	assert.ErrorIs(t, err, gridpath.ErrSameEndpoints)

	_, err = run(t, "find", bare, "--from", "0,0")
	assert.ErrorContains(t, err, "--to is required")

	_, err = run(t, "find", path, "--from", "zero")
	assert.Error(t, err)

	_, err = run(t, "find", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigFileAndEnv(t *testing.T) {
	cfg := writeFile(t, "gridpath.yaml", "grid:\n  width: 3\n  height: 2\n  density: 0\n  seed: 5\n")

	out, err := run(t, "--config", cfg, "gen")
	require.NoError(t, err)
	doc, err := gridfile.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Width)
	assert.Equal(t, 2, doc.Height)

	t.Setenv("GRIDPATH_GRID_WIDTH", "6")
	out, err = run(t, "--config", cfg, "gen")
	require.NoError(t, err)
	doc, err = gridfile.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 6, doc.Width)

	out, err = run(t, "--config", cfg, "gen", "--width", "4")
	require.NoError(t, err)
	doc, err = gridfile.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, doc.Width)
}

func TestMissingExplicitConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "gen")
	assert.ErrorContains(t, err, "read config")
}

func TestCheckEndpoints_JoinsErrors(t *testing.T) {
	g, err := gridpath.ParseGrid(".#")
	require.NoError(t, err)
	err = checkEndpoints(g, gridpath.Node{X: 1, Y: 0}, gridpath.Node{X: 9, Y: 0})
	assert.ErrorIs(t, err, gridpath.ErrCellBlocked)
	assert.ErrorIs(t, err, gridpath.ErrOutOfRange)
	assert.ErrorIs(t, err, gridpath.ErrInvalidSelection)
}
