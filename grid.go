package gridpath

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// MaxDimension bounds each side of a grid.
const MaxDimension = 999

// Node is a grid coordinate. Search bookkeeping (g, h, f) lives on the
// frontier item, so two Nodes are equal exactly when their coordinates are.
type Node struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (n Node) String() string { return fmt.Sprintf("(%d,%d)", n.X, n.Y) }

// ParseNode reads "x,y", with or without surrounding parentheses.
func ParseNode(s string) (Node, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "("), ")")
	xs, ys, ok := strings.Cut(trimmed, ",")
	if !ok {
		return Node{}, fmt.Errorf("node %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Node{}, fmt.Errorf("node %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Node{}, fmt.Errorf("node %q: %w", s, err)
	}
	return Node{X: x, Y: y}, nil
}

// Right, down, left, up. The order fixes which of several equal paths wins.
var directions = [4]Node{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}

// Manhattan is the search heuristic, |dx| + |dy|.
func Manhattan(from, to Node) float64 {
	return float64(abs(from.X-to.X) + abs(from.Y-to.Y))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Grid is an immutable occupancy snapshot. Build one with a GridBuilder or
// ParseGrid; nothing mutates a Grid afterwards, so a search may read it
// while the producer moves on to the next one.
type Grid struct {
	width  int
	height int
	cells  []bool // row-major, true = blocked
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether (x, y) lies in [0,W)×[0,H).
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.width && y >= 0 && y < g.height
}

// Blocked reports whether (x, y) is blocked. Out-of-range coordinates are
// blocked.
func (g *Grid) Blocked(x, y int) bool {
	if !g.InBounds(x, y) {
		return true
	}
	return g.cells[y*g.width+x]
}

// BlockedCount returns the number of blocked cells.
func (g *Grid) BlockedCount() int {
	n := 0
	for _, blocked := range g.cells {
		if blocked {
			n++
		}
	}
	return n
}

// Neighbors implements Graph over the free 4-neighbourhood of node, each at
// unit cost.
func (g *Grid) Neighbors(node Node) []Neighbor[Node] {
	out := make([]Neighbor[Node], 0, len(directions))
	for _, d := range directions {
		next := Node{X: node.X + d.X, Y: node.Y + d.Y}
		if g.Blocked(next.X, next.Y) {
			continue
		}
		out = append(out, Neighbor[Node]{ID: next, Cost: 1})
	}
	return out
}

// Search finds a shortest path from start to end. An unreachable end yields
// an empty Path and a nil error.
func (g *Grid) Search(ctx context.Context, start, end Node, options ...Option) (Path, error) {
	result, err := Search[Node](ctx, g, start, end, Manhattan, options...)
	if err != nil {
		return nil, err
	}
	return Path(result.Path), nil
}

// Rows renders the grid with '#' for blocked and '.' for free cells, one
// string per y.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	var sb strings.Builder
	for y := 0; y < g.height; y++ {
		sb.Reset()
		for x := 0; x < g.width; x++ {
			if g.cells[y*g.width+x] {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

func (g *Grid) String() string { return strings.Join(g.Rows(), "\n") }

// GridBuilder is the mutable side used by grid producers.
type GridBuilder struct {
	width  int
	height int
	cells  []bool
}

// NewGridBuilder returns an all-free builder of the given size.
func NewGridBuilder(width, height int) (*GridBuilder, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d (each side must be 1..%d)", ErrInvalidDimensions, width, height, MaxDimension)
	}
	return &GridBuilder{width: width, height: height, cells: make([]bool, width*height)}, nil
}

// Set marks (x, y) blocked or free. Out-of-range coordinates are ignored.
func (b *GridBuilder) Set(x, y int, blocked bool) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.cells[y*b.width+x] = blocked
}

func (b *GridBuilder) Block(x, y int) { b.Set(x, y, true) }

// Snapshot freezes a copy of the current cells. The builder stays usable.
func (b *GridBuilder) Snapshot() *Grid {
	cells := make([]bool, len(b.cells))
	copy(cells, b.cells)
	return &Grid{width: b.width, height: b.height, cells: cells}
}

// ParseGrid builds a grid from rows of '#' (blocked) and '.' (free). Every
// row must have the same length.
func ParseGrid(rows ...string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimensions)
	}
	builder, err := NewGridBuilder(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != builder.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDimensions, y, len(row), builder.width)
		}
		for x, c := range row {
			switch c {
			case '#':
				builder.Block(x, y)
			case '.':
			default:
				return nil, fmt.Errorf("grid row %d column %d: unexpected %q", y, x, c)
			}
		}
	}
	return builder.Snapshot(), nil
}
