package gridpath

import (
	"fmt"
	"strings"
)

// Path runs from start to goal, both inclusive. An empty Path means no path
// exists.
type Path []Node

func (p Path) Empty() bool { return len(p) == 0 }

// Steps is the number of moves, one less than the node count.
func (p Path) Steps() int {
	if len(p) == 0 {
		return 0
	}
	return len(p) - 1
}

// Equal compares node by node.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks that p starts at start, ends at end, and that every
// consecutive pair is 4-adjacent and every node is free on g.
func (p Path) Validate(g *Grid, start, end Node) error {
	if len(p) < 2 {
		return fmt.Errorf("%w: %d nodes", ErrInvalidPath, len(p))
	}
	if p[0] != start {
		return fmt.Errorf("%w: starts at %v, want %v", ErrInvalidPath, p[0], start)
	}
	if p[len(p)-1] != end {
		return fmt.Errorf("%w: ends at %v, want %v", ErrInvalidPath, p[len(p)-1], end)
	}
	for i, node := range p {
		if g.Blocked(node.X, node.Y) {
			return fmt.Errorf("%w: node %d %v is blocked", ErrInvalidPath, i, node)
		}
		if i > 0 && Manhattan(p[i-1], node) != 1 {
			return fmt.Errorf("%w: %v and %v are not adjacent", ErrInvalidPath, p[i-1], node)
		}
	}
	return nil
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, node := range p {
		parts[i] = node.String()
	}
	return strings.Join(parts, ",")
}
