// Package gridgen produces random occupancy grids.
package gridgen

import (
	"fmt"
	"math/rand/v2"

	"github.com/pdrpinto/gridpath"
)

// DefaultDensity is the chance that any one cell is blocked.
const DefaultDensity = 0.2

// Style picks the obstacle layout.
type Style string

const (
	// StyleScatter blocks each cell independently with probability Density.
	StyleScatter Style = "scatter"
	// StyleClusters grows blobs of wall along random walks.
	StyleClusters Style = "clusters"
)

// Params describes one generated grid. A zero Seed picks a random one.
type Params struct {
	Width    int
	Height   int
	Density  float64
	Seed     uint64
	Style    Style
	Clusters int
	Steps    int
	// Keep lists cells that must stay free, such as chosen endpoints.
	Keep []gridpath.Node
}

func (p Params) withDefaults() Params {
	if p.Style == "" {
		p.Style = StyleScatter
	}
	if p.Clusters <= 0 {
		p.Clusters = 8
	}
	if p.Steps <= 0 {
		p.Steps = 200
	}
	if p.Seed == 0 {
		p.Seed = rand.Uint64()
	}
	return p
}

// Generate builds a grid from p.
func Generate(p Params) (*gridpath.Grid, error) {
	p = p.withDefaults()
	if p.Density < 0 || p.Density > 1 {
		return nil, fmt.Errorf("density %v is outside [0,1]", p.Density)
	}
	builder, err := gridpath.NewGridBuilder(p.Width, p.Height)
	if err != nil {
		return nil, err
	}
	r := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))

	switch p.Style {
	case StyleScatter:
		for y := 0; y < p.Height; y++ {
			for x := 0; x < p.Width; x++ {
				builder.Set(x, y, r.Float64() < p.Density)
			}
		}
	case StyleClusters:
		moves := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
		for c := 0; c < p.Clusters; c++ {
			x, y := r.IntN(p.Width), r.IntN(p.Height)
			for s := 0; s < p.Steps; s++ {
				if r.Float64() < p.Density {
					builder.Block(x, y)
				}
				d := moves[r.IntN(4)]
				nx, ny := x+d[0], y+d[1]
				if nx >= 0 && nx < p.Width && ny >= 0 && ny < p.Height {
					x, y = nx, ny
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown grid style %q", p.Style)
	}

	for _, n := range p.Keep {
		builder.Set(n.X, n.Y, false)
	}
	return builder.Snapshot(), nil
}

// FreeCell returns a random free cell of g, or false if every cell is
// blocked.
func FreeCell(g *gridpath.Grid, r *rand.Rand) (gridpath.Node, bool) {
	free := g.Width()*g.Height() - g.BlockedCount()
	if free == 0 {
		return gridpath.Node{}, false
	}
	pick := r.IntN(free)
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.Blocked(x, y) {
				continue
			}
			if pick == 0 {
				return gridpath.Node{X: x, Y: y}, true
			}
			pick--
		}
	}
	return gridpath.Node{}, false
}
