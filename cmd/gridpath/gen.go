package main

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
	"github.com/pdrpinto/gridpath/internal/gridfile"
	"github.com/pdrpinto/gridpath/internal/gridgen"
)

func (a *app) genCmd() *cobra.Command {
	var (
		outPath  string
		style    string
		clusters int
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a random grid as YAML",
		Long: `Generate a random grid and write it as a YAML grid document, with a
random free start and end suggested for find and tui.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := a.genParams()
			if cmd.Flags().Changed("style") {
				params.Style = gridgen.Style(style)
			}
			params.Clusters = clusters
			if params.Seed == 0 {
				params.Seed = rand.Uint64()
			}

			grid, err := gridgen.Generate(params)
			if err != nil {
				return err
			}
			doc := gridfile.FromGrid(grid)
			if start, end, ok := pickEndpoints(grid, params.Seed); ok {
				doc.Start, doc.End = &start, &end
			}

			logger := ctxlog.FromContext(cmd.Context())
			logger.Debug("grid generated", "width", grid.Width(), "height", grid.Height(), "blocked", grid.BlockedCount(), "seed", params.Seed)
			if outPath == "" {
				return gridfile.Encode(cmd.OutOrStdout(), doc)
			}
			if err := gridfile.Save(outPath, doc); err != nil {
				return err
			}
			logger.Info("grid written", "path", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&style, "style", string(gridgen.StyleScatter), "obstacle layout: scatter or clusters")
	cmd.Flags().IntVar(&clusters, "clusters", 0, "number of wall clusters for --style clusters")
	return cmd
}

// pickEndpoints chooses two distinct free cells, or reports false when the
// grid has fewer than two.
func pickEndpoints(g *gridpath.Grid, seed uint64) (gridpath.Node, gridpath.Node, bool) {
	if g.Width()*g.Height()-g.BlockedCount() < 2 {
		return gridpath.Node{}, gridpath.Node{}, false
	}
	r := rand.New(rand.NewPCG(seed, seed>>1))
	start, _ := gridgen.FreeCell(g, r)
	for {
		end, _ := gridgen.FreeCell(g, r)
		if end != start {
			return start, end, true
		}
	}
}
