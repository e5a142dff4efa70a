package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
	"github.com/pdrpinto/gridpath/internal/gridfile"
)

func (a *app) findCmd() *cobra.Command {
	var (
		from string
		to   string
		draw bool
	)
	cmd := &cobra.Command{
		Use:   "find GRID_FILE",
		Short: "Find a shortest path on a grid file",
		Long: `Find a shortest path between two free cells of a YAML grid document.
--from and --to default to the start and end stored in the document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, grid, err := gridfile.Load(args[0])
			if err != nil {
				return err
			}
			start, err := endpoint("--from", from, doc.Start)
			if err != nil {
				return err
			}
			end, err := endpoint("--to", to, doc.End)
			if err != nil {
				return err
			}
			if err := checkEndpoints(grid, start, end); err != nil {
				return err
			}

			ctx := cmd.Context()
			ctrl := gridpath.NewController(ctx,
				gridpath.WithLogger(ctxlog.FromContext(ctx)),
				gridpath.WithSearchWorkers(a.v.GetInt("search.workers")),
			)
			defer ctrl.Shutdown()

			path, err := ctrl.Find(ctx, gridpath.Request{Grid: grid, Start: start, End: end})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path.Empty() {
				fmt.Fprintf(out, "no path from %v to %v\n", start, end)
				return nil
			}
			fmt.Fprintf(out, "path: %v\nlength: %d\n", path, len(path))
			if draw {
				drawPath(out, grid, path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "start cell as x,y")
	cmd.Flags().StringVar(&to, "to", "", "end cell as x,y")
	cmd.Flags().BoolVar(&draw, "draw", false, "print the grid with the path marked")
	return cmd
}

func endpoint(flag, value string, fallback *gridpath.Node) (gridpath.Node, error) {
	if value != "" {
		return gridpath.ParseNode(value)
	}
	if fallback == nil {
		return gridpath.Node{}, fmt.Errorf("%s is required: the grid file has no default", flag)
	}
	return *fallback, nil
}

func checkEndpoints(g *gridpath.Grid, start, end gridpath.Node) error {
	var errs []error
	for _, n := range []gridpath.Node{start, end} {
		switch {
		case !g.InBounds(n.X, n.Y):
			errs = append(errs, fmt.Errorf("%w: %v", gridpath.ErrOutOfRange, n))
		case g.Blocked(n.X, n.Y):
			errs = append(errs, fmt.Errorf("%w: %v", gridpath.ErrCellBlocked, n))
		}
	}
	if start == end {
		errs = append(errs, fmt.Errorf("%w: %v", gridpath.ErrSameEndpoints, start))
	}
	return errors.Join(errs...)
}

// drawPath prints g with 'S' and 'E' at the ends and '*' along the path.
func drawPath(w io.Writer, g *gridpath.Grid, path gridpath.Path) {
	rows := make([][]byte, g.Height())
	for y, row := range g.Rows() {
		rows[y] = []byte(row)
	}
	for _, n := range path {
		rows[n.Y][n.X] = '*'
	}
	first, last := path[0], path[len(path)-1]
	rows[first.Y][first.X] = 'S'
	rows[last.Y][last.X] = 'E'

	var b strings.Builder
	for _, row := range rows {
		b.Write(row)
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(w, b.String())
}
