package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
	"github.com/pdrpinto/gridpath/internal/gridfile"
	"github.com/pdrpinto/gridpath/internal/gridgen"
	"github.com/pdrpinto/gridpath/internal/tui"
)

func (a *app) tuiCmd() *cobra.Command {
	var (
		logFile string
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "tui [GRID_FILE]",
		Short: "Explore paths interactively in the terminal",
		Long: `Open a terminal UI over a grid file, or over a generated grid when no
file is given. In manual mode pick a start and an end; in live mode pick a
start and every cell under the cursor becomes the end.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := gridpath.ParseMode(a.v.GetString("mode"))
			if err != nil {
				return err
			}

			// the screen belongs to the UI, so logs go to a file or nowhere
			logger := ctxlog.Discard()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				logger = ctxlog.New(a.v.GetString("log.level"), a.v.GetString("log.format"), f)
			}

			cfg := tui.Config{
				Mode:     mode,
				Generate: a.genParams(),
				Workers:  a.v.GetInt("search.workers"),
				Logger:   logger,
			}
			if len(args) == 1 {
				_, grid, err := gridfile.Load(args[0])
				if err != nil {
					return err
				}
				cfg.Grid = grid
				if watch {
					w, err := gridfile.Watch(args[0])
					if err != nil {
						return err
					}
					cfg.Watcher = w
				}
			} else {
				grid, err := gridgen.Generate(cfg.Generate)
				if err != nil {
					return err
				}
				cfg.Grid = grid
			}

			logger.Info("tui starting", slog.String("mode", mode.String()), slog.Int("width", cfg.Grid.Width()), slog.Int("height", cfg.Grid.Height()))
			return tui.Run(ctxlog.WithLogger(cmd.Context(), logger), cfg)
		},
	}
	cmd.Flags().String("mode", "manual", "selection mode: manual or live")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload GRID_FILE when it changes")
	_ = a.v.BindPFlag("mode", cmd.Flags().Lookup("mode"))
	return cmd
}
