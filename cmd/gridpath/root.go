package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
	"github.com/pdrpinto/gridpath/internal/gridgen"
)

// app carries what every subcommand needs once config has been read.
type app struct {
	v      *viper.Viper
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	var cfgFile string

	root := &cobra.Command{
		Use:   "gridpath",
		Short: "Shortest paths on occupancy grids",
		Long: `gridpath finds shortest 4-connected paths on grids of free and blocked
cells with A*. Grids come from YAML files or are generated at random; paths
can be found from the command line, explored in a terminal UI, or served
over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cfgFile); err != nil {
				return err
			}
			a.logger = ctxlog.New(a.v.GetString("log.level"), a.v.GetString("log.format"), a.errOut)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(ctxlog.WithLogger(ctx, a.logger))
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./gridpath.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("log-format", "text", "log format: text or json")
	pf.Int("width", 40, "grid width for generated grids")
	pf.Int("height", 20, "grid height for generated grids")
	pf.Float64("density", gridgen.DefaultDensity, "share of blocked cells for generated grids")
	pf.Uint64("seed", 0, "random seed for generated grids (0 picks one)")
	pf.Int("workers", 0, "neighbour scoring workers per search (0 scores inline)")

	for key, flag := range map[string]string{
		"log.level":      "log-level",
		"log.format":     "log-format",
		"grid.width":     "width",
		"grid.height":    "height",
		"grid.density":   "density",
		"grid.seed":      "seed",
		"search.workers": "workers",
	} {
		_ = a.v.BindPFlag(key, pf.Lookup(flag))
	}
	a.v.SetDefault("grid.style", string(gridgen.StyleScatter))
	a.v.SetDefault("mode", gridpath.ModeManual.String())
	a.v.SetDefault("server.addr", ":8080")

	root.AddCommand(a.genCmd(), a.findCmd(), a.tuiCmd(), a.serveCmd())
	return root
}

// loadConfig reads gridpath.yaml (or cfgFile) and GRIDPATH_* variables. A
// missing default config file is fine; a missing explicit one is not.
func (a *app) loadConfig(cfgFile string) error {
	a.v.SetEnvPrefix("GRIDPATH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.SetConfigName("gridpath")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func (a *app) genParams() gridgen.Params {
	return gridgen.Params{
		Width:   a.v.GetInt("grid.width"),
		Height:  a.v.GetInt("grid.height"),
		Density: a.v.GetFloat64("grid.density"),
		Seed:    a.v.GetUint64("grid.seed"),
		Style:   gridgen.Style(a.v.GetString("grid.style")),
	}
}
