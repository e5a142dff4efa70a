// Package tui is the terminal front end: a cursor (or the mouse) moves over
// the grid, clicks pick endpoints, and in live mode every hovered cell is a
// transient end whose search supersedes the previous one.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
	"github.com/pdrpinto/gridpath/internal/gridfile"
	"github.com/pdrpinto/gridpath/internal/gridgen"
)

// Config wires a Model.
type Config struct {
	Grid *gridpath.Grid
	Mode gridpath.Mode
	// Generate is reused, with a fresh seed, when the grid is regenerated.
	Generate gridgen.Params
	// Watcher, if set, feeds reloaded grids into the model.
	Watcher *gridfile.Watcher
	Workers int
	Logger  *slog.Logger
}

type completionMsg struct{ completion gridpath.Completion }

type gridMsg struct{ grid *gridpath.Grid }

type watchErrMsg struct{ err error }

// Model is the bubbletea model.
type Model struct {
	sel         *gridpath.Selection
	ctrl        *gridpath.Controller
	completions chan gridpath.Completion
	watcher     *gridfile.Watcher
	generate    gridgen.Params
	logger      *slog.Logger

	keys   keyMap
	help   help.Model
	cursor gridpath.Node
	path   gridpath.Path
	status string
}

// New builds a model and its controller. Call Close once the program exits.
func New(ctx context.Context, cfg Config) Model {
	logger := cfg.Logger
	if logger == nil {
		logger = ctxlog.Discard()
	}
	completions := make(chan gridpath.Completion, 1)
	ctrl := gridpath.NewController(ctx,
		gridpath.WithLogger(logger),
		gridpath.WithHandler(deliver(completions)),
		gridpath.WithSearchWorkers(cfg.Workers),
	)
	sel := gridpath.NewSelection(cfg.Grid, ctrl, logger)
	sel.SetMode(cfg.Mode)

	return Model{
		sel:         sel,
		ctrl:        ctrl,
		completions: completions,
		watcher:     cfg.Watcher,
		generate:    cfg.Generate,
		logger:      logger,
		keys:        newKeyMap(),
		help:        help.New(),
		status:      "pick a start cell",
	}
}

// deliver hands completions to the UI without ever blocking the search
// goroutine. If the UI is behind, the older completion is dropped.
func deliver(ch chan gridpath.Completion) func(gridpath.Completion) {
	return func(c gridpath.Completion) {
		for {
			select {
			case ch <- c:
				return
			default:
			}
			select {
			case <-ch:
			default:
			}
		}
	}
}

// Close stops the controller and the watcher.
func (m Model) Close() {
	m.ctrl.Shutdown()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
}

func waitForCompletion(ch <-chan gridpath.Completion) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return completionMsg{completion: c}
	}
}

func waitForGrid(w *gridfile.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case u, ok := <-w.Updates:
			if !ok {
				return nil
			}
			return gridMsg{grid: u.Grid}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func (m Model) watchCmd() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	return waitForGrid(m.watcher)
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForCompletion(m.completions), m.watchCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case completionMsg:
		m = m.applyCompletion(msg.completion)
		return m, waitForCompletion(m.completions)

	case gridMsg:
		m = m.replaceGrid(msg.grid)
		m.status = "grid reloaded"
		return m, m.watchCmd()

	case watchErrMsg:
		m.logger.Warn("grid reload failed", "err", msg.err)
		m.status = "reload failed: " + msg.err.Error()
		return m, m.watchCmd()

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		return m.moveCursor(0, -1), nil
	case key.Matches(msg, m.keys.Down):
		return m.moveCursor(0, 1), nil
	case key.Matches(msg, m.keys.Left):
		return m.moveCursor(-1, 0), nil
	case key.Matches(msg, m.keys.Right):
		return m.moveCursor(1, 0), nil
	case key.Matches(msg, m.keys.Select):
		return m.selectCell(m.cursor), nil
	case key.Matches(msg, m.keys.Mode):
		next := gridpath.ModeLive
		if m.sel.Mode() == gridpath.ModeLive {
			next = gridpath.ModeManual
		}
		m.sel.SetMode(next)
		m.path = nil
		m.status = "mode: " + next.String()
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		m.sel.Reset()
		m.path = nil
		m.status = "pick a start cell"
		return m, nil
	case key.Matches(msg, m.keys.Regenerate):
		return m.regenerate(), nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// gridTop is the number of screen rows above the grid.
const gridTop = 1

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	cell := gridpath.Node{X: msg.X, Y: msg.Y - gridTop}
	if !m.sel.Grid().InBounds(cell.X, cell.Y) {
		return m
	}
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.cursor = cell
		return m.selectCell(cell)
	case msg.Action == tea.MouseActionMotion:
		m.cursor = cell
		return m.hover(cell)
	}
	return m
}

func (m Model) moveCursor(dx, dy int) Model {
	next := gridpath.Node{X: m.cursor.X + dx, Y: m.cursor.Y + dy}
	if !m.sel.Grid().InBounds(next.X, next.Y) {
		return m
	}
	m.cursor = next
	return m.hover(next)
}

func (m Model) hover(cell gridpath.Node) Model {
	submitted, err := m.sel.HoverCell(cell)
	if err != nil {
		m.status = err.Error()
		return m
	}
	if submitted {
		m.status = "searching to " + cell.String()
	}
	return m
}

func (m Model) selectCell(cell gridpath.Node) Model {
	before := m.sel.State()
	submitted, err := m.sel.SelectCell(cell)
	switch {
	case errors.Is(err, gridpath.ErrInvalidSelection):
		m.status = err.Error()
		return m
	case err != nil:
		m.logger.Error("select failed", "cell", cell, "err", err)
		m.status = err.Error()
		return m
	}

	if submitted {
		m.status = "searching…"
		return m
	}
	if start, ok := m.sel.Start(); ok && before != m.sel.State() {
		m.path = nil
		m.status = "start " + start.String() + ", pick an end"
		if m.sel.Mode() == gridpath.ModeLive {
			m.status = "start " + start.String() + ", move to explore"
		}
	}
	return m
}

func (m Model) applyCompletion(c gridpath.Completion) Model {
	req, ok := m.sel.Request()
	if !ok || c.ID != m.sel.LastRequestID() || c.Request != req {
		return m
	}
	if c.Path.Empty() {
		m.status = "no path to " + c.Request.End.String()
		// live mode keeps showing the last path that was found
		if m.sel.Mode() == gridpath.ModeManual {
			m.path = nil
		}
		return m
	}
	m.path = c.Path
	m.status = fmt.Sprintf("path length %d (%d expanded)", len(c.Path), c.ExpandedNodes)
	return m
}

func (m Model) regenerate() Model {
	params := m.generate
	params.Width = m.sel.Grid().Width()
	params.Height = m.sel.Grid().Height()
	params.Seed = 0
	params.Keep = nil
	if params.Density == 0 {
		params.Density = gridgen.DefaultDensity
	}
	grid, err := gridgen.Generate(params)
	if err != nil {
		m.status = err.Error()
		return m
	}
	m = m.replaceGrid(grid)
	m.status = "new grid"
	return m
}

func (m Model) replaceGrid(grid *gridpath.Grid) Model {
	m.sel.SetGrid(grid)
	m.path = nil
	m.cursor.X = min(m.cursor.X, grid.Width()-1)
	m.cursor.Y = min(m.cursor.Y, grid.Height()-1)
	return m
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	m := New(ctx, cfg)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
