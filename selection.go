package gridpath

import (
	"fmt"
	"log/slog"

	"github.com/pdrpinto/gridpath/internal/ctxlog"
)

// Mode selects how end cells are chosen.
type Mode int

const (
	// ModeManual: click a start, click an end, one search per pair.
	ModeManual Mode = iota
	// ModeLive: click a start, then every hovered cell is a transient end.
	ModeLive
)

func (m Mode) String() string {
	if m == ModeLive {
		return "live"
	}
	return "manual"
}

// ParseMode accepts "manual" or "live".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "manual", "":
		return ModeManual, nil
	case "live", "animated":
		return ModeLive, nil
	}
	return ModeManual, fmt.Errorf("unknown mode %q", s)
}

// SelectionState is derived from which endpoints are set.
type SelectionState int

const (
	StateEmpty SelectionState = iota
	StateStartChosen
	StateStartAndEndChosen
)

func (s SelectionState) String() string {
	switch s {
	case StateStartChosen:
		return "start-chosen"
	case StateStartAndEndChosen:
		return "start-and-end-chosen"
	default:
		return "empty"
	}
}

// Searcher is what a Selection triggers. Controller implements it.
type Searcher interface {
	Submit(req Request) (uint64, error)
	Cancel()
}

// Selection tracks the start and end cells and submits a search whenever
// the pair changes. It is meant to be driven from a single input goroutine
// and is not safe for concurrent use.
type Selection struct {
	searcher Searcher
	logger   *slog.Logger
	grid     *Grid
	mode     Mode

	start    Node
	hasStart bool
	end      Node
	hasEnd   bool
	hovered  Node
	hasHover bool

	lastID uint64
}

// NewSelection starts empty in manual mode. A nil logger discards.
func NewSelection(grid *Grid, searcher Searcher, logger *slog.Logger) *Selection {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Selection{searcher: searcher, logger: logger, grid: grid}
}

func (s *Selection) Grid() *Grid { return s.grid }
func (s *Selection) Mode() Mode  { return s.mode }

// Start returns the start cell, if chosen.
func (s *Selection) Start() (Node, bool) { return s.start, s.hasStart }

// End returns the end cell. In live mode this is the last hovered cell that
// produced a search.
func (s *Selection) End() (Node, bool) { return s.end, s.hasEnd }

// LastRequestID is the id returned by the most recent submit, 0 if none.
func (s *Selection) LastRequestID() uint64 { return s.lastID }

func (s *Selection) State() SelectionState {
	switch {
	case !s.hasStart:
		return StateEmpty
	case s.hasEnd && s.mode == ModeManual:
		return StateStartAndEndChosen
	default:
		return StateStartChosen
	}
}

func (s *Selection) checkCell(c Node) error {
	if !s.grid.InBounds(c.X, c.Y) {
		return fmt.Errorf("%w: %v", ErrOutOfRange, c)
	}
	if s.grid.Blocked(c.X, c.Y) {
		return fmt.Errorf("%w: %v", ErrCellBlocked, c)
	}
	return nil
}

// SelectCell handles a click on c. It reports whether a search was
// submitted. Rejected clicks return an error wrapping ErrInvalidSelection
// and change nothing.
func (s *Selection) SelectCell(c Node) (bool, error) {
	if err := s.checkCell(c); err != nil {
		return false, err
	}

	if s.mode == ModeLive {
		if s.hasStart {
			// live mode keeps its start until Reset
			return false, nil
		}
		s.start, s.hasStart = c, true
		s.logger.Debug("start selected", "cell", c, "mode", s.mode)
		return false, nil
	}

	if s.State() == StateStartAndEndChosen {
		s.clear()
	}
	if !s.hasStart {
		s.start, s.hasStart = c, true
		s.logger.Debug("start selected", "cell", c, "mode", s.mode)
		return false, nil
	}
	if c == s.start {
		return false, fmt.Errorf("%w: %v", ErrSameEndpoints, c)
	}

	s.end, s.hasEnd = c, true
	s.logger.Debug("end selected", "cell", c, "mode", s.mode)
	return s.submit()
}

// HoverCell handles pointer movement over c. Outside live mode, or before a
// start is chosen, it does nothing. Moving onto a new free cell submits a
// search that supersedes the previous one; moving onto the start or a
// blocked cell cancels the in-flight search.
func (s *Selection) HoverCell(c Node) (bool, error) {
	if s.mode != ModeLive || !s.hasStart {
		return false, nil
	}
	if !s.grid.InBounds(c.X, c.Y) {
		return false, fmt.Errorf("%w: %v", ErrOutOfRange, c)
	}
	if s.hasHover && c == s.hovered {
		return false, nil
	}
	s.hovered, s.hasHover = c, true

	if c == s.start || s.grid.Blocked(c.X, c.Y) {
		s.hasEnd = false
		s.searcher.Cancel()
		return false, nil
	}

	s.end, s.hasEnd = c, true
	return s.submit()
}

// Reset clears both endpoints and cancels any in-flight search.
func (s *Selection) Reset() {
	s.searcher.Cancel()
	s.clear()
}

// SetMode switches modes. The in-flight search is cancelled and the end
// and hover are cleared; the start is kept.
func (s *Selection) SetMode(mode Mode) {
	if mode == s.mode {
		return
	}
	s.searcher.Cancel()
	s.hasEnd = false
	s.hasHover = false
	s.mode = mode
	s.logger.Debug("mode changed", "mode", mode)
}

// SetGrid swaps in a new snapshot, as after regeneration, and resets.
func (s *Selection) SetGrid(grid *Grid) {
	s.grid = grid
	s.Reset()
}

// Request returns the current start/end pair as a search request.
func (s *Selection) Request() (Request, bool) {
	if !s.hasStart || !s.hasEnd {
		return Request{}, false
	}
	return Request{Grid: s.grid, Start: s.start, End: s.end}, true
}

func (s *Selection) submit() (bool, error) {
	req, _ := s.Request()
	id, err := s.searcher.Submit(req)
	if err != nil {
		return false, err
	}
	s.lastID = id
	return true, nil
}

func (s *Selection) clear() {
	s.hasStart = false
	s.hasEnd = false
	s.hasHover = false
}
