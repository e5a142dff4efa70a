package gridpath

import (
	"context"
	"maps"

	"github.com/pdrpinto/gridpath/internal"
)

// StepSnapshot exposes the per-iteration state of the search
type StepSnapshot[NodeType comparable] struct {
	Current   NodeType
	Open      map[NodeType]bool
	Closed    map[NodeType]bool
	CameFrom  map[NodeType]NodeType
	Done      bool
	Found     bool
	Path      []NodeType
	StepIndex int
}

// Stepper runs the same search as Search but one expansion per Step, so a
// front end can draw the frontier as it grows. A Stepper is not safe for
// concurrent use.
type Stepper[NodeType comparable] struct {
	ctx    context.Context
	cancel context.CancelFunc
	start  NodeType
	state  *searchState[NodeType]

	stepCount int
	done      bool
	found     bool
	path      []NodeType
}

// NewStepper creates a new stepper. Close releases any worker goroutines.
func NewStepper[NodeType comparable](
	parent context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) *Stepper[NodeType] {
	ctx, cancel := context.WithCancel(parent)
	return &Stepper[NodeType]{
		ctx:    ctx,
		cancel: cancel,
		start:  startNode,
		state:  newSearchState(ctx, graph, startNode, goalNode, heuristic, applyOptions(options)),
	}
}

// Close stops the workers
func (s *Stepper[NodeType]) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Done reports whether the search has finished.
func (s *Stepper[NodeType]) Done() bool { return s.done }

// Step advances the search by one node expansion and returns a snapshot.
// Once done, further calls return the final snapshot again.
func (s *Stepper[NodeType]) Step() (StepSnapshot[NodeType], error) {
	if s.done {
		return s.snapshot(s.state.goal), nil
	}
	if err := s.ctx.Err(); err != nil {
		s.done = true
		return StepSnapshot[NodeType]{Done: true, StepIndex: s.stepCount}, err
	}

	currentItem, ok := s.state.pop()
	if !ok {
		s.done = true
		var zero NodeType
		return s.snapshot(zero), nil
	}
	s.stepCount++

	if currentItem.Node == s.state.goal {
		s.done = true
		s.found = true
		s.path = internal.ReconstructPath(s.state.cameFrom, currentItem.Node, s.start)
		return s.snapshot(currentItem.Node), nil
	}

	if err := s.state.expand(s.ctx, currentItem); err != nil {
		s.done = true
		return StepSnapshot[NodeType]{Done: true, StepIndex: s.stepCount}, err
	}
	return s.snapshot(currentItem.Node), nil
}

// Run steps until the search is done and returns the last snapshot.
func (s *Stepper[NodeType]) Run() (StepSnapshot[NodeType], error) {
	for {
		snapshot, err := s.Step()
		if err != nil || snapshot.Done {
			return snapshot, err
		}
	}
}

func (s *Stepper[NodeType]) snapshot(current NodeType) StepSnapshot[NodeType] {
	open := make(map[NodeType]bool, len(s.state.openSetMap))
	for node := range s.state.openSetMap {
		open[node] = true
	}
	var path []NodeType
	if s.found {
		path = append([]NodeType(nil), s.path...)
	}
	return StepSnapshot[NodeType]{
		Current:   current,
		Open:      open,
		Closed:    maps.Clone(s.state.closedSet),
		CameFrom:  maps.Clone(s.state.cameFrom),
		Done:      s.done,
		Found:     s.found,
		Path:      path,
		StepIndex: s.stepCount,
	}
}
