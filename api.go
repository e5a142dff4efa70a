package gridpath

import (
	"container/heap"
	"context"

	"github.com/pdrpinto/gridpath/internal"
)

// Graph is generic over node type N.
// N must be comparable so it can be used in maps. Neighbors must return
// neighbors in a stable order for results to be deterministic.
type Graph[NodeType comparable] interface {
	Neighbors(node NodeType) []Neighbor[NodeType]
}

// Neighbor represents a reachable node with a cost.
type Neighbor[NodeType comparable] struct {
	ID   NodeType
	Cost float64
}

// Heuristic returns the estimated cost from node a to node b
type Heuristic[NodeType comparable] func(from NodeType, to NodeType) float64

// Result contains the outcome of a search
type Result[NodeType comparable] struct {
	Path          []NodeType
	TotalCost     float64
	ExpandedNodes int
	Found         bool
}

// Options defines parameters for the search.
type Options struct {
	NumberOfWorkers int
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkers specifies how many worker goroutines should score neighbors.
// Zero (the default) scores them inline on the calling goroutine.
func WithWorkers(numberOfWorkers int) Option {
	return func(options *Options) {
		if numberOfWorkers < 0 {
			numberOfWorkers = 0
		}
		options.NumberOfWorkers = numberOfWorkers
	}
}

func applyOptions(options []Option) Options {
	searchOptions := Options{}
	for _, option := range options {
		option(&searchOptions)
	}
	return searchOptions
}

// Search executes the A* search algorithm.
//
// An unreachable goal is not an error: the Result comes back with Found set
// to false and a nil Path. The only error is ctx's, checked once before
// every frontier pop.
func Search[NodeType comparable](
	contextObject context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	options ...Option,
) (Result[NodeType], error) {
	searchOptions := applyOptions(options)

	contextObject, cancel := context.WithCancel(contextObject)
	defer cancel()

	state := newSearchState(contextObject, graph, startNode, goalNode, heuristic, searchOptions)

	// --- Orchestrator loop ---
	expandedNodes := 0
	for {
		if err := contextObject.Err(); err != nil {
			return Result[NodeType]{ExpandedNodes: expandedNodes}, err
		}

		currentItem, ok := state.pop()
		if !ok {
			return Result[NodeType]{ExpandedNodes: expandedNodes}, nil
		}
		expandedNodes++

		if currentItem.Node == goalNode {
			return Result[NodeType]{
				Path:          internal.ReconstructPath(state.cameFrom, currentItem.Node, startNode),
				TotalCost:     currentItem.GScore,
				ExpandedNodes: expandedNodes,
				Found:         true,
			}, nil
		}

		if err := state.expand(contextObject, currentItem); err != nil {
			return Result[NodeType]{ExpandedNodes: expandedNodes}, err
		}
	}
}

// searchState is the per-search arena shared by Search and Stepper. Nothing
// in it outlives one search.
type searchState[NodeType comparable] struct {
	graph     Graph[NodeType]
	goal      NodeType
	heuristic Heuristic[NodeType]
	scorer    scorer[NodeType]

	openSet    PriorityQueue[NodeType]
	openSetMap map[NodeType]*PriorityQueueItem[NodeType]
	closedSet  map[NodeType]bool
	cameFrom   map[NodeType]NodeType
	gScore     map[NodeType]float64
	sequence   int
}

func newSearchState[NodeType comparable](
	ctx context.Context,
	graph Graph[NodeType],
	startNode NodeType,
	goalNode NodeType,
	heuristic Heuristic[NodeType],
	searchOptions Options,
) *searchState[NodeType] {
	state := &searchState[NodeType]{
		graph:      graph,
		goal:       goalNode,
		heuristic:  heuristic,
		scorer:     inlineScorer[NodeType]{},
		openSet:    make(PriorityQueue[NodeType], 0),
		openSetMap: make(map[NodeType]*PriorityQueueItem[NodeType]),
		closedSet:  make(map[NodeType]bool),
		cameFrom:   make(map[NodeType]NodeType),
		gScore:     map[NodeType]float64{startNode: 0},
	}
	if searchOptions.NumberOfWorkers > 0 {
		state.scorer = startWorkerPool[NodeType](ctx, searchOptions.NumberOfWorkers)
	}

	heap.Init(&state.openSet)
	h := heuristic(startNode, goalNode)
	state.push(&PriorityQueueItem[NodeType]{Node: startNode, GScore: 0, HScore: h, FCost: h})
	return state
}

func (s *searchState[NodeType]) push(item *PriorityQueueItem[NodeType]) {
	item.Sequence = s.sequence
	s.sequence++
	heap.Push(&s.openSet, item)
	s.openSetMap[item.Node] = item
}

// pop removes the best open item and closes it. ok is false once the
// frontier is empty.
func (s *searchState[NodeType]) pop() (*PriorityQueueItem[NodeType], bool) {
	for s.openSet.Len() > 0 {
		item := heap.Pop(&s.openSet).(*PriorityQueueItem[NodeType])
		delete(s.openSetMap, item.Node)
		if s.closedSet[item.Node] {
			continue
		}
		s.closedSet[item.Node] = true
		return item, true
	}
	return nil, false
}

func (s *searchState[NodeType]) expand(ctx context.Context, currentItem *PriorityQueueItem[NodeType]) error {
	neighbors := s.graph.Neighbors(currentItem.Node)
	tasks := make([]ExpandTask[NodeType], 0, len(neighbors))
	for _, neighbor := range neighbors {
		if s.closedSet[neighbor.ID] {
			continue
		}
		tasks = append(tasks, ExpandTask[NodeType]{
			Index:         len(tasks),
			FromNode:      currentItem.Node,
			Neighbor:      neighbor,
			CurrentGScore: currentItem.GScore,
			GoalNode:      s.goal,
			HeuristicFunc: s.heuristic,
		})
	}
	if len(tasks) == 0 {
		return nil
	}

	proposals, err := s.scorer.score(ctx, tasks)
	if err != nil {
		return err
	}
	for _, proposal := range proposals {
		s.relax(proposal)
	}
	return nil
}

func (s *searchState[NodeType]) relax(proposal RelaxProposal[NodeType]) {
	currentG, exists := s.gScore[proposal.ToNode]
	if exists && proposal.GScore >= currentG {
		return
	}
	s.gScore[proposal.ToNode] = proposal.GScore
	s.cameFrom[proposal.ToNode] = proposal.FromNode

	item, inOpen := s.openSetMap[proposal.ToNode]
	if !inOpen {
		s.push(&PriorityQueueItem[NodeType]{
			Node:   proposal.ToNode,
			GScore: proposal.GScore,
			HScore: proposal.HScore,
			FCost:  proposal.FCost,
		})
		return
	}
	item.GScore = proposal.GScore
	item.HScore = proposal.HScore
	item.FCost = proposal.FCost
	heap.Fix(&s.openSet, item.IndexInQueue)
}
