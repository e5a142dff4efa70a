package gridpath

import "context"

// ExpandTask represents a request from the orchestrator to the workers.
type ExpandTask[NodeType comparable] struct {
	Index         int
	FromNode      NodeType
	Neighbor      Neighbor[NodeType]
	CurrentGScore float64
	GoalNode      NodeType
	HeuristicFunc Heuristic[NodeType]
}

// RelaxProposal is the worker's suggestion for updating a path
type RelaxProposal[NodeType comparable] struct {
	Index    int
	FromNode NodeType
	ToNode   NodeType
	GScore   float64
	HScore   float64
	FCost    float64
}

func scoreTask[NodeType comparable](task ExpandTask[NodeType]) RelaxProposal[NodeType] {
	tentativeG := task.CurrentGScore + task.Neighbor.Cost
	h := task.HeuristicFunc(task.Neighbor.ID, task.GoalNode)
	return RelaxProposal[NodeType]{
		Index:    task.Index,
		FromNode: task.FromNode,
		ToNode:   task.Neighbor.ID,
		GScore:   tentativeG,
		HScore:   h,
		FCost:    tentativeG + h,
	}
}

// scorer turns the neighbors of one expansion into proposals, indexed the
// same way as the tasks it was given.
type scorer[NodeType comparable] interface {
	score(ctx context.Context, tasks []ExpandTask[NodeType]) ([]RelaxProposal[NodeType], error)
}

type inlineScorer[NodeType comparable] struct{}

func (inlineScorer[NodeType]) score(_ context.Context, tasks []ExpandTask[NodeType]) ([]RelaxProposal[NodeType], error) {
	proposals := make([]RelaxProposal[NodeType], len(tasks))
	for i, task := range tasks {
		proposals[i] = scoreTask(task)
	}
	return proposals, nil
}

// workerPool fans tasks out to a fixed set of goroutines. Workers exit when
// ctx is done.
type workerPool[NodeType comparable] struct {
	expandTaskChannel    chan ExpandTask[NodeType]
	relaxProposalChannel chan RelaxProposal[NodeType]
}

func startWorkerPool[NodeType comparable](ctx context.Context, numberOfWorkers int) *workerPool[NodeType] {
	pool := &workerPool[NodeType]{
		expandTaskChannel:    make(chan ExpandTask[NodeType]),
		relaxProposalChannel: make(chan RelaxProposal[NodeType]),
	}
	for i := 0; i < numberOfWorkers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case task := <-pool.expandTaskChannel:
					select {
					case <-ctx.Done():
						return
					case pool.relaxProposalChannel <- scoreTask(task):
					}
				}
			}
		}()
	}
	return pool
}

func (pool *workerPool[NodeType]) score(ctx context.Context, tasks []ExpandTask[NodeType]) ([]RelaxProposal[NodeType], error) {
	go func() {
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case pool.expandTaskChannel <- task:
			}
		}
	}()

	// Workers answer in any order; slot by index to keep relaxation order fixed.
	proposals := make([]RelaxProposal[NodeType], len(tasks))
	for i := 0; i < len(tasks); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case proposal := <-pool.relaxProposalChannel:
			proposals[proposal.Index] = proposal
		}
	}
	return proposals, nil
}
