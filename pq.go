package gridpath

// PriorityQueueItem is one frontier entry. GScore, HScore and FCost are the
// bookkeeping half of a node; identity is Node alone.
type PriorityQueueItem[NodeType comparable] struct {
	Node         NodeType
	GScore       float64
	HScore       float64
	FCost        float64
	Sequence     int
	IndexInQueue int
}

// PriorityQueue orders items by ascending FCost. Equal FCost prefers the
// larger GScore (the node nearer the goal), then the lower Sequence, so the
// pop order never depends on heap layout.
type PriorityQueue[NodeType comparable] []*PriorityQueueItem[NodeType]

func (queue PriorityQueue[NodeType]) Len() int { return len(queue) }

func (queue PriorityQueue[NodeType]) Less(i, j int) bool {
	a, b := queue[i], queue[j]
	if a.FCost != b.FCost {
		return a.FCost < b.FCost
	}
	if a.GScore != b.GScore {
		return a.GScore > b.GScore
	}
	return a.Sequence < b.Sequence
}

func (queue PriorityQueue[NodeType]) Swap(i, j int) {
	queue[i], queue[j] = queue[j], queue[i]
	queue[i].IndexInQueue = i
	queue[j].IndexInQueue = j
}

func (queue *PriorityQueue[NodeType]) Push(x any) {
	item := x.(*PriorityQueueItem[NodeType])
	item.IndexInQueue = len(*queue)
	*queue = append(*queue, item)
}

func (queue *PriorityQueue[NodeType]) Pop() any {
	oldQueue := *queue
	n := len(oldQueue)
	item := oldQueue[n-1]
	oldQueue[n-1] = nil
	item.IndexInQueue = -1
	*queue = oldQueue[:n-1]
	return item
}
