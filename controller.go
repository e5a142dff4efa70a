package gridpath

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pdrpinto/gridpath/internal/ctxlog"
)

// Request fully determines one search.
type Request struct {
	Grid  *Grid
	Start Node
	End   Node
}

// Completion is delivered once for every request that was not superseded,
// cancelled or cut off by Shutdown.
type Completion struct {
	ID            uint64
	Request       Request
	Path          Path
	ExpandedNodes int
}

// Phase is the controller's coarse state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseCompleted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseCompleted:
		return "completed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Status pairs a Phase with the request id it refers to (zero when idle).
type Status struct {
	Phase Phase
	ID    uint64
}

type controllerOptions struct {
	logger        *slog.Logger
	handler       func(Completion)
	searchOptions []Option
}

// ControllerOption configures a Controller.
type ControllerOption func(*controllerOptions)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(o *controllerOptions) { o.logger = logger }
}

// WithHandler sets the completion callback. Handlers run on the search
// goroutine, one at a time and in submit order. A handler may call Submit
// or Cancel but must not call Find or Shutdown.
func WithHandler(handler func(Completion)) ControllerOption {
	return func(o *controllerOptions) { o.handler = handler }
}

// WithSearchWorkers is passed through to Search as WithWorkers.
func WithSearchWorkers(numberOfWorkers int) ControllerOption {
	return func(o *controllerOptions) {
		o.searchOptions = append(o.searchOptions, WithWorkers(numberOfWorkers))
	}
}

type findOutcome struct {
	path Path
	err  error
}

// Controller owns at most one wanted search. Submitting a new request
// cancels the previous one; only the latest request's result is ever
// delivered.
type Controller struct {
	ctx           context.Context
	logger        *slog.Logger
	handler       func(Completion)
	searchOptions []Option
	search        func(ctx context.Context, req Request) (Result[Node], error)

	// deliverMu serialises the staleness check with delivery, so an older
	// completion can never be handed out after a newer one.
	deliverMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	current uint64 // id whose result is still wanted, 0 for none
	cancel  context.CancelFunc
	status  Status
	closed  bool
	waiters map[uint64]chan findOutcome

	wg sync.WaitGroup
}

// NewController creates an idle controller. Searches run under a context
// derived from parent; the logger defaults to the one carried by parent.
func NewController(parent context.Context, options ...ControllerOption) *Controller {
	opts := controllerOptions{}
	for _, option := range options {
		option(&opts)
	}
	if opts.logger == nil {
		opts.logger = ctxlog.FromContext(parent)
	}
	c := &Controller{
		ctx:           parent,
		logger:        opts.logger,
		handler:       opts.handler,
		searchOptions: opts.searchOptions,
		waiters:       make(map[uint64]chan findOutcome),
	}
	c.search = c.searchGrid
	return c
}

func (c *Controller) searchGrid(ctx context.Context, req Request) (Result[Node], error) {
	return Search[Node](ctx, req.Grid, req.Start, req.End, Manhattan, c.searchOptions...)
}

// Submit starts req, superseding whatever is running, and returns its id.
// Ids increase monotonically.
func (c *Controller) Submit(req Request) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitLocked(req, nil)
}

func (c *Controller) submitLocked(req Request, waiter chan findOutcome) (uint64, error) {
	if c.closed {
		return 0, ErrShutdown
	}
	if c.cancel != nil {
		c.cancel()
		if c.current != 0 {
			c.logger.Debug("search superseded", "id", c.current)
		}
	}

	c.nextID++
	id := c.nextID
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancel = cancel
	c.current = id
	c.status = Status{Phase: PhaseRunning, ID: id}
	if waiter != nil {
		c.waiters[id] = waiter
	}

	c.logger.Debug("search submitted", "id", id, "start", req.Start, "end", req.End)
	c.wg.Add(1)
	go c.run(ctx, cancel, id, req)
	return id, nil
}

// Find submits req and waits for its result. It returns ErrSuperseded if a
// newer request or Cancel got there first. If ctx ends before the search
// does, the search is cancelled.
func (c *Controller) Find(ctx context.Context, req Request) (Path, error) {
	waiter := make(chan findOutcome, 1)
	c.mu.Lock()
	id, err := c.submitLocked(req, waiter)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	select {
	case outcome := <-waiter:
		return outcome.path, outcome.err
	case <-ctx.Done():
		c.cancelID(id)
		return nil, ctx.Err()
	}
}

// Cancel stops the running search, if any, without starting another. Its
// result is dropped.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

func (c *Controller) cancelID(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == id {
		c.cancelLocked()
	}
}

func (c *Controller) cancelLocked() {
	if c.current == 0 {
		return
	}
	c.logger.Debug("search cancelled", "id", c.current)
	c.cancel()
	c.status = Status{Phase: PhaseCancelled, ID: c.current}
	c.current = 0
}

// Shutdown cancels any running search and waits for every search goroutine
// to return. No completion is delivered after Shutdown returns, and later
// submits fail with ErrShutdown.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.cancelLocked()
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// State reports the controller's current phase.
func (c *Controller) State() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) run(ctx context.Context, cancel context.CancelFunc, id uint64, req Request) {
	defer c.wg.Done()
	defer cancel()

	result, err := c.search(ctx, req)

	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	live := err == nil && !c.closed && c.current == id
	if live {
		c.current = 0
		c.status = Status{Phase: PhaseCompleted, ID: id}
	}
	closed := c.closed
	waiter := c.waiters[id]
	delete(c.waiters, id)
	c.mu.Unlock()

	if !live {
		c.logger.Debug("search result dropped", "id", id, "expanded", result.ExpandedNodes)
		if waiter != nil {
			if closed {
				waiter <- findOutcome{err: ErrShutdown}
			} else {
				waiter <- findOutcome{err: ErrSuperseded}
			}
		}
		return
	}

	completion := Completion{
		ID:            id,
		Request:       req,
		Path:          Path(result.Path),
		ExpandedNodes: result.ExpandedNodes,
	}
	c.logger.Debug("search completed", "id", id, "found", result.Found, "length", len(completion.Path), "expanded", result.ExpandedNodes)
	if waiter != nil {
		waiter <- findOutcome{path: completion.Path}
	}
	if c.handler != nil {
		c.handler(completion)
	}
}
