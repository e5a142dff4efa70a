// Package server exposes grid sessions over HTTP: a stepper for drawing
// the search as it runs, and a path endpoint backed by a Controller so a
// newer request from the same session supersedes an older one.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/gridgen"
)

// Defaults used when a session request leaves a parameter out.
type Defaults struct {
	Width    int
	Height   int
	Density  float64
	Clusters int
	Steps    int
	Workers  int
}

type session struct {
	mu         sync.Mutex
	grid       *gridpath.Grid
	start      gridpath.Node
	goal       gridpath.Node
	stepper    *gridpath.Stepper[gridpath.Node]
	controller *gridpath.Controller
}

func (s *session) close() {
	s.mu.Lock()
	s.stepper.Close()
	s.mu.Unlock()
	s.controller.Shutdown()
}

// Server holds the live sessions.
type Server struct {
	ctx      context.Context
	logger   *slog.Logger
	defaults Defaults

	mu       sync.Mutex
	sessions map[string]*session
}

func New(ctx context.Context, logger *slog.Logger, defaults Defaults) *Server {
	return &Server{
		ctx:      ctx,
		logger:   logger,
		defaults: defaults,
		sessions: make(map[string]*session),
	}
}

// Router wires the HTTP routes.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	router.HandleFunc("/sessions", s.CreateSession).Methods(http.MethodPost)
	router.HandleFunc("/sessions/{id}", s.DeleteSession).Methods(http.MethodDelete)
	router.HandleFunc("/sessions/{id}/next", s.Next).Methods(http.MethodGet)
	router.HandleFunc("/sessions/{id}/path", s.Path).Methods(http.MethodGet)
	return router
}

// Close shuts down every session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()
	for _, sess := range sessions {
		sess.close()
	}
}

type point = [2]int

func toPoint(n gridpath.Node) point { return point{n.X, n.Y} }

func sortedPoints(m map[gridpath.Node]bool) []point {
	res := make([]point, 0, len(m))
	for n, ok := range m {
		if ok {
			res = append(res, toPoint(n))
		}
	}
	slices.SortFunc(res, func(a, b point) int {
		if a[1] != b[1] {
			return a[1] - b[1]
		}
		return a[0] - b[0]
	})
	return res
}

func pathPoints(p []gridpath.Node) []point {
	res := make([]point, 0, len(p))
	for _, n := range p {
		res = append(res, toPoint(n))
	}
	return res
}

// SessionResponse describes a freshly created session.
type SessionResponse struct {
	ID    string   `json:"id"`
	W     int      `json:"w"`
	H     int      `json:"h"`
	Rows  []string `json:"rows"`
	Start point    `json:"start"`
	Goal  point    `json:"goal"`
}

// Snapshot is one stepper iteration.
type Snapshot struct {
	Step    int     `json:"step"`
	Open    []point `json:"open,omitempty"`
	Closed  []point `json:"closed,omitempty"`
	Current point   `json:"current"`
	Done    bool    `json:"done"`
	Found   bool    `json:"found"`
	Path    []point `json:"path,omitempty"`
}

// PathResponse is the answer to a path query. An empty Path means the goal
// is unreachable.
type PathResponse struct {
	From   point   `json:"from"`
	To     point   `json:"to"`
	Path   []point `json:"path"`
	Length int     `json:"length"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	n := len(s.sessions)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": n})
}

func intParam(r *http.Request, name string, def, min int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil && v >= min {
		return v
	}
	return def
}

// CreateSession handles POST /sessions. Query parameters w, h, clusters,
// steps, density and seed override the defaults.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := gridgen.Params{
		Width:    intParam(r, "w", s.defaults.Width, 2),
		Height:   intParam(r, "h", s.defaults.Height, 2),
		Density:  s.defaults.Density,
		Style:    gridgen.StyleClusters,
		Clusters: intParam(r, "clusters", s.defaults.Clusters, 1),
		Steps:    intParam(r, "steps", s.defaults.Steps, 1),
	}
	if v, err := strconv.ParseFloat(q.Get("density"), 64); err == nil && v >= 0 && v <= 1 {
		params.Density = v
	}
	if v, err := strconv.ParseUint(q.Get("seed"), 10, 64); err == nil {
		params.Seed = v
	}
	if params.Width > gridpath.MaxDimension || params.Height > gridpath.MaxDimension {
		http.Error(w, fmt.Sprintf("grid sides must be at most %d", gridpath.MaxDimension), http.StatusBadRequest)
		return
	}

	// random start/goal, kept free of walls
	seed := params.Seed
	if seed == 0 {
		seed = rand.Uint64()
		params.Seed = seed
	}
	r0 := rand.New(rand.NewPCG(seed, ^seed))
	start := gridpath.Node{X: r0.IntN(params.Width), Y: r0.IntN(params.Height)}
	goal := start
	for goal == start {
		goal = gridpath.Node{X: r0.IntN(params.Width), Y: r0.IntN(params.Height)}
	}
	params.Keep = []gridpath.Node{start, goal}

	grid, err := gridgen.Generate(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	sess := &session{
		grid:       grid,
		start:      start,
		goal:       goal,
		stepper:    gridpath.NewStepper[gridpath.Node](s.ctx, grid, start, goal, gridpath.Manhattan, gridpath.WithWorkers(s.defaults.Workers)),
		controller: gridpath.NewController(s.ctx, gridpath.WithLogger(s.logger.With("session", id)), gridpath.WithSearchWorkers(s.defaults.Workers)),
	}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", "session", id, "w", params.Width, "h", params.Height, "seed", seed)
	writeJSON(w, http.StatusCreated, SessionResponse{
		ID:    id,
		W:     grid.Width(),
		H:     grid.Height(),
		Rows:  grid.Rows(),
		Start: toPoint(start),
		Goal:  toPoint(goal),
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, string, bool) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
	}
	return sess, id, ok
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	sess.close()
	s.logger.Info("session closed", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

// Next handles GET /sessions/{id}/next, advancing the stepper once.
func (s *Server) Next(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	st, err := sess.stepper.Step()
	sess.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusGone)
		return
	}

	writeJSON(w, http.StatusOK, Snapshot{
		Step:    st.StepIndex,
		Open:    sortedPoints(st.Open),
		Closed:  sortedPoints(st.Closed),
		Current: toPoint(st.Current),
		Done:    st.Done,
		Found:   st.Found,
		Path:    pathPoints(st.Path),
	})
}

// Path handles GET /sessions/{id}/path?from=x,y&to=x,y. from defaults to
// the session start and to to the session goal. A request overtaken by a
// newer one on the same session gets 409.
func (s *Server) Path(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	from, to := sess.start, sess.goal
	var err error
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = gridpath.ParseNode(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = gridpath.ParseNode(v); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	for _, n := range []gridpath.Node{from, to} {
		if sess.grid.Blocked(n.X, n.Y) {
			http.Error(w, fmt.Sprintf("cell %v is blocked or outside the grid", n), http.StatusUnprocessableEntity)
			return
		}
	}
	if from == to {
		http.Error(w, gridpath.ErrSameEndpoints.Error(), http.StatusUnprocessableEntity)
		return
	}

	path, err := sess.controller.Find(r.Context(), gridpath.Request{Grid: sess.grid, Start: from, End: to})
	switch {
	case errors.Is(err, gridpath.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, gridpath.ErrShutdown):
		http.Error(w, err.Error(), http.StatusGone)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, PathResponse{
		From:   toPoint(from),
		To:     toPoint(to),
		Path:   pathPoints(path),
		Length: len(path),
	})
}
