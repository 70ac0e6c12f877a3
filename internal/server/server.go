// Package server exposes the planner over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"rrt-planner/internal/config"
	"rrt-planner/internal/mapstore"
	"rrt-planner/internal/rrt"
	"rrt-planner/internal/viz"
)

const (
	maxPlanBody = 1 << 20
	maxMapBody  = 64 << 20

	shutdownTimeout = 5 * time.Second

	// DefaultMaxNodeLimit caps node_limit in plan requests.
	DefaultMaxNodeLimit = 100_000
	// DefaultPlanTimeout bounds the time spent on one plan request.
	DefaultPlanTimeout = 30 * time.Second
)

// PlanResponse is returned by POST /plan.
type PlanResponse struct {
	RunID   string        `json:"run_id"`
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Run     *rrt.Snapshot `json:"run"`
	Path    viz.Path      `json:"path"`
	Markers []viz.Marker  `json:"markers"`
}

// Server serves planning requests and accepts occupancy grids.
type Server struct {
	logger       *zap.Logger
	maps         *mapstore.Store
	clock        clock.Clock
	mux          *http.ServeMux
	maxNodeLimit int
	planTimeout  time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithMaxNodeLimit sets the largest node_limit a plan request may ask for.
func WithMaxNodeLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxNodeLimit = n
		}
	}
}

// WithPlanTimeout sets how long a single plan request may run.
func WithPlanTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.planTimeout = d
		}
	}
}

// New builds a server. A nil store gets a fresh one.
func New(logger *zap.Logger, maps *mapstore.Store, c clock.Clock, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = clock.New()
	}
	if maps == nil {
		maps = mapstore.New(c, logger)
	}

	s := &Server{
		logger:       logger,
		maps:         maps,
		clock:        c,
		mux:          http.NewServeMux(),
		maxNodeLimit: DefaultMaxNodeLimit,
		planTimeout:  DefaultPlanTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mux.HandleFunc("POST /plan", s.handlePlan)
	s.mux.HandleFunc("POST /plan/plot", s.handlePlot)
	s.mux.HandleFunc("POST /map", s.handleMap)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// Handler returns the routes wrapped in a permissive CORS policy.
func (s *Server) Handler() http.Handler {
	return cors.AllowAll().Handler(s.mux)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("server listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown failed")
	}
	return nil
}

// planned is a finished plan request.
type planned struct {
	id       string
	cfg      rrt.Config
	res      *rrt.Result
	snapshot *rrt.Snapshot
}

// plan decodes a scenario from r and runs it. It writes the error response
// itself and returns false when there is nothing to render.
func (s *Server) plan(w http.ResponseWriter, r *http.Request) (*planned, bool) {
	runID := uuid.NewString()
	logger := s.logger.With(zap.String("run_id", runID))

	scenario := config.DefaultScenario()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBody)).Decode(&scenario); err != nil {
		logger.Warn("invalid plan request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if scenario.NodeLimit > s.maxNodeLimit {
		logger.Warn("node limit too large", zap.Int("node_limit", scenario.NodeLimit), zap.Int("max", s.maxNodeLimit))
		writeError(w, http.StatusBadRequest, fmt.Sprintf("node_limit must not exceed %d", s.maxNodeLimit))
		return nil, false
	}

	cfg, err := scenario.Config(logger)
	if err != nil {
		logger.Warn("invalid scenario", zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.planTimeout)
	defer cancel()

	res, err := rrt.Run(ctx, cfg, rrt.WithLogger(logger))
	switch {
	case err == nil, errors.Is(err, rrt.ErrNodeLimitExhausted):
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("plan request timed out", zap.Duration("timeout", s.planTimeout))
		writeError(w, http.StatusServiceUnavailable, "planning timed out")
		return nil, false
	case errors.Is(err, context.Canceled):
		logger.Warn("plan request canceled", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "planning canceled")
		return nil, false
	default:
		logger.Error("planning failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "planning failed")
		return nil, false
	}

	snapshot, err := rrt.NewSnapshot(runID, cfg, res)
	if err != nil {
		logger.Error("failed to snapshot run", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "planning failed")
		return nil, false
	}
	return &planned{id: runID, cfg: cfg, res: res, snapshot: snapshot}, true
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	p, ok := s.plan(w, r)
	if !ok {
		return
	}

	resp := PlanResponse{
		RunID:   p.id,
		Success: p.res.Succeeded(),
		Run:     p.snapshot,
		Path:    viz.NewPathPublisher(s.clock).Path(p.snapshot.Path),
		Markers: viz.Markers(p.res.Tree.Nodes(), p.cfg.Obstacles),
	}
	if !resp.Success {
		resp.Message = "Path not found"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePlot runs the scenario like handlePlan and answers with a PNG of the tree.
func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	p, ok := s.plan(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := viz.WritePNG(&buf, p.cfg, p.res.Tree, p.snapshot.Path); err != nil {
		s.logger.Error("failed to render plot", zap.String("run_id", p.id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render plot")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Run-Id", p.id)
	w.Header().Set("X-Run-Status", string(p.res.Status))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var grid mapstore.OccupancyGrid
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMapBody)).Decode(&grid); err != nil {
		s.logger.Warn("invalid map request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.maps.Put(&grid); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"count":    s.maps.Count(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"status": "ok",
		"time":   s.clock.Now(),
		"maps":   s.maps.Count(),
	}
	if _, at, ok := s.maps.Latest(); ok {
		body["last_map"] = at
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
