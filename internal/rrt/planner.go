package rrt

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r2"

	"rrt-planner/internal/geometry"
)

// ErrNodeLimitExhausted means the run used its whole budget without getting
// within tolerance of the goal. It is an expected outcome, not a crash.
var ErrNodeLimitExhausted = errors.New("node limit exhausted before reaching goal")

// Status is the terminal state of a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusExhausted Status = "exhausted"
)

// Stats counts what happened during a run.
type Stats struct {
	Iterations int `json:"iterations"`
	// Rejected counts candidates discarded for colliding with an obstacle.
	Rejected int `json:"rejected"`
	// ZeroDistance counts samples that landed exactly on their nearest node.
	ZeroDistance int           `json:"zero_distance"`
	Elapsed      time.Duration `json:"elapsed"`
}

// Result is the outcome of a run. On exhaustion Tree still holds every node
// grown and GoalID is NoParent.
type Result struct {
	Status Status
	Tree   *Tree
	GoalID int
	Stats  Stats
}

// Succeeded reports whether the goal was attached to the tree.
func (r *Result) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Path returns the waypoints from the goal back to the start.
func (r *Result) Path() ([]geometry.Point, error) {
	if !r.Succeeded() {
		return nil, ErrNodeLimitExhausted
	}
	return ExtractPath(r.Tree, r.GoalID)
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used for run summaries.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSampler replaces the random sampler built from the config.
func WithSampler(s Sampler) Option {
	return func(p *Planner) {
		if s != nil {
			p.sampler = s
		}
	}
}

// Planner grows a rapidly-exploring random tree from Start toward Goal.
type Planner struct {
	cfg     Config
	index   *geometry.Index
	sampler Sampler
	logger  *zap.Logger
}

// NewPlanner validates cfg and prepares a planner for it.
func NewPlanner(cfg Config, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Planner{
		cfg:    cfg,
		index:  geometry.NewIndex(cfg.Obstacles),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sampler == nil {
		p.sampler = NewSampler(cfg.Sampling, cfg.MapHalfExtents, NewRand(cfg.Seed))
	}
	return p, nil
}

// Run validates cfg and executes a single planning run.
func Run(ctx context.Context, cfg Config, opts ...Option) (*Result, error) {
	p, err := NewPlanner(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return p.Plan(ctx)
}

// Plan grows the tree until a node comes within GoalTolerance of the goal or
// NodeLimit iterations (or nodes) are used up. The returned Result is never nil
// once planning starts; on exhaustion the error is ErrNodeLimitExhausted.
func (p *Planner) Plan(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	p.logger.Info("planning",
		zap.Object("start", p.cfg.Start),
		zap.Object("goal", p.cfg.Goal),
		zap.Int("node_limit", p.cfg.NodeLimit),
		zap.Float64("step_size", p.cfg.StepSize),
		zap.Float64("goal_tolerance", p.cfg.GoalTolerance),
		zap.Int("obstacles", p.index.Len()),
	)

	res := &Result{
		Status: StatusExhausted,
		Tree:   NewTree(p.cfg.Start),
		GoalID: NoParent,
	}

	for res.Stats.Iterations < p.cfg.NodeLimit && res.Tree.Len() < p.cfg.NodeLimit {
		if err := ctx.Err(); err != nil {
			res.Stats.Elapsed = time.Since(startTime)
			return res, errors.Wrap(err, "planning canceled")
		}
		res.Stats.Iterations++

		if goalID, done := p.step(res.Tree, &res.Stats); done {
			res.Status = StatusSucceeded
			res.GoalID = goalID
			break
		}
	}
	res.Stats.Elapsed = time.Since(startTime)

	fields := []zap.Field{
		zap.Int("iterations", res.Stats.Iterations),
		zap.Int("nodes", res.Tree.Len()),
		zap.Int("rejected", res.Stats.Rejected),
		zap.Int("zero_distance", res.Stats.ZeroDistance),
		zap.Duration("elapsed", res.Stats.Elapsed),
	}
	if !res.Succeeded() {
		p.logger.Warn("path not found", fields...)
		return res, ErrNodeLimitExhausted
	}
	p.logger.Info("path found", append(fields, zap.Int("goal_parent", res.Tree.Node(res.GoalID).Parent))...)
	return res, nil
}

// step performs one growth iteration. It either commits exactly one node or
// leaves the tree untouched, and reports the goal node id when the goal was attached.
//
// The goal test runs inside the nearest-neighbor scan: the first node (in
// insertion order) within tolerance of the goal gets the goal attached and the
// scan stops there, whatever the nearest node to the sample would have been.
func (p *Planner) step(tree *Tree, stats *Stats) (int, bool) {
	sample := p.sampler.Sample().Vec()

	nearest := NoParent
	minDistance := math.Inf(1)
	var minVec r2.Vec
	for id := 0; id < tree.Len(); id++ {
		pos := tree.Position(id)
		if pos.Distance(p.cfg.Goal) < p.cfg.GoalTolerance {
			return tree.add(id, p.cfg.Goal), true
		}

		vec := r2.Sub(sample, pos.Vec())
		if d := r2.Norm(vec); d < minDistance {
			minDistance = d
			minVec = vec
			nearest = id
		}
	}

	if nearest == NoParent {
		// unreachable unless the sampler returns NaN
		return NoParent, false
	}
	if minDistance == 0 {
		stats.ZeroDistance++
		return NoParent, false
	}

	unit := r2.Scale(1/minDistance, minVec)
	candidate := geometry.FromVec(r2.Add(tree.Position(nearest).Vec(), r2.Scale(p.cfg.StepSize, unit)))
	if p.index.Collides(candidate) {
		stats.Rejected++
		return NoParent, false
	}

	tree.add(nearest, candidate)
	return NoParent, false
}
