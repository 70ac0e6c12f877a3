package rrt

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rrt-planner/internal/geometry"
)

// checkRun asserts the structural properties every run must have.
func checkRun(t *testing.T, cfg Config, res *Result) {
	t.Helper()

	require.NotNil(t, res)
	require.NoError(t, res.Tree.Validate())
	assert.Equal(t, cfg.Start, res.Tree.Root().Position)
	assert.LessOrEqual(t, res.Tree.Len(), cfg.NodeLimit)
	assert.LessOrEqual(t, res.Stats.Iterations, cfg.NodeLimit)

	for _, n := range res.Tree.Nodes()[1:] {
		parent := res.Tree.Position(n.Parent)
		if res.Succeeded() && n.ID == res.GoalID {
			assert.Equal(t, cfg.Goal, n.Position)
			continue
		}
		assert.InDelta(t, cfg.StepSize, n.Position.Distance(parent), 1e-9, "node %d", n.ID)
		assert.False(t, geometry.AnyCollides(cfg.Obstacles, n.Position), "node %d at %v collides", n.ID, n.Position)
	}

	if !res.Succeeded() {
		assert.Equal(t, NoParent, res.GoalID)
		return
	}

	assert.Equal(t, res.Tree.Len()-1, res.GoalID, "goal is the last node inserted")
	path, err := res.Path()
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, cfg.Goal, path[0])
	assert.Equal(t, cfg.Start, path[len(path)-1])

	id := res.GoalID
	for i := 0; i+1 < len(path); i++ {
		node := res.Tree.Node(id)
		assert.Equal(t, node.Position, path[i])
		assert.Equal(t, res.Tree.Position(node.Parent), path[i+1])
		id = node.Parent
	}
	assert.True(t, res.Tree.Node(id).IsRoot())
}

func TestPlanGoalWithinToleranceOfStart(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(0.1, 0.1)

	res, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	checkRun(t, cfg, res)

	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, 2, res.Tree.Len())
	assert.Equal(t, 1, res.Stats.Iterations)

	goal := res.Tree.Node(res.GoalID)
	assert.Equal(t, 0, goal.Parent)
	assert.Equal(t, cfg.Goal, goal.Position)
	assert.Equal(t, []int{1}, res.Tree.Root().Children)
}

func TestPlanGoalCoveredByObstacle(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(5, 5)
	cfg.NodeLimit = 5
	cfg.Obstacles = []geometry.Obstacle{geometry.Circle{Center: cfg.Goal, Radius: 100}}

	res, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNodeLimitExhausted))
	checkRun(t, cfg, res)

	assert.Equal(t, StatusExhausted, res.Status)
	assert.Equal(t, 1, res.Tree.Len())
	assert.Equal(t, 5, res.Stats.Iterations)
	assert.Equal(t, 5, res.Stats.Rejected+res.Stats.ZeroDistance)

	_, err = res.Path()
	assert.True(t, errors.Is(err, ErrNodeLimitExhausted))
}

func TestPlanStraightLineToGoal(t *testing.T) {
	cfg := openMapConfig()

	res, err := Run(context.Background(), cfg, WithSampler(script(pt(10, 0))))
	require.NoError(t, err)
	checkRun(t, cfg, res)

	// root, five unit steps, goal
	require.Equal(t, 7, res.Tree.Len())
	assert.Equal(t, 5, res.Tree.Node(res.GoalID).Parent)

	path, err := res.Path()
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point{pt(5, 0), pt(5, 0), pt(4, 0), pt(3, 0), pt(2, 0), pt(1, 0), pt(0, 0)}, path)

	length := geometry.PathLength(path)
	assert.GreaterOrEqual(t, length, cfg.Start.Distance(cfg.Goal))
	assert.False(t, math.IsInf(length, 0))
}

func TestPlanOpenMapRandomSeeds(t *testing.T) {
	for _, sampling := range []Sampling{SamplingLattice, SamplingContinuous} {
		for seed := uint64(1); seed <= 10; seed++ {
			cfg := openMapConfig()
			cfg.Sampling = sampling
			cfg.Seed = seed

			res, err := Run(context.Background(), cfg)
			if err != nil {
				require.True(t, errors.Is(err, ErrNodeLimitExhausted), "seed %d: %v", seed, err)
			}
			checkRun(t, cfg, res)

			if res.Succeeded() {
				path, err := res.Path()
				require.NoError(t, err)
				length := geometry.PathLength(path)
				assert.GreaterOrEqual(t, length+1e-9, 5.0)
				assert.False(t, math.IsInf(length, 0))
			}
		}
	}
}

func TestPlanWithObstaclesRandomSeeds(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		cfg := DefaultConfig()
		cfg.Seed = seed
		cfg.Obstacles = append(cfg.Obstacles,
			geometry.Polygon{Vertices: []geometry.Point{pt(2, -2), pt(4, -2), pt(4, -3)}},
		)

		res, err := Run(context.Background(), cfg)
		if err != nil {
			require.True(t, errors.Is(err, ErrNodeLimitExhausted))
		}
		checkRun(t, cfg, res)
	}
}

func TestPlanSameSeedIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.NodeLimit = 200

	a, _ := Run(context.Background(), cfg)
	b, _ := Run(context.Background(), cfg)
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.Equal(t, a.Tree.Nodes(), b.Tree.Nodes())
	assert.Equal(t, a.Status, b.Status)
}

func TestPlanNearestNodeTieGoesToFirstInserted(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(50, 50)
	cfg.MapHalfExtents = pt(100, 100)
	cfg.NodeLimit = 3

	// (10,0) grows node 1 at (1,0); (0.5,5) is equidistant from root and node 1.
	res, err := Run(context.Background(), cfg, WithSampler(script(pt(10, 0), pt(0.5, 5))))
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	checkRun(t, cfg, res)

	require.Equal(t, 3, res.Tree.Len())
	second := res.Tree.Node(2)
	assert.Equal(t, 0, second.Parent)
	d := math.Hypot(0.5, 5)
	assert.InDelta(t, 0.5/d, second.Position.X, 1e-12)
	assert.InDelta(t, 5/d, second.Position.Y, 1e-12)
}

func TestPlanExtendsNearestNode(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(50, 50)
	cfg.MapHalfExtents = pt(100, 100)
	cfg.NodeLimit = 4

	res, _ := Run(context.Background(), cfg, WithSampler(script(pt(10, 0), pt(10, 0), pt(0, -10))))
	checkRun(t, cfg, res)

	require.Equal(t, 4, res.Tree.Len())
	assert.Equal(t, 1, res.Tree.Node(2).Parent)
	assert.Equal(t, pt(2, 0), res.Tree.Position(2))
	assert.Equal(t, 0, res.Tree.Node(3).Parent)
	assert.Equal(t, pt(0, -1), res.Tree.Position(3))
	assert.Equal(t, []int{1, 3}, res.Tree.Root().Children)
}

func TestPlanRejectsCollidingCandidate(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(50, 50)
	cfg.MapHalfExtents = pt(100, 100)
	cfg.NodeLimit = 2
	cfg.Obstacles = []geometry.Obstacle{geometry.Rectangle{Center: pt(1, 0), Width: 1, Height: 1}}

	res, err := Run(context.Background(), cfg, WithSampler(script(pt(10, 0), pt(-10, 0))))
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	checkRun(t, cfg, res)

	assert.Equal(t, 1, res.Stats.Rejected)
	assert.Equal(t, 2, res.Stats.Iterations)
	require.Equal(t, 2, res.Tree.Len())
	assert.Equal(t, pt(-1, 0), res.Tree.Position(1))
}

func TestPlanBoundaryTouchingCandidateIsKept(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(50, 50)
	cfg.MapHalfExtents = pt(100, 100)
	cfg.NodeLimit = 2
	// left edge at x=1, exactly where the first step lands
	cfg.Obstacles = []geometry.Obstacle{geometry.Rectangle{Center: pt(1.5, 0), Width: 1, Height: 1}}

	res, _ := Run(context.Background(), cfg, WithSampler(script(pt(10, 0))))
	checkRun(t, cfg, res)

	assert.Equal(t, 0, res.Stats.Rejected)
	require.Equal(t, 2, res.Tree.Len())
	assert.Equal(t, pt(1, 0), res.Tree.Position(1))
}

func TestPlanZeroDistanceSampleWastesIteration(t *testing.T) {
	cfg := openMapConfig()
	cfg.NodeLimit = 3

	res, err := Run(context.Background(), cfg, WithSampler(script(pt(0, 0))))
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	checkRun(t, cfg, res)

	assert.Equal(t, 1, res.Tree.Len())
	assert.Equal(t, 3, res.Stats.Iterations)
	assert.Equal(t, 3, res.Stats.ZeroDistance)
}

func TestPlanIterationBudgetBoundsAllCollidingMap(t *testing.T) {
	cfg := openMapConfig()
	cfg.NodeLimit = 50
	cfg.Obstacles = []geometry.Obstacle{geometry.Circle{Center: pt(0, 0), Radius: 1000}}

	res, err := Run(context.Background(), cfg)
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	assert.Equal(t, 50, res.Stats.Iterations)
	assert.Equal(t, 1, res.Tree.Len())
}

func TestPlanNodeLimitOfOneNeverIterates(t *testing.T) {
	cfg := openMapConfig()
	cfg.Goal = pt(0.1, 0)
	cfg.NodeLimit = 1

	res, err := Run(context.Background(), cfg)
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	assert.Equal(t, 0, res.Stats.Iterations)
	assert.Equal(t, 1, res.Tree.Len())
}

func TestPlanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Run(ctx, openMapConfig())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrNodeLimitExhausted))
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Stats.Iterations)
}

func TestPlanInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero node limit", mutate: func(c *Config) { c.NodeLimit = 0 }},
		{name: "zero step", mutate: func(c *Config) { c.StepSize = 0 }},
		{name: "negative step", mutate: func(c *Config) { c.StepSize = -1 }},
		{name: "nan tolerance", mutate: func(c *Config) { c.GoalTolerance = math.NaN() }},
		{name: "zero extents", mutate: func(c *Config) { c.MapHalfExtents = pt(0, 10) }},
		{name: "lattice below one", mutate: func(c *Config) { c.MapHalfExtents = pt(0.5, 0.5) }},
		{name: "huge lattice extent", mutate: func(c *Config) { c.MapHalfExtents = pt(1e19, 10) }},
		{name: "lattice extent past limit", mutate: func(c *Config) { c.MapHalfExtents = pt(10, MaxLatticeHalfExtent+1) }},
		{name: "unknown sampling", mutate: func(c *Config) { c.Sampling = "gaussian" }},
		{name: "infinite goal", mutate: func(c *Config) { c.Goal = pt(math.Inf(1), 0) }},
		{name: "bad obstacle", mutate: func(c *Config) {
			c.Obstacles = []geometry.Obstacle{geometry.Circle{Radius: -2}}
		}},
		{name: "nil obstacle", mutate: func(c *Config) { c.Obstacles = []geometry.Obstacle{nil} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := openMapConfig()
			tt.mutate(&cfg)

			res, err := Run(context.Background(), cfg)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.False(t, errors.Is(err, ErrNodeLimitExhausted))
		})
	}
}

func TestContinuousSamplingAllowsSmallMaps(t *testing.T) {
	cfg := openMapConfig()
	cfg.MapHalfExtents = pt(0.5, 0.5)
	cfg.Sampling = SamplingContinuous
	assert.NoError(t, cfg.Validate())
}

func TestLargeExtentsRun(t *testing.T) {
	for _, mode := range []Sampling{SamplingLattice, SamplingContinuous} {
		t.Run(string(mode), func(t *testing.T) {
			cfg := openMapConfig()
			cfg.Sampling = mode
			cfg.NodeLimit = 20
			cfg.MapHalfExtents = pt(MaxLatticeHalfExtent, 10)
			if mode == SamplingContinuous {
				cfg.MapHalfExtents = pt(1e19, 10)
			}
			require.NoError(t, cfg.Validate())

			assert.NotPanics(t, func() {
				_, _ = Run(context.Background(), cfg)
			})
		})
	}
}

func TestPlanLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	cfg := openMapConfig()
	cfg.NodeLimit = 2
	_, err := Run(context.Background(), cfg, WithLogger(logger), WithSampler(script(pt(0, 0))))
	require.True(t, errors.Is(err, ErrNodeLimitExhausted))
	assert.Equal(t, 1, logs.FilterMessage("planning").Len())
	assert.Equal(t, 1, logs.FilterMessage("path not found").Len())

	cfg.Goal = pt(0, 0.2)
	_, err = Run(context.Background(), cfg, WithLogger(logger))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("path found").Len())
}
