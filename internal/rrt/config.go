package rrt

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"

	"rrt-planner/internal/geometry"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid planner configuration")

// Sampling selects how random targets are drawn inside the map.
type Sampling string

const (
	// SamplingLattice draws integer coordinates in [-floor(h), floor(h)).
	SamplingLattice Sampling = "lattice"
	// SamplingContinuous draws real coordinates in [-h, h).
	SamplingContinuous Sampling = "continuous"
)

// Default run parameters.
const (
	DefaultNodeLimit     = 1000
	DefaultGoalTolerance = 0.5
	DefaultStepSize      = 0.2

	// MaxLatticeHalfExtent bounds lattice half extents so 2*floor(h) fits an int on every platform.
	MaxLatticeHalfExtent = 1 << 30
)

// Config describes one planning run. It is read-only once the run starts.
type Config struct {
	Start geometry.Point
	Goal  geometry.Point
	// MapHalfExtents bounds sampling to [-X, X) x [-Y, Y).
	MapHalfExtents geometry.Point
	NodeLimit      int
	GoalTolerance  float64
	StepSize       float64
	Obstacles      []geometry.Obstacle
	Sampling       Sampling
	// Seed for the random sample stream; 0 seeds from the clock.
	Seed uint64
}

// DefaultConfig returns the parameters of the reference 2D scenario.
func DefaultConfig() Config {
	return Config{
		Start:          geometry.Point{X: 0, Y: 0},
		Goal:           geometry.Point{X: 3.2, Y: -4.1},
		MapHalfExtents: geometry.Point{X: 10, Y: 10},
		NodeLimit:      DefaultNodeLimit,
		GoalTolerance:  DefaultGoalTolerance,
		StepSize:       DefaultStepSize,
		Obstacles: []geometry.Obstacle{
			geometry.Circle{Center: geometry.Point{X: 1, Y: 1}, Radius: 1},
			geometry.Rectangle{Center: geometry.Point{X: -1, Y: -1}, Width: 1, Height: 1},
		},
		Sampling: SamplingLattice,
	}
}

// Validate rejects configurations the planner cannot run.
func (c Config) Validate() error {
	if !c.Start.IsFinite() || !c.Goal.IsFinite() {
		return errors.Wrap(ErrInvalidConfig, "start and goal must be finite")
	}
	if c.NodeLimit <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "node limit must be positive, got %d", c.NodeLimit)
	}
	if !positive(c.GoalTolerance) {
		return errors.Wrapf(ErrInvalidConfig, "goal tolerance must be positive, got %v", c.GoalTolerance)
	}
	if !positive(c.StepSize) {
		return errors.Wrapf(ErrInvalidConfig, "step size must be positive, got %v", c.StepSize)
	}
	if !positive(c.MapHalfExtents.X) || !positive(c.MapHalfExtents.Y) {
		return errors.Wrapf(ErrInvalidConfig, "map half extents must be positive, got %v", c.MapHalfExtents)
	}

	switch c.Sampling {
	case SamplingLattice, "":
		if c.MapHalfExtents.X < 1 || c.MapHalfExtents.Y < 1 {
			return errors.Wrapf(ErrInvalidConfig, "lattice sampling needs half extents of at least 1, got %v", c.MapHalfExtents)
		}
		if c.MapHalfExtents.X > MaxLatticeHalfExtent || c.MapHalfExtents.Y > MaxLatticeHalfExtent {
			return errors.Wrapf(ErrInvalidConfig, "lattice half extents must not exceed %d, got %v", MaxLatticeHalfExtent, c.MapHalfExtents)
		}
	case SamplingContinuous:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown sampling mode %q", c.Sampling)
	}

	for i, o := range c.Obstacles {
		if o == nil {
			return errors.Wrapf(ErrInvalidConfig, "obstacle %d is nil", i)
		}
		if err := o.Validate(); err != nil {
			return errors.Wrapf(ErrInvalidConfig, "obstacle %d: %v", i, err)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// configJSON is the wire form of Config.
type configJSON struct {
	Start          geometry.Point          `json:"start"`
	Goal           geometry.Point          `json:"goal"`
	MapHalfExtents geometry.Point          `json:"map_half_extents"`
	NodeLimit      int                     `json:"node_limit"`
	GoalTolerance  float64                 `json:"goal_tolerance"`
	StepSize       float64                 `json:"step_size"`
	Obstacles      []geometry.ObstacleSpec `json:"obstacles"`
	Sampling       Sampling                `json:"sampling,omitempty"`
	Seed           uint64                  `json:"seed,omitempty"`
}

// MarshalJSON encodes obstacles in their flat spec form.
func (c Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		Start:          c.Start,
		Goal:           c.Goal,
		MapHalfExtents: c.MapHalfExtents,
		NodeLimit:      c.NodeLimit,
		GoalTolerance:  c.GoalTolerance,
		StepSize:       c.StepSize,
		Obstacles:      geometry.SpecsOf(c.Obstacles),
		Sampling:       c.Sampling,
		Seed:           c.Seed,
	})
}

// UnmarshalJSON decodes a Config written by MarshalJSON.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	obstacles, err := geometry.ObstaclesFromSpecs(raw.Obstacles)
	if err != nil {
		return err
	}
	*c = Config{
		Start:          raw.Start,
		Goal:           raw.Goal,
		MapHalfExtents: raw.MapHalfExtents,
		NodeLimit:      raw.NodeLimit,
		GoalTolerance:  raw.GoalTolerance,
		StepSize:       raw.StepSize,
		Obstacles:      obstacles,
		Sampling:       raw.Sampling,
		Seed:           raw.Seed,
	}
	return nil
}
