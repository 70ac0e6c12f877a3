// Package config assembles a planner run configuration from defaults, a
// scenario file (YAML or JSON), RRT_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"rrt-planner/internal/geometry"
	"rrt-planner/internal/rrt"
)

// EnvPrefix prefixes every environment variable, e.g. RRT_STEP_SIZE.
const EnvPrefix = "RRT"

// Configuration keys.
const (
	KeyStartX           = "start.x"
	KeyStartY           = "start.y"
	KeyGoalX            = "goal.x"
	KeyGoalY            = "goal.y"
	KeyHalfExtentX      = "map_half_extents.x"
	KeyHalfExtentY      = "map_half_extents.y"
	KeyNodeLimit        = "node_limit"
	KeyGoalTolerance    = "goal_tolerance"
	KeyStepSize         = "step_size"
	KeySampling         = "sampling"
	KeySeed             = "seed"
	KeyObstacles        = "obstacles"
	KeyObstaclesGeoJSON = "obstacles_geojson"
	KeySimplify         = "obstacles_simplify"
)

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"start-x":           KeyStartX,
	"start-y":           KeyStartY,
	"goal-x":            KeyGoalX,
	"goal-y":            KeyGoalY,
	"half-extent-x":     KeyHalfExtentX,
	"half-extent-y":     KeyHalfExtentY,
	"node-limit":        KeyNodeLimit,
	"goal-tolerance":    KeyGoalTolerance,
	"step-size":         KeyStepSize,
	"sampling":          KeySampling,
	"seed":              KeySeed,
	"obstacles-geojson": KeyObstaclesGeoJSON,
	"simplify":          KeySimplify,
}

// Scenario is the file/request form of a run configuration.
type Scenario struct {
	Start            geometry.Point          `json:"start" mapstructure:"start"`
	Goal             geometry.Point          `json:"goal" mapstructure:"goal"`
	MapHalfExtents   geometry.Point          `json:"map_half_extents" mapstructure:"map_half_extents"`
	NodeLimit        int                     `json:"node_limit" mapstructure:"node_limit"`
	GoalTolerance    float64                 `json:"goal_tolerance" mapstructure:"goal_tolerance"`
	StepSize         float64                 `json:"step_size" mapstructure:"step_size"`
	Sampling         string                  `json:"sampling" mapstructure:"sampling"`
	Seed             uint64                  `json:"seed" mapstructure:"seed"`
	Obstacles        []geometry.ObstacleSpec `json:"obstacles" mapstructure:"obstacles"`
	ObstaclesGeoJSON string                  `json:"-" mapstructure:"obstacles_geojson"`
	// Simplify is the Douglas-Peucker tolerance applied to GeoJSON polygons; 0 disables it.
	Simplify float64 `json:"-" mapstructure:"obstacles_simplify"`
}

// DefaultScenario mirrors rrt.DefaultConfig.
func DefaultScenario() Scenario {
	d := rrt.DefaultConfig()
	return Scenario{
		Start:          d.Start,
		Goal:           d.Goal,
		MapHalfExtents: d.MapHalfExtents,
		NodeLimit:      d.NodeLimit,
		GoalTolerance:  d.GoalTolerance,
		StepSize:       d.StepSize,
		Sampling:       string(d.Sampling),
		Seed:           d.Seed,
		Obstacles:      geometry.SpecsOf(d.Obstacles),
	}
}

// Config converts the scenario into a validated run configuration. Obstacles
// from ObstaclesGeoJSON are simplified by Simplify and appended after the
// inline ones.
func (s Scenario) Config(logger *zap.Logger) (rrt.Config, error) {
	obstacles, err := geometry.ObstaclesFromSpecs(s.Obstacles)
	if err != nil {
		return rrt.Config{}, errors.Wrapf(rrt.ErrInvalidConfig, "%v", err)
	}

	if s.ObstaclesGeoJSON != "" {
		extra, err := geometry.LoadObstaclesGeoJSON(s.ObstaclesGeoJSON, logger)
		if err != nil {
			return rrt.Config{}, errors.Wrapf(rrt.ErrInvalidConfig, "%v", err)
		}
		if s.Simplify > 0 {
			extra = geometry.SimplifyObstacles(extra, s.Simplify)
		}
		obstacles = append(obstacles, extra...)
	}

	cfg := rrt.Config{
		Start:          s.Start,
		Goal:           s.Goal,
		MapHalfExtents: s.MapHalfExtents,
		NodeLimit:      s.NodeLimit,
		GoalTolerance:  s.GoalTolerance,
		StepSize:       s.StepSize,
		Obstacles:      obstacles,
		Sampling:       rrt.Sampling(strings.ToLower(s.Sampling)),
		Seed:           s.Seed,
	}
	if err := cfg.Validate(); err != nil {
		return rrt.Config{}, err
	}
	return cfg, nil
}

// NewViper returns a viper instance with defaults and environment binding set up.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultScenario()
	v.SetDefault(KeyStartX, d.Start.X)
	v.SetDefault(KeyStartY, d.Start.Y)
	v.SetDefault(KeyGoalX, d.Goal.X)
	v.SetDefault(KeyGoalY, d.Goal.Y)
	v.SetDefault(KeyHalfExtentX, d.MapHalfExtents.X)
	v.SetDefault(KeyHalfExtentY, d.MapHalfExtents.Y)
	v.SetDefault(KeyNodeLimit, d.NodeLimit)
	v.SetDefault(KeyGoalTolerance, d.GoalTolerance)
	v.SetDefault(KeyStepSize, d.StepSize)
	v.SetDefault(KeySampling, d.Sampling)
	v.SetDefault(KeySeed, d.Seed)
	v.SetDefault(KeyObstacles, specMaps(d.Obstacles))
	v.SetDefault(KeyObstaclesGeoJSON, "")
	v.SetDefault(KeySimplify, 0.0)
	return v
}

// AddFlags registers the scenario override flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	d := DefaultScenario()
	fs.Float64("start-x", d.Start.X, "start x")
	fs.Float64("start-y", d.Start.Y, "start y")
	fs.Float64("goal-x", d.Goal.X, "goal x")
	fs.Float64("goal-y", d.Goal.Y, "goal y")
	fs.Float64("half-extent-x", d.MapHalfExtents.X, "sampling half extent along x")
	fs.Float64("half-extent-y", d.MapHalfExtents.Y, "sampling half extent along y")
	fs.Int("node-limit", d.NodeLimit, "maximum number of nodes and iterations")
	fs.Float64("goal-tolerance", d.GoalTolerance, "distance at which the goal counts as reached")
	fs.Float64("step-size", d.StepSize, "distance of each extension")
	fs.String("sampling", d.Sampling, "sampling mode: lattice or continuous")
	fs.Uint64("seed", d.Seed, "random seed, 0 for time-based")
	fs.String("obstacles-geojson", "", "GeoJSON file or directory with extra obstacles")
	fs.Float64("simplify", 0, "Douglas-Peucker tolerance for GeoJSON polygons, 0 to keep them as is")
}

// BindFlags binds every scenario flag present in fs.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", name)
		}
	}
	return nil
}

// Load reads file (when non-empty) into v and builds the run configuration.
func Load(v *viper.Viper, file string, logger *zap.Logger) (rrt.Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return rrt.Config{}, errors.Wrapf(err, "failed to read scenario %s", file)
		}
		logger.Info("scenario loaded", zap.String("file", v.ConfigFileUsed()))
	}

	var s Scenario
	if err := v.Unmarshal(&s); err != nil {
		return rrt.Config{}, errors.Wrap(err, "failed to decode scenario")
	}
	return s.Config(logger)
}

// specMaps renders specs the way a decoded scenario file would hold them.
func specMaps(specs []geometry.ObstacleSpec) []map[string]any {
	out := make([]map[string]any, 0, len(specs))
	for _, s := range specs {
		m := map[string]any{
			"type":        string(s.Type),
			"center":      map[string]any{"x": s.Center.X, "y": s.Center.Y},
			"radius":      s.Radius,
			"width":       s.Width,
			"height":      s.Height,
			"orientation": s.Orientation,
		}
		if len(s.Vertices) > 0 {
			vertices := make([]map[string]any, 0, len(s.Vertices))
			for _, v := range s.Vertices {
				vertices = append(vertices, map[string]any{"x": v.X, "y": v.Y})
			}
			m["vertices"] = vertices
		}
		out = append(out, m)
	}
	return out
}
