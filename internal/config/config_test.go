package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrt-planner/internal/geometry"
	"rrt-planner/internal/rrt"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper(), "", nil)
	require.NoError(t, err)

	d := rrt.DefaultConfig()
	assert.Equal(t, d.Start, cfg.Start)
	assert.Equal(t, d.Goal, cfg.Goal)
	assert.Equal(t, d.MapHalfExtents, cfg.MapHalfExtents)
	assert.Equal(t, d.NodeLimit, cfg.NodeLimit)
	assert.Equal(t, d.GoalTolerance, cfg.GoalTolerance)
	assert.Equal(t, d.StepSize, cfg.StepSize)
	assert.Equal(t, rrt.SamplingLattice, cfg.Sampling)
	assert.Equal(t, d.Obstacles, cfg.Obstacles)
}

func TestLoadYAMLScenario(t *testing.T) {
	file := writeFile(t, "scenario.yaml", `
start: {x: 1, y: 2}
goal: {x: -4, y: 5}
map_half_extents: {x: 6, y: 6}
node_limit: 250
goal_tolerance: 0.75
step_size: 0.5
sampling: Continuous
seed: 42
obstacles:
  - type: circle
    center: {x: 0, y: 0}
    radius: 0.5
  - type: polygon
    vertices:
      - {x: 2, y: 2}
      - {x: 3, y: 2}
      - {x: 3, y: 3}
`)

	cfg, err := Load(NewViper(), file, nil)
	require.NoError(t, err)

	assert.Equal(t, geometry.Point{X: 1, Y: 2}, cfg.Start)
	assert.Equal(t, geometry.Point{X: -4, Y: 5}, cfg.Goal)
	assert.Equal(t, geometry.Point{X: 6, Y: 6}, cfg.MapHalfExtents)
	assert.Equal(t, 250, cfg.NodeLimit)
	assert.Equal(t, 0.75, cfg.GoalTolerance)
	assert.Equal(t, 0.5, cfg.StepSize)
	assert.Equal(t, rrt.SamplingContinuous, cfg.Sampling)
	assert.Equal(t, uint64(42), cfg.Seed)

	require.Len(t, cfg.Obstacles, 2)
	assert.Equal(t, geometry.Circle{Center: geometry.Point{}, Radius: 0.5}, cfg.Obstacles[0])
	assert.Equal(t, geometry.KindPolygon, cfg.Obstacles[1].Kind())
}

func TestLoadJSONScenario(t *testing.T) {
	file := writeFile(t, "scenario.json", `{"goal": {"x": 2, "y": 0}, "node_limit": 10, "obstacles": []}`)

	cfg, err := Load(NewViper(), file, nil)
	require.NoError(t, err)
	assert.Equal(t, geometry.Point{X: 2, Y: 0}, cfg.Goal)
	assert.Equal(t, 10, cfg.NodeLimit)
	assert.Empty(t, cfg.Obstacles)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	file := writeFile(t, "scenario.yaml", "node_limit: 250\nstep_size: 0.5\n")
	t.Setenv("RRT_NODE_LIMIT", "25")
	t.Setenv("RRT_GOAL_X", "7")

	cfg, err := Load(NewViper(), file, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.NodeLimit)
	assert.Equal(t, 0.5, cfg.StepSize)
	assert.Equal(t, 7.0, cfg.Goal.X)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("RRT_STEP_SIZE", "0.3")

	fs := pflag.NewFlagSet("plan", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--step-size", "0.9", "--seed", "7", "--sampling", "continuous"}))

	v := NewViper()
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.StepSize)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, rrt.SamplingContinuous, cfg.Sampling)
	// untouched flags fall through to defaults
	assert.Equal(t, rrt.DefaultNodeLimit, cfg.NodeLimit)
}

func TestLoadAppendsGeoJSONObstacles(t *testing.T) {
	obstacles := writeFile(t, "nfz.geojson", `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [4, 4]}, "properties": {"radius": 1}}
  ]
}`)
	t.Setenv("RRT_OBSTACLES_GEOJSON", obstacles)

	cfg, err := Load(NewViper(), "", nil)
	require.NoError(t, err)
	require.Len(t, cfg.Obstacles, 3)
	assert.Equal(t, geometry.Circle{Center: geometry.Point{X: 4, Y: 4}, Radius: 1}, cfg.Obstacles[2])
}

func TestLoadSimplifiesGeoJSONPolygons(t *testing.T) {
	obstacles := writeFile(t, "nfz.geojson", `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [
      [[0, 0], [1, 0.001], [2, 0], [2, 2], [0, 2], [0, 0]]
    ]}}
  ]
}`)
	file := writeFile(t, "scenario.yaml", "obstacles: []\nobstacles_geojson: "+obstacles+"\n")

	fs := pflag.NewFlagSet("plan", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--simplify", "0.05"}))
	v := NewViper()
	require.NoError(t, BindFlags(v, fs))

	cfg, err := Load(v, file, nil)
	require.NoError(t, err)
	require.Len(t, cfg.Obstacles, 1)
	assert.Len(t, cfg.Obstacles[0].(geometry.Polygon).Vertices, 4)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, rrt.ErrInvalidConfig))
	})

	cases := map[string]string{
		"unknown obstacle":  "obstacles:\n  - type: hexagon\n",
		"negative radius":   "obstacles:\n  - type: circle\n    radius: -1\n",
		"zero step":         "step_size: 0\n",
		"unknown sampling":  "sampling: sobol\n",
		"small lattice map": "map_half_extents: {x: 0.5, y: 0.5}\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			file := writeFile(t, "scenario.yaml", content)
			_, err := Load(NewViper(), file, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, rrt.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestScenarioConfigRejectsMissingGeoJSON(t *testing.T) {
	s := DefaultScenario()
	s.ObstaclesGeoJSON = filepath.Join(t.TempDir(), "missing.geojson")

	_, err := s.Config(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rrt.ErrInvalidConfig))
}
