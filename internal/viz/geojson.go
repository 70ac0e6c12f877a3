package viz

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"rrt-planner/internal/geometry"
	"rrt-planner/internal/rrt"
)

// Feature "layer" property values.
const (
	LayerObstacle = "obstacle"
	LayerEdge     = "edge"
	LayerPath     = "path"
	LayerStart    = "start"
	LayerGoal     = "goal"
)

// propStroke carries the simplestyle color of a feature.
const propStroke = "stroke"

// FeatureCollection exports obstacles, tree edges and the path (start first)
// as GeoJSON, each feature tagged with a "layer" property and a "stroke"
// color from the palette.
func FeatureCollection(cfg rrt.Config, tree *rrt.Tree, path []geometry.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, o := range cfg.Obstacles {
		if f := geometry.Feature(o); f != nil {
			f.Properties["layer"] = LayerObstacle
			f.Properties[propStroke] = NewColor(ObstacleColor, 1).Hex()
			fc.Append(f)
		}
	}

	if tree != nil {
		for _, n := range tree.Nodes() {
			if n.IsRoot() {
				continue
			}
			f := geojson.NewFeature(orb.LineString{tree.Position(n.Parent).Orb(), n.Position.Orb()})
			f.Properties["layer"] = LayerEdge
			f.Properties[propStroke] = NewColor(TreeColor, 1).Hex()
			f.Properties["node"] = n.ID
			f.Properties["parent"] = n.Parent
			fc.Append(f)
		}
	}

	if len(path) > 1 {
		line := make(orb.LineString, 0, len(path))
		for _, p := range rrt.Reversed(path) {
			line = append(line, p.Orb())
		}
		f := geojson.NewFeature(line)
		f.Properties["layer"] = LayerPath
		f.Properties[propStroke] = NewColor(PathColor, 1).Hex()
		f.Properties["length"] = geometry.PathLength(path)
		fc.Append(f)
	}

	for _, end := range []struct {
		layer string
		at    geometry.Point
		color Color
	}{
		{LayerStart, cfg.Start, NewColor(StartColor, 1)},
		{LayerGoal, cfg.Goal, NewColor(GoalColor, 1)},
	} {
		f := geojson.NewFeature(end.at.Orb())
		f.Properties["layer"] = end.layer
		f.Properties[propStroke] = end.color.Hex()
		fc.Append(f)
	}

	return fc
}
