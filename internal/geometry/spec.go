package geometry

import (
	"strings"

	"github.com/pkg/errors"
)

// ObstacleSpec is the flat, serializable form of an obstacle used by scenario
// files, HTTP requests and saved runs.
type ObstacleSpec struct {
	Type        Kind    `json:"type" mapstructure:"type"`
	Center      Point   `json:"center" mapstructure:"center"`
	Radius      float64 `json:"radius,omitempty" mapstructure:"radius"`
	Width       float64 `json:"width,omitempty" mapstructure:"width"`
	Height      float64 `json:"height,omitempty" mapstructure:"height"`
	Orientation float64 `json:"orientation,omitempty" mapstructure:"orientation"`
	Vertices    []Point `json:"vertices,omitempty" mapstructure:"vertices"`
}

// Obstacle builds and validates the obstacle described by s.
func (s ObstacleSpec) Obstacle() (Obstacle, error) {
	switch Kind(strings.ToLower(string(s.Type))) {
	case KindCircle:
		return NewCircle(s.Center, s.Radius)
	case KindRectangle:
		r, err := NewRectangle(s.Center, s.Width, s.Height)
		r.Orientation = s.Orientation
		return r, err
	case KindPolygon:
		return NewPolygon(s.Vertices)
	default:
		return nil, errors.Wrapf(ErrInvalidObstacle, "unknown obstacle type %q", s.Type)
	}
}

// SpecOf returns the serializable form of o.
func SpecOf(o Obstacle) ObstacleSpec {
	switch v := o.(type) {
	case Circle:
		return ObstacleSpec{Type: KindCircle, Center: v.Center, Radius: v.Radius}
	case Rectangle:
		return ObstacleSpec{Type: KindRectangle, Center: v.Center, Width: v.Width, Height: v.Height, Orientation: v.Orientation}
	case Polygon:
		return ObstacleSpec{Type: KindPolygon, Vertices: append([]Point(nil), v.Vertices...)}
	}
	return ObstacleSpec{}
}

// ObstaclesFromSpecs converts specs in order, reporting the index of the first invalid one.
func ObstaclesFromSpecs(specs []ObstacleSpec) ([]Obstacle, error) {
	obstacles := make([]Obstacle, 0, len(specs))
	for i, s := range specs {
		o, err := s.Obstacle()
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		obstacles = append(obstacles, o)
	}
	return obstacles, nil
}

// SpecsOf converts obstacles to their serializable form.
func SpecsOf(obstacles []Obstacle) []ObstacleSpec {
	specs := make([]ObstacleSpec, len(obstacles))
	for i, o := range obstacles {
		specs[i] = SpecOf(o)
	}
	return specs
}
