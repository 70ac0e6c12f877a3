// Package geometry holds the planar primitives the planner works with: points,
// bounding boxes and the closed set of obstacle shapes with their collision tests.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/spatial/r2"
)

// Point is an immutable position in the plane.
type Point struct {
	X float64 `json:"x" mapstructure:"x"`
	Y float64 `json:"y" mapstructure:"y"`
}

// Distance calculates Euclidean distance between two points
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Vec returns p as a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back into a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Orb returns p as an orb point for GeoJSON encoding.
func (p Point) Orb() orb.Point {
	return orb.Point{p.X, p.Y}
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (p Point) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddFloat64("x", p.X)
	enc.AddFloat64("y", p.Y)
	return nil
}

// PathLength sums the lengths of the segments joining consecutive points.
func PathLength(points []Point) float64 {
	var total float64
	for i := 0; i+1 < len(points); i++ {
		total += points[i].Distance(points[i+1])
	}
	return total
}

// BBox represents a bounding box
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the extent of the box along X.
func (b BBox) Width() float64 { return b.MaxX - b.MinX }

// Height returns the extent of the box along Y.
func (b BBox) Height() float64 { return b.MaxY - b.MinY }

// bboxOf calculates the bounding box of a list of points
func bboxOf(points []Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}

	bbox := BBox{
		MinX: points[0].X,
		MinY: points[0].Y,
		MaxX: points[0].X,
		MaxY: points[0].Y,
	}

	for _, v := range points[1:] {
		bbox.MinX = math.Min(bbox.MinX, v.X)
		bbox.MinY = math.Min(bbox.MinY, v.Y)
		bbox.MaxX = math.Max(bbox.MaxX, v.X)
		bbox.MaxY = math.Max(bbox.MaxY, v.Y)
	}

	return bbox
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 Point) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q Point) bool {
	return q.X <= math.Max(p.X, r.X) && q.X >= math.Min(p.X, r.X) &&
		q.Y <= math.Max(p.Y, r.Y) && q.Y >= math.Min(p.Y, r.Y)
}

// onBoundary reports whether point lies on one of the polygon edges.
func onBoundary(point Point, vertices []Point) bool {
	n := len(vertices)
	for i := 0; i < n; i++ {
		v1 := vertices[i]
		v2 := vertices[(i+1)%n]
		if direction(v1, v2, point) == 0 && onSegment(v1, v2, point) {
			return true
		}
	}
	return false
}

// pointInPolygon checks if a point is inside a polygon using ray casting
func pointInPolygon(point Point, vertices []Point) bool {
	n := len(vertices)
	if n < 3 {
		return false
	}

	count := 0
	for i := 0; i < n; i++ {
		v1 := vertices[i]
		v2 := vertices[(i+1)%n]

		// Check if the ray from point to the right intersects the edge
		if (v1.Y > point.Y) != (v2.Y > point.Y) {
			slope := (point.X-v1.X)*(v2.Y-v1.Y) - (v2.X-v1.X)*(point.Y-v1.Y)
			if v2.Y > v1.Y {
				if slope > 0 {
					count++
				}
			} else {
				if slope < 0 {
					count++
				}
			}
		}
	}

	return count%2 == 1
}
