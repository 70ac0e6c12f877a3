package geometry

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInvalidObstacle is returned for obstacles with non-positive dimensions or too few vertices.
var ErrInvalidObstacle = errors.New("invalid obstacle")

// Kind names an obstacle variant.
type Kind string

// Obstacle variants.
const (
	KindCircle    Kind = "circle"
	KindRectangle Kind = "rectangle"
	KindPolygon   Kind = "polygon"
)

// Obstacle is a forbidden region of the plane. The set of implementations is
// closed: Circle, Rectangle and Polygon.
type Obstacle interface {
	// Collides reports whether p lies strictly inside the obstacle.
	// Points on the boundary never collide.
	Collides(p Point) bool
	// Bounds returns the axis-aligned bounding box of the obstacle.
	Bounds() BBox
	Kind() Kind
	Validate() error

	sealed()
}

// Circle is a disc obstacle.
type Circle struct {
	Center Point
	Radius float64
}

// NewCircle returns a validated circle.
func NewCircle(center Point, radius float64) (Circle, error) {
	c := Circle{Center: center, Radius: radius}
	return c, c.Validate()
}

// Collides is true iff the distance from p to the center is strictly less than the radius.
func (c Circle) Collides(p Point) bool {
	return p.Distance(c.Center) < c.Radius
}

func (c Circle) Bounds() BBox {
	return BBox{
		MinX: c.Center.X - c.Radius,
		MinY: c.Center.Y - c.Radius,
		MaxX: c.Center.X + c.Radius,
		MaxY: c.Center.Y + c.Radius,
	}
}

func (c Circle) Kind() Kind { return KindCircle }

func (c Circle) Validate() error {
	if !c.Center.IsFinite() {
		return errors.Wrap(ErrInvalidObstacle, "circle center must be finite")
	}
	if !(c.Radius > 0) || math.IsInf(c.Radius, 0) {
		return errors.Wrapf(ErrInvalidObstacle, "circle radius must be positive, got %v", c.Radius)
	}
	return nil
}

func (Circle) sealed() {}

// Rectangle is an axis-aligned box obstacle. Orientation is carried for
// future use and does not rotate the box.
type Rectangle struct {
	Center      Point
	Width       float64
	Height      float64
	Orientation float64
}

// NewRectangle returns a validated rectangle.
func NewRectangle(center Point, width, height float64) (Rectangle, error) {
	r := Rectangle{Center: center, Width: width, Height: height}
	return r, r.Validate()
}

// Collides is true iff p lies strictly inside the box on both axes.
func (r Rectangle) Collides(p Point) bool {
	halfW, halfH := r.Width/2, r.Height/2
	return r.Center.X-halfW < p.X && p.X < r.Center.X+halfW &&
		r.Center.Y-halfH < p.Y && p.Y < r.Center.Y+halfH
}

func (r Rectangle) Bounds() BBox {
	halfW, halfH := r.Width/2, r.Height/2
	return BBox{
		MinX: r.Center.X - halfW,
		MinY: r.Center.Y - halfH,
		MaxX: r.Center.X + halfW,
		MaxY: r.Center.Y + halfH,
	}
}

func (r Rectangle) Kind() Kind { return KindRectangle }

func (r Rectangle) Validate() error {
	if !r.Center.IsFinite() {
		return errors.Wrap(ErrInvalidObstacle, "rectangle center must be finite")
	}
	if !(r.Width > 0) || !(r.Height > 0) || math.IsInf(r.Width, 0) || math.IsInf(r.Height, 0) {
		return errors.Wrapf(ErrInvalidObstacle, "rectangle dimensions must be positive, got %vx%v", r.Width, r.Height)
	}
	return nil
}

func (Rectangle) sealed() {}

// Polygon is a no-fly zone given as a list of vertices. A closing vertex equal
// to the first one is allowed but not required.
type Polygon struct {
	Vertices []Point
}

// NewPolygon returns a validated polygon. The vertex slice is copied.
func NewPolygon(vertices []Point) (Polygon, error) {
	p := Polygon{Vertices: append([]Point(nil), vertices...)}
	return p, p.Validate()
}

// Collides is true iff p is inside the polygon and not on its boundary.
func (p Polygon) Collides(pt Point) bool {
	if onBoundary(pt, p.Vertices) {
		return false
	}
	return pointInPolygon(pt, p.Vertices)
}

func (p Polygon) Bounds() BBox {
	return bboxOf(p.Vertices)
}

func (p Polygon) Kind() Kind { return KindPolygon }

func (p Polygon) Validate() error {
	if len(p.Vertices) < 3 {
		return errors.Wrapf(ErrInvalidObstacle, "polygon needs at least 3 vertices, got %d", len(p.Vertices))
	}
	for i, v := range p.Vertices {
		if !v.IsFinite() {
			return errors.Wrapf(ErrInvalidObstacle, "polygon vertex %d must be finite", i)
		}
	}
	return nil
}

func (Polygon) sealed() {}

// AnyCollides tests p against every obstacle in list order and stops at the first hit.
func AnyCollides(obstacles []Obstacle, p Point) bool {
	for _, o := range obstacles {
		if o.Collides(p) {
			return true
		}
	}
	return false
}
