package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// SimplifyPolygon reduces the vertex count of p using Douglas-Peucker with the
// given tolerance. p is returned unchanged when the result would have fewer
// than three vertices.
func SimplifyPolygon(p Polygon, epsilon float64) Polygon {
	if epsilon <= 0 || len(p.Vertices) <= 3 {
		return p
	}

	ring := make(orb.Ring, 0, len(p.Vertices)+1)
	for _, v := range p.Vertices {
		ring = append(ring, v.Orb())
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}

	simplified := simplify.DouglasPeucker(epsilon).Ring(ring)
	if len(simplified) < 4 {
		return p
	}

	// drop the closing vertex
	vertices := make([]Point, 0, len(simplified)-1)
	for _, c := range simplified[:len(simplified)-1] {
		vertices = append(vertices, Point{X: c.X(), Y: c.Y()})
	}
	return Polygon{Vertices: vertices}
}

// SimplifyObstacles simplifies every polygon in obstacles, leaving other shapes as is.
func SimplifyObstacles(obstacles []Obstacle, epsilon float64) []Obstacle {
	out := make([]Obstacle, len(obstacles))
	for i, o := range obstacles {
		if p, ok := o.(Polygon); ok {
			out[i] = SimplifyPolygon(p, epsilon)
			continue
		}
		out[i] = o
	}
	return out
}
