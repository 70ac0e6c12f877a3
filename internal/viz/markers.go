package viz

import (
	"rrt-planner/internal/geometry"
	"rrt-planner/internal/rrt"
)

// MarkerType values follow the visualization_msgs/Marker numbering.
type MarkerType int

const (
	MarkerCube      MarkerType = 1
	MarkerSphere    MarkerType = 2
	MarkerCylinder  MarkerType = 3
	MarkerLineStrip MarkerType = 4
)

// String returns the lower-case marker type name.
func (t MarkerType) String() string {
	switch t {
	case MarkerCube:
		return "cube"
	case MarkerSphere:
		return "sphere"
	case MarkerCylinder:
		return "cylinder"
	case MarkerLineStrip:
		return "line_strip"
	}
	return "unknown"
}

const (
	// FrameID is the reference frame stamped on markers and poses.
	FrameID = "map"
	// MarkerNamespace groups every marker of a run.
	MarkerNamespace = "rrt_markers"

	// firstMarkerID leaves room for markers owned by other publishers.
	firstMarkerID = 2
	nodeScale     = 0.1
	obstacleDepth = 0.1
	lineWidth     = 0.05
)

// Marker is a drawable primitive with a stable id.
type Marker struct {
	ID        int              `json:"id"`
	Namespace string           `json:"ns"`
	Frame     string           `json:"frame_id"`
	Type      MarkerType       `json:"type"`
	Color     Color            `json:"color"`
	Scale     [3]float64       `json:"scale"`
	Position  [3]float64       `json:"position"`
	Points    []geometry.Point `json:"points,omitempty"`
}

// Markers builds one sphere per tree node followed by one solid shape per
// obstacle. Node i gets id i+2; obstacle j gets id j+len(nodes)+2.
func Markers(nodes []rrt.TreeNode, obstacles []geometry.Obstacle) []Marker {
	markers := make([]Marker, 0, len(nodes)+len(obstacles))

	for i, n := range nodes {
		markers = append(markers, Marker{
			ID:        i + firstMarkerID,
			Namespace: MarkerNamespace,
			Frame:     FrameID,
			Type:      MarkerSphere,
			Color:     NewColor(TreeColor, 1),
			Scale:     [3]float64{nodeScale, nodeScale, nodeScale},
			Position:  [3]float64{n.Position.X, n.Position.Y, 0},
		})
	}

	for j, o := range obstacles {
		m := Marker{
			ID:        j + len(nodes) + firstMarkerID,
			Namespace: MarkerNamespace,
			Frame:     FrameID,
			Color:     NewColor(ObstacleColor, 1),
		}
		switch v := o.(type) {
		case geometry.Circle:
			m.Type = MarkerCylinder
			m.Scale = [3]float64{v.Radius * 2, v.Radius * 2, obstacleDepth}
			m.Position = [3]float64{v.Center.X, v.Center.Y, 0}
		case geometry.Rectangle:
			m.Type = MarkerCube
			m.Scale = [3]float64{v.Width, v.Height, obstacleDepth}
			m.Position = [3]float64{v.Center.X, v.Center.Y, 0}
		case geometry.Polygon:
			m.Type = MarkerLineStrip
			m.Scale = [3]float64{lineWidth, 0, 0}
			m.Points = closedRing(v.Vertices)
		default:
			continue
		}
		markers = append(markers, m)
	}

	return markers
}

// closedRing returns vertices with the first one repeated at the end if needed.
func closedRing(vertices []geometry.Point) []geometry.Point {
	ring := append([]geometry.Point(nil), vertices...)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}
