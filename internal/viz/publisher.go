package viz

import (
	"time"

	"github.com/benbjohnson/clock"

	"rrt-planner/internal/geometry"
)

// Pose is one timestamped waypoint.
type Pose struct {
	Frame    string         `json:"frame_id"`
	Stamp    time.Time      `json:"stamp"`
	Position geometry.Point `json:"position"`
}

// Path is an ordered list of poses in one frame.
type Path struct {
	Frame string `json:"frame_id"`
	Poses []Pose `json:"poses"`
}

// PathPublisher converts extracted waypoints into timestamped poses.
type PathPublisher struct {
	clock clock.Clock
	// IncludeRoot keeps the start position as the final pose.
	IncludeRoot bool
}

// NewPathPublisher returns a publisher stamping poses with c.
func NewPathPublisher(c clock.Clock) *PathPublisher {
	if c == nil {
		c = clock.New()
	}
	return &PathPublisher{clock: c, IncludeRoot: true}
}

// Path stamps each waypoint, keeping the goal-to-start order of waypoints.
func (pp *PathPublisher) Path(waypoints []geometry.Point) Path {
	if !pp.IncludeRoot && len(waypoints) > 0 {
		waypoints = waypoints[:len(waypoints)-1]
	}

	path := Path{Frame: FrameID, Poses: make([]Pose, 0, len(waypoints))}
	for _, w := range waypoints {
		path.Poses = append(path.Poses, Pose{
			Frame:    FrameID,
			Stamp:    pp.clock.Now(),
			Position: w,
		})
	}
	return path
}
