package rrt

import (
	"github.com/pkg/errors"

	"rrt-planner/internal/geometry"
)

// ExtractPath walks parent links from nodeID up to the root and returns the
// positions visited, goal first and start last. The tree is not modified and
// the walk can be repeated.
func ExtractPath(t *Tree, nodeID int) ([]geometry.Point, error) {
	if t == nil || !t.Contains(nodeID) {
		return nil, errors.Errorf("node %d is not in the tree", nodeID)
	}

	path := make([]geometry.Point, 0, 16)
	for id := nodeID; id != NoParent; id = t.nodes[id].Parent {
		if len(path) >= len(t.nodes) {
			return nil, errors.New("parent links form a cycle")
		}
		path = append(path, t.nodes[id].Position)
	}
	return path, nil
}

// Reversed returns a copy of path in the opposite order, start first.
func Reversed(path []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}
