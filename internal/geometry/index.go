package geometry

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// queryTolerance is the half side of the probe box used to look a point up in the tree.
const queryTolerance = 1e-9

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	order int
	bbox  rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// Index answers collision queries against a fixed obstacle list. The R-tree
// only narrows the candidates; the exact Collides test of each candidate
// decides, in list order, so results match a plain scan of the list.
type Index struct {
	obstacles []Obstacle
	tree      *rtreego.Rtree
	// unindexed holds obstacles whose bounding box is degenerate.
	unindexed []int
}

// NewIndex creates a new spatial index over obstacles.
func NewIndex(obstacles []Obstacle) *Index {
	idx := &Index{
		obstacles: append([]Obstacle(nil), obstacles...),
		tree:      rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
	}

	for i, o := range idx.obstacles {
		bbox, err := toRect(o.Bounds())
		if err != nil {
			idx.unindexed = append(idx.unindexed, i)
			continue
		}
		idx.tree.Insert(&obstacleEntry{order: i, bbox: bbox})
	}

	return idx
}

// Len returns the number of obstacles in the index.
func (idx *Index) Len() int {
	return len(idx.obstacles)
}

// Collides reports whether p lies inside any obstacle.
func (idx *Index) Collides(p Point) bool {
	return AnyCollides(idx.candidates(p), p)
}

// candidates returns the obstacles whose boxes may contain p, in list order.
func (idx *Index) candidates(p Point) []Obstacle {
	results := idx.tree.SearchIntersect(rtreego.Point{p.X, p.Y}.ToRect(queryTolerance))
	if len(results) == 0 && len(idx.unindexed) == 0 {
		return nil
	}

	order := make([]int, 0, len(results)+len(idx.unindexed))
	for _, item := range results {
		order = append(order, item.(*obstacleEntry).order)
	}
	order = append(order, idx.unindexed...)
	sort.Ints(order)

	out := make([]Obstacle, len(order))
	for i, o := range order {
		out[i] = idx.obstacles[o]
	}
	return out
}

// toRect converts a bounding box to an rtreego rectangle.
func toRect(b BBox) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.MinX, b.MinY},
		[]float64{b.Width(), b.Height()},
	)
}
