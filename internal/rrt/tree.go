package rrt

import (
	"encoding/json"

	"github.com/pkg/errors"

	"rrt-planner/internal/geometry"
)

// NoParent marks the root node, and a missing goal in a failed run.
const NoParent = -1

// TreeNode is one vertex of the search tree. Nodes are identified by their
// insertion index; Parent and Children refer to other ids in the same tree.
type TreeNode struct {
	ID       int            `json:"id"`
	Position geometry.Point `json:"position"`
	Parent   int            `json:"parent"`
	Children []int          `json:"children,omitempty"`
}

// IsRoot reports whether n has no parent.
func (n TreeNode) IsRoot() bool {
	return n.Parent == NoParent
}

// Tree is an arena of nodes in insertion order. Only the planner grows it;
// once a run finishes it is a read-only snapshot.
type Tree struct {
	nodes []TreeNode
}

// NewTree creates a tree holding only a root at start.
func NewTree(start geometry.Point) *Tree {
	return &Tree{nodes: []TreeNode{{ID: 0, Position: start, Parent: NoParent}}}
}

// NewTreeFromNodes rebuilds a tree from a node list, checking that it is well formed.
func NewTreeFromNodes(nodes []TreeNode) (*Tree, error) {
	t := &Tree{nodes: make([]TreeNode, len(nodes))}
	for i, n := range nodes {
		n.Children = append([]int(nil), n.Children...)
		t.nodes[i] = n
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the start node.
func (t *Tree) Root() TreeNode {
	return t.Node(0)
}

// Node returns a copy of the node with the given id. It panics if id is out of range.
func (t *Tree) Node(id int) TreeNode {
	n := t.nodes[id]
	n.Children = append([]int(nil), n.Children...)
	return n
}

// Contains reports whether id names a node of t.
func (t *Tree) Contains(id int) bool {
	return id >= 0 && id < len(t.nodes)
}

// Position returns the position of node id.
func (t *Tree) Position(id int) geometry.Point {
	return t.nodes[id].Position
}

// Nodes returns copies of all nodes in insertion order.
func (t *Tree) Nodes() []TreeNode {
	out := make([]TreeNode, len(t.nodes))
	for i := range t.nodes {
		out[i] = t.Node(i)
	}
	return out
}

// Edges returns the parent/child position pairs of every non-root node in insertion order.
func (t *Tree) Edges() [][2]geometry.Point {
	edges := make([][2]geometry.Point, 0, len(t.nodes))
	for _, n := range t.nodes {
		if n.IsRoot() {
			continue
		}
		edges = append(edges, [2]geometry.Point{t.nodes[n.Parent].Position, n.Position})
	}
	return edges
}

// add appends a node at p as a child of parent and returns its id.
func (t *Tree) add(parent int, p geometry.Point) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, TreeNode{ID: id, Position: p, Parent: parent})
	t.nodes[parent].Children = append(t.nodes[parent].Children, id)
	return id
}

// Validate checks that the nodes form a single tree rooted at node 0: ids match
// positions, every non-root node has one parent inserted before it, and the
// children lists mirror the parent links exactly.
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return errors.New("tree has no root")
	}

	expected := make([][]int, len(t.nodes))
	for i, n := range t.nodes {
		if n.ID != i {
			return errors.Errorf("node %d has id %d", i, n.ID)
		}
		if i == 0 {
			if !n.IsRoot() {
				return errors.Errorf("root has parent %d", n.Parent)
			}
			continue
		}
		if n.Parent < 0 || n.Parent >= i {
			return errors.Errorf("node %d has parent %d, want an earlier node", i, n.Parent)
		}
		expected[n.Parent] = append(expected[n.Parent], i)
	}

	for i, n := range t.nodes {
		if len(n.Children) != len(expected[i]) {
			return errors.Errorf("node %d lists %d children, parent links give %d", i, len(n.Children), len(expected[i]))
		}
		for j, c := range n.Children {
			if c != expected[i][j] {
				return errors.Errorf("node %d child %d is %d, want %d", i, j, c, expected[i][j])
			}
		}
	}
	return nil
}

// MarshalJSON encodes the tree as its node list.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.nodes)
}

// UnmarshalJSON decodes and validates a node list.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var nodes []TreeNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return err
	}
	parsed, err := NewTreeFromNodes(nodes)
	if err != nil {
		return err
	}
	*t = *parsed
	return nil
}
