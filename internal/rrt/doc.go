// Package rrt grows a Rapidly-exploring Random Tree over a bounded 2D map.
//
// A run starts with a tree holding only the start position. Each iteration
// draws a random sample, scans every node for the one nearest to it, steps a
// fixed distance from that node toward the sample and keeps the new node
// unless it lands inside an obstacle. While scanning, the first node found
// within the goal tolerance gets the goal attached as its child and the run
// ends. ExtractPath then follows parent links from the goal back to the start.
//
// Key properties:
//   - every non-root, non-goal node sits exactly StepSize from its parent
//   - no node other than the root lies inside an obstacle
//   - a run uses at most NodeLimit iterations
//   - ties in the nearest-node scan go to the earliest inserted node
package rrt
