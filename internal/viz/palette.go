// Package viz turns finished runs into things people and other programs can
// look at: marker lists, timestamped path poses, PNG plots and GeoJSON. It only
// reads the tree it is given.
package viz

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Shared palette for markers and plots.
var (
	TreeColor     = colorful.Color{R: 0, G: 1, B: 0}
	ObstacleColor = colorful.Color{R: 1, G: 0, B: 0}
	PathColor     = colorful.Color{R: 1, G: 0, B: 0}
	StartColor    = colorful.Color{R: 1, G: 0, B: 0}
	GoalColor     = colorful.Color{R: 0, G: 0, B: 1}
)

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// NewColor builds an opaque-or-not Color from a colorful color.
func NewColor(c colorful.Color, alpha float64) Color {
	c = c.Clamped()
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}
}

// Hex returns the color without alpha as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Hex()
}
