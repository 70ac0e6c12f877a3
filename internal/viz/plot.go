package viz

import (
	"io"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"rrt-planner/internal/geometry"
	"rrt-planner/internal/rrt"
)

const (
	plotSize      = 6 * vg.Inch
	circleSegment = 48
)

// Plot draws the map bounds, obstacles, every tree edge in green, the path in
// red and the start (red) and goal (blue) markers.
func Plot(cfg rrt.Config, tree *rrt.Tree, path []geometry.Point) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "RRT"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	for i, o := range cfg.Obstacles {
		poly, err := plotter.NewPolygon(outline(o))
		if err != nil {
			return nil, errors.Wrapf(err, "obstacle %d", i)
		}
		poly.Color = ObstacleColor
		poly.LineStyle.Color = ObstacleColor
		p.Add(poly)
	}

	if tree != nil {
		for _, e := range tree.Edges() {
			line, err := plotter.NewLine(toXYs(e[:]))
			if err != nil {
				return nil, errors.Wrap(err, "tree edge")
			}
			line.LineStyle.Color = TreeColor
			line.LineStyle.Width = vg.Points(0.5)
			p.Add(line)
		}
	}

	if len(path) > 1 {
		line, err := plotter.NewLine(toXYs(path))
		if err != nil {
			return nil, errors.Wrap(err, "path")
		}
		line.LineStyle.Color = PathColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}

	for _, m := range []struct {
		at    geometry.Point
		color colorful.Color
	}{
		{cfg.Start, StartColor},
		{cfg.Goal, GoalColor},
	} {
		s, err := plotter.NewScatter(toXYs([]geometry.Point{m.at}))
		if err != nil {
			return nil, errors.Wrap(err, "endpoint")
		}
		s.GlyphStyle.Color = m.color
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
	}

	// axis limits are set last because Add widens them to fit the data
	p.X.Min, p.X.Max = -cfg.MapHalfExtents.X, cfg.MapHalfExtents.X
	p.Y.Min, p.Y.Max = -cfg.MapHalfExtents.Y, cfg.MapHalfExtents.Y

	return p, nil
}

// SavePlot renders the run to filename; the format follows the extension.
func SavePlot(filename string, cfg rrt.Config, tree *rrt.Tree, path []geometry.Point) error {
	p, err := Plot(cfg, tree, path)
	if err != nil {
		return err
	}
	return errors.Wrap(p.Save(plotSize, plotSize, filename), "failed to save plot")
}

// WritePNG renders the run as PNG to w.
func WritePNG(w io.Writer, cfg rrt.Config, tree *rrt.Tree, path []geometry.Point) error {
	p, err := Plot(cfg, tree, path)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotSize, plotSize, "png")
	if err != nil {
		return errors.Wrap(err, "failed to render plot")
	}
	_, err = wt.WriteTo(w)
	return err
}

func toXYs(points []geometry.Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	return xys
}

// outline approximates the obstacle boundary as a closed polygon.
func outline(o geometry.Obstacle) plotter.XYs {
	switch v := o.(type) {
	case geometry.Circle:
		xys := make(plotter.XYs, circleSegment)
		for i := range xys {
			theta := 2 * math.Pi * float64(i) / circleSegment
			xys[i].X = v.Center.X + v.Radius*math.Cos(theta)
			xys[i].Y = v.Center.Y + v.Radius*math.Sin(theta)
		}
		return xys
	case geometry.Rectangle:
		b := v.Bounds()
		return plotter.XYs{{X: b.MinX, Y: b.MinY}, {X: b.MaxX, Y: b.MinY}, {X: b.MaxX, Y: b.MaxY}, {X: b.MinX, Y: b.MaxY}}
	case geometry.Polygon:
		return toXYs(v.Vertices)
	}
	return nil
}
