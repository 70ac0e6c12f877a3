package geometry

import (
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Obstacle GeoJSON conventions:
//   - Polygon / MultiPolygon geometries become Polygon obstacles (outer ring only).
//   - Point geometries with a "radius" property become circles.
//   - Point geometries with "width" and "height" properties become rectangles.
const (
	propRadius      = "radius"
	propWidth       = "width"
	propHeight      = "height"
	propOrientation = "orientation"
	propType        = "type"
)

// LoadObstaclesGeoJSON loads obstacles from a GeoJSON file, or from every
// *.geojson file when path is a directory.
func LoadObstaclesGeoJSON(path string, logger *zap.Logger) ([]Obstacle, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat obstacle source")
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.geojson"))
		if err != nil {
			return nil, err
		}
		logger.Info("loading obstacles from directory", zap.String("dir", path), zap.Int("files", len(files)))
	}

	var all []Obstacle
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", file)
		}

		obstacles, err := ParseObstaclesGeoJSON(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", file)
		}

		logger.Debug("loaded obstacles", zap.String("file", filepath.Base(file)), zap.Int("count", len(obstacles)))
		all = append(all, obstacles...)
	}

	logger.Info("obstacles loaded", zap.Int("total", len(all)))
	return all, nil
}

// ParseObstaclesGeoJSON converts a FeatureCollection into obstacles, preserving feature order.
func ParseObstaclesGeoJSON(data []byte) ([]Obstacle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "invalid feature collection")
	}

	var obstacles []Obstacle
	for i, feature := range fc.Features {
		parsed, err := featureObstacles(feature)
		if err != nil {
			return nil, errors.Wrapf(err, "feature %d", i)
		}
		obstacles = append(obstacles, parsed...)
	}
	return obstacles, nil
}

// featureObstacles converts a GeoJSON feature to our Obstacle format
func featureObstacles(feature *geojson.Feature) ([]Obstacle, error) {
	switch g := feature.Geometry.(type) {
	case orb.Polygon:
		p, err := polygonFromRing(g)
		if err != nil {
			return nil, err
		}
		return []Obstacle{p}, nil

	case orb.MultiPolygon:
		obstacles := make([]Obstacle, 0, len(g))
		for _, poly := range g {
			p, err := polygonFromRing(poly)
			if err != nil {
				return nil, err
			}
			obstacles = append(obstacles, p)
		}
		return obstacles, nil

	case orb.Point:
		center := Point{X: g.X(), Y: g.Y()}
		props := feature.Properties
		if r := props.MustFloat64(propRadius, 0); r != 0 {
			c, err := NewCircle(center, r)
			return []Obstacle{c}, err
		}
		rect, err := NewRectangle(center, props.MustFloat64(propWidth, 0), props.MustFloat64(propHeight, 0))
		if err != nil {
			return nil, err
		}
		rect.Orientation = props.MustFloat64(propOrientation, 0)
		return []Obstacle{rect}, nil
	}

	return nil, errors.Wrapf(ErrInvalidObstacle, "unsupported geometry %T", feature.Geometry)
}

// polygonFromRing uses the outer ring of an orb polygon.
func polygonFromRing(poly orb.Polygon) (Polygon, error) {
	if len(poly) == 0 {
		return Polygon{}, errors.Wrap(ErrInvalidObstacle, "polygon has no rings")
	}
	vertices := make([]Point, 0, len(poly[0]))
	for _, coord := range poly[0] {
		vertices = append(vertices, Point{X: coord.X(), Y: coord.Y()})
	}
	return NewPolygon(vertices)
}

// Feature encodes o using the same conventions ParseObstaclesGeoJSON reads.
func Feature(o Obstacle) *geojson.Feature {
	var f *geojson.Feature
	switch v := o.(type) {
	case Circle:
		f = geojson.NewFeature(v.Center.Orb())
		f.Properties[propRadius] = v.Radius
	case Rectangle:
		f = geojson.NewFeature(v.Center.Orb())
		f.Properties[propWidth] = v.Width
		f.Properties[propHeight] = v.Height
		if v.Orientation != 0 {
			f.Properties[propOrientation] = v.Orientation
		}
	case Polygon:
		ring := make(orb.Ring, 0, len(v.Vertices)+1)
		for _, vertex := range v.Vertices {
			ring = append(ring, vertex.Orb())
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		f = geojson.NewFeature(orb.Polygon{ring})
	default:
		return nil
	}
	f.Properties[propType] = string(o.Kind())
	return f
}
