// Package mapstore keeps the most recent occupancy grid received from outside.
// The planner does not read it; obstacles come from the run configuration.
package mapstore

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rrt-planner/internal/geometry"
)

// ErrInvalidGrid is returned for grids whose data does not match their dimensions.
var ErrInvalidGrid = errors.New("invalid occupancy grid")

// OccupancyGrid is a row-major grid of occupancy values (-1 unknown, 0..100 occupied %).
type OccupancyGrid struct {
	Width      int            `json:"width"`
	Height     int            `json:"height"`
	Resolution float64        `json:"resolution"`
	Origin     geometry.Point `json:"origin"`
	Data       []int8         `json:"data"`
}

// Validate checks dimensions and cell values.
func (g *OccupancyGrid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return errors.Wrapf(ErrInvalidGrid, "dimensions must be positive, got %dx%d", g.Width, g.Height)
	}
	if !(g.Resolution > 0) {
		return errors.Wrapf(ErrInvalidGrid, "resolution must be positive, got %v", g.Resolution)
	}
	if len(g.Data) != g.Width*g.Height {
		return errors.Wrapf(ErrInvalidGrid, "expected %d cells, got %d", g.Width*g.Height, len(g.Data))
	}
	for i, v := range g.Data {
		if v < -1 || v > 100 {
			return errors.Wrapf(ErrInvalidGrid, "cell %d has value %d", i, v)
		}
	}
	return nil
}

// Store holds the latest grid. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	grid     *OccupancyGrid
	received time.Time
	count    int

	clock  clock.Clock
	logger *zap.Logger
}

// New returns an empty store.
func New(c clock.Clock, logger *zap.Logger) *Store {
	if c == nil {
		c = clock.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{clock: c, logger: logger}
}

// Put validates and stores a copy of g, replacing any previous grid.
func (s *Store) Put(g *OccupancyGrid) error {
	if g == nil {
		return errors.Wrap(ErrInvalidGrid, "nil grid")
	}
	if err := g.Validate(); err != nil {
		return err
	}

	cp := *g
	cp.Data = append([]int8(nil), g.Data...)

	s.mu.Lock()
	s.grid = &cp
	s.received = s.clock.Now()
	s.count++
	s.mu.Unlock()

	s.logger.Info("occupancy grid received",
		zap.Int("width", g.Width),
		zap.Int("height", g.Height),
		zap.Float64("resolution", g.Resolution),
	)
	return nil
}

// Latest returns the most recent grid and when it arrived.
func (s *Store) Latest() (*OccupancyGrid, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.grid == nil {
		return nil, time.Time{}, false
	}
	cp := *s.grid
	cp.Data = append([]int8(nil), s.grid.Data...)
	return &cp, s.received, true
}

// Count returns how many grids have been accepted.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}
