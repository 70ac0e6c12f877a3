package rrt

import (
	"rrt-planner/internal/geometry"
)

// scriptedSampler replays samples in order and then repeats the last one.
type scriptedSampler struct {
	samples []geometry.Point
	next    int
}

func script(samples ...geometry.Point) *scriptedSampler {
	return &scriptedSampler{samples: samples}
}

func (s *scriptedSampler) Sample() geometry.Point {
	p := s.samples[s.next]
	if s.next < len(s.samples)-1 {
		s.next++
	}
	return p
}

func pt(x, y float64) geometry.Point {
	return geometry.Point{X: x, Y: y}
}

func openMapConfig() Config {
	return Config{
		Start:          pt(0, 0),
		Goal:           pt(5, 0),
		MapHalfExtents: pt(10, 10),
		NodeLimit:      1000,
		GoalTolerance:  0.5,
		StepSize:       1.0,
		Sampling:       SamplingLattice,
		Seed:           1,
	}
}
