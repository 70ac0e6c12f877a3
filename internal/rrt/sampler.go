package rrt

import (
	"math"
	"math/rand/v2"
	"time"

	"rrt-planner/internal/geometry"
)

// Sampler produces the random targets the tree grows toward.
type Sampler interface {
	Sample() geometry.Point
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSampler returns the sampler for mode over the given half extents.
func NewSampler(mode Sampling, halfExtents geometry.Point, rng *rand.Rand) Sampler {
	if mode == SamplingContinuous {
		return &continuousSampler{hx: halfExtents.X, hy: halfExtents.Y, rng: rng}
	}
	return &latticeSampler{
		hx:  int(math.Floor(halfExtents.X)),
		hy:  int(math.Floor(halfExtents.Y)),
		rng: rng,
	}
}

// latticeSampler draws integer points uniformly from [-hx, hx) x [-hy, hy).
type latticeSampler struct {
	hx, hy int
	rng    *rand.Rand
}

func (s *latticeSampler) Sample() geometry.Point {
	return geometry.Point{
		X: float64(s.rng.IntN(2*s.hx) - s.hx),
		Y: float64(s.rng.IntN(2*s.hy) - s.hy),
	}
}

// continuousSampler draws real points uniformly from [-hx, hx) x [-hy, hy).
type continuousSampler struct {
	hx, hy float64
	rng    *rand.Rand
}

func (s *continuousSampler) Sample() geometry.Point {
	return geometry.Point{
		X: (2*s.rng.Float64() - 1) * s.hx,
		Y: (2*s.rng.Float64() - 1) * s.hy,
	}
}
