package engine

import "math/rand"

// Rand is the randomness the engine consumes. Seeding a source and
// replaying the same choices reproduces a playthrough exactly, so all
// draws go through this interface.
type Rand interface {
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
	// Float64 returns a uniform float in [0.0, 1.0).
	Float64() float64
}

// NewRand returns a seeded pseudo-random source.
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
