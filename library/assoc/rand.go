package assoc

import "math/rand/v2"

// Rand is the source of every random draw made by the engine.
//
// Float64 must return a value in [0, 1).
type Rand interface {
	Float64() float64
}

type sharedRand struct{}

func (sharedRand) Float64() float64 {
	return rand.Float64()
}

// SharedRand draws from the process-wide pseudo-random source.
// It is safe for concurrent use and carries no seeding contract.
var SharedRand Rand = sharedRand{}
