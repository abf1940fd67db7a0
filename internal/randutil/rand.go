// Package randutil derives reproducible shuffling sources from int64 seeds so
// that a session, a simulation worker or a test can replay the same shoe.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand whose two state words are both derived
// from seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns *explicit when set, otherwise a seed taken from the wall clock.
func Seed(explicit *int64) int64 {
	if explicit != nil {
		return *explicit
	}
	return time.Now().UnixNano()
}

// Derive returns the seed for the n-th independent stream of a base seed.
// Simulation workers use it so each worker shuffles its own shoe.
func Derive(base int64, n int) int64 {
	return int64(splitmix(uint64(base) + uint64(n)*goldenRatio64))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
