// Package randutil provides seedable PRNG construction shared by the
// equity estimator, CFR solver, and decision service, so that every
// numeric test in this module is reproducible from an integer seed.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive produces an independent child seed from a parent seed and an index,
// for fanning one run seed out to N per-worker generators without
// correlating their draw streams.
func Derive(seed int64, index int) int64 {
	return int64(mix(uint64(seed) ^ (uint64(index)+1)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
