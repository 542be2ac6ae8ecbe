package sim

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// NewSeed generates a high-entropy seed using crypto/rand, suitable for
// initializing the engine's pseudo-random source. Callers that need
// deterministic replay pass a fixed seed instead.
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to
		// a fixed seed rather than crashing a simulation mid-game.
		return 1
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// NewRand returns a rand.Rand seeded with the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// weightedIndex draws one index from weights. Negative weights are
// treated as zero. The draw is uniform in [0, total); the first weight
// whose cumulative sum crosses the draw wins, and the last index is
// returned if the draw exhausts the list (rounding safety). A zero or
// empty total also yields the last index.
func weightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}

	last := len(weights) - 1
	if total <= 0 {
		return last
	}

	draw := rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		draw -= w
		if draw < 0 {
			return i
		}
	}
	return last
}

// clamp01 clamps v to the [0,1] interval.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clamp clamps v to the [lo,hi] interval.
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// chance returns true with probability p.
func chance(rng *rand.Rand, p float64) bool {
	return rng.Float64() < clamp01(p)
}
