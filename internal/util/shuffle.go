package util

import (
	"math/rand"
	"time"
)

// NewShuffleSource returns a rand.Rand for presentation shuffling. A zero
// seed picks a time-based seed; tests pass a fixed seed for deterministic
// orderings.
func NewShuffleSource(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Shuffle permutes s in place using r (Fisher-Yates).
func Shuffle[T any](r *rand.Rand, s []T) {
	r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}
