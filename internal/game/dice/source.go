package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// float53 is 2^53, the number of distinct evenly spaced float64 values in [0, 1).
const float53 = 1 << 53

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, 1).
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Float64 is in [0, 1).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Float64 returns a cryptographically secure value in [0, 1).
//
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Float64() float64 {
	val, err := rand.Int(rand.Reader, big.NewInt(float53))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / float53
}

// seededSource is a reproducible PCG-backed Source.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a Source whose sequence is fully determined by seed.
// Two sources built from the same seed produce identical sequences.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next value in [0, 1).
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
