package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
//
// Invariant: All values produced are uniformly distributed in [0, n) for any
// n > 0.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
// Panics with "dice: crypto/rand failure: <err>" if crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource implements Source with a deterministic math/rand generator.
// A mutex guards the generator because math/rand.Rand is not concurrency-safe.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a deterministic Source for reproducible outcomes.
// Two sources built from the same seed produce identical draw sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: mrand.New(mrand.NewSource(seed))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
