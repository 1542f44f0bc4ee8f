package codec

import (
	crand "crypto/rand"
	"math/rand/v2"
	"sync"
)

// Source supplies the extra randomness mixed into randomized coder selection.
// It need not be cryptographically secure. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// LockedSource guards a *rand.Rand with a mutex so one source can serve
// concurrent Generate calls.
type LockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedSource returns a ChaCha8-backed source seeded from crypto/rand.
func NewLockedSource() *LockedSource {
	var seed [32]byte
	// crypto/rand.Read never fails on supported platforms
	_, _ = crand.Read(seed[:])
	return &LockedSource{r: rand.New(rand.NewChaCha8(seed))}
}

func (s *LockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

var defaultSource = NewLockedSource()

// DefaultSource returns the shared crypto-seeded source, safe for concurrent use.
func DefaultSource() Source {
	return defaultSource
}

// Selector picks the alphabet row (coder index) used for one code.
// rows is the number of rows in the table.
type Selector interface {
	Select(ks Keystream, rows int) int
}

// Randomized mixes the keystream sum with a fresh draw in [0, 10) and never
// picks row 0, which is reserved as the selector row.
// Two codes for the same value usually differ.
type Randomized struct {
	Source Source
}

func (r Randomized) Select(ks Keystream, rows int) int {
	src := r.Source
	if src == nil {
		src = DefaultSource()
	}
	return abs(ks.Sum()+src.IntN(10))%(rows-1) + 1
}

// Deterministic derives the row from the keystream alone.
type Deterministic struct{}

func (Deterministic) Select(ks Keystream, rows int) int {
	return abs(ks.Sum()) % rows
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
