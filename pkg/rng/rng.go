package rng

import (
	"math/rand"
	"sync"
)

// Source is the random source handed to stochastic nodes and states.
type Source interface {
	// IntN returns a uniform value in [0, n). n must be positive.
	IntN(n int) int
}

// Rand is a seedable Source safe for concurrent use.
type Rand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic source. A zero seed is mapped to 1.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = 1
	}
	return &Rand{r: rand.New(rand.NewSource(seed))}
}

func (r *Rand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.r.Intn(n)
}

// Fixed replays a list of values in order and wraps around. Values are
// reduced modulo n. Useful for tests that need a known random sequence.
type Fixed struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewFixed(values ...int) *Fixed {
	if len(values) == 0 {
		values = []int{0}
	}
	return &Fixed{values: values}
}

func (f *Fixed) IntN(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.next%len(f.values)]
	f.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
