package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameSequence(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 32; i++ {
		assert.Equal(t, a.IntN(4), b.IntN(4))
	}
}

func TestZeroSeedMapsToOne(t *testing.T) {
	a, b := New(0), New(1)
	for i := 0; i < 8; i++ {
		assert.Equal(t, a.IntN(100), b.IntN(100))
	}
}

func TestFixedWraps(t *testing.T) {
	f := NewFixed(1, 5, -2)
	assert.Equal(t, 1, f.IntN(4))
	assert.Equal(t, 1, f.IntN(4))
	assert.Equal(t, 2, f.IntN(4))
	assert.Equal(t, 1, f.IntN(4))
}
