package repository

import "math/rand/v2"

// Option applies a configuration option to the TreapIndex.
type Option func(*TreapIndex)

// WithSeed makes node priorities reproducible.
func WithSeed(seed uint64) Option {
	return func(t *TreapIndex) {
		t.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}
