package cache

import (
	"sync"

	"github.com/tessara/corpusd/core"
)

const lockStripes = 64

// keyLocks serializes cache operations per key so that two simultaneous
// identical uploads never both compute an embedding. Striped rather than
// per-key exact: collisions between distinct keys in one stripe cost only
// contention, never correctness.
type keyLocks struct {
	stripes [lockStripes]sync.Mutex
}

func (l *keyLocks) lock(key core.CacheKey) *sync.Mutex {
	mu := &l.stripes[stripeFor(key)]
	mu.Lock()
	return mu
}

func stripeFor(key core.CacheKey) int {
	d := core.DigestOfString(key.String())
	return int(d[0]) % lockStripes
}
