package push

import (
	"math/rand/v2"
	"sync/atomic"
)

// Handle identifies a rendered notification on its surface.
type Handle int64

// HandleGenerator hands out strictly increasing handles. The starting point is
// random so that handles from different processes rarely overlap.
type HandleGenerator struct {
	last atomic.Int64
}

// NewHandleGenerator creates a generator seeded with a random value.
func NewHandleGenerator() *HandleGenerator {
	g := &HandleGenerator{}
	g.last.Store(rand.Int64N(1 << 31))
	return g
}

// Next returns a handle never returned before by g. Safe for concurrent use.
func (g *HandleGenerator) Next() Handle {
	return Handle(g.last.Add(1))
}
