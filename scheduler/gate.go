// Package scheduler bounds how many transfers run at the same time.
package scheduler

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is used when the configured size is not positive.
const DefaultSize = 4

// Gate is a counting semaphore shared by every source of a run.
type Gate struct {
	sem      *semaphore.Weighted
	size     int64
	inFlight atomic.Int64
}

func NewGate(size int) *Gate {
	if size <= 0 {
		size = DefaultSize
	}
	return &Gate{
		sem:  semaphore.NewWeighted(int64(size)),
		size: int64(size),
	}
}

// Acquire blocks until a slot is free. The returned release must be called exactly once,
// callers defer it right away.
func (g *Gate) Acquire(ctx context.Context) (release func(), err error) {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	g.inFlight.Add(1)

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.inFlight.Add(-1)
			g.sem.Release(1)
		}
	}, nil
}

func (g *Gate) Size() int {
	return int(g.size)
}

// InFlight returns how many slots are currently held.
func (g *Gate) InFlight() int {
	return int(g.inFlight.Load())
}
