/*
 * workerpool.go, part of gopme.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program. If not, see
 * <http://www.gnu.org/licenses/>.
 */

// Package workerpool provides the fixed-size, persistent thread pool a
// PME Instance spawns once at setup and reuses across every grid spread
// and FFT pass that follows (the convolution and probe loops run on the
// calling goroutine, not on the pool) -- the pool outlives any single
// ParallelFor call, unlike spawning fresh goroutines per compute as
// gochem's solvation.go does for its one-shot concurrent RDF accumulation.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a persistent set of worker goroutines, spawned once and fed
// work items over a channel for the life of the pool.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

// New creates a pool with the given number of workers. A non-positive
// count falls back to runtime.GOMAXPROCS(0), the same default PME's
// setup uses when the caller asks for "as many threads as available".
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers reports the pool's worker count, surfaced to callers via
// Instance.NumThreads.
func (p *Pool) NumWorkers() int { return p.numWorkers }

// Close shuts the pool down. Safe to call more than once, and safe to
// call on a nil Pool (a no-op), so an Instance that was created but
// never set up (and so has no pool yet) can still be torn down uniformly.
func (p *Pool) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor partitions [0, n) into one contiguous chunk per worker
// and runs fn(start, end) for each, blocking until every chunk
// completes. This is the partitioning the spreading kernel's per-worker
// atom deposit and plane-partitioned grid reduction, and the FFT axis
// passes, use, where each chunk is an independent run of atoms, grid
// planes or grid lines.
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.closed.Load() {
		fn(0, n)
		return
	}

	workers := p.numWorkers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := start + chunk
		if end > n {
			end = n
		}
		if start >= n {
			wg.Done()
			continue
		}
		p.workC <- workItem{
			fn:      func() { fn(start, end) },
			barrier: &wg,
		}
	}
	wg.Wait()
}

// ParallelForAtomic runs fn(i) for every index in [0, n), with workers
// pulling the next unclaimed index from a shared counter instead of a
// fixed static split -- better load balance for atom-scatter work where
// per-atom cost (spline order, multipole degree) can vary.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if p == nil || p.closed.Load() {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	workers := p.numWorkers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		p.workC <- workItem{
			fn: func() {
				for {
					idx := int(next.Add(1)) - 1
					if idx >= n {
						return
					}
					fn(idx)
				}
			},
			barrier: &wg,
		}
	}
	wg.Wait()
}
