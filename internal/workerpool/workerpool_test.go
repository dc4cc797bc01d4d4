/*
 * workerpool_test.go, part of gopme.
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

package workerpool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestParallelForCoversEveryIndex(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 97
	var seen [n]int32
	p.ParallelFor(n, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, count := range seen {
		if count != 1 {
			t.Errorf("index %d visited %d times, want exactly 1", i, count)
		}
	}
}

func TestParallelForAtomicCoversEveryIndex(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 97
	var seen [n]int32
	p.ParallelForAtomic(n, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})
	for i, count := range seen {
		if count != 1 {
			t.Errorf("index %d visited %d times, want exactly 1", i, count)
		}
	}
}

// TestParallelForAtomicUnevenWorkTotal checks that with per-item cost
// skewed heavily toward a few indices, dynamic (pull-based)
// partitioning still processes every item's cost exactly once, so the
// summed cost matches, regardless of which worker pulls the expensive
// indices. How the work is spread across workers is not measured.
func TestParallelForAtomicUnevenWorkTotal(t *testing.T) {
	p := New(4)
	defer p.Close()

	const n = 40
	cost := make([]int, n)
	for i := range cost {
		cost[i] = 1
	}
	// Concentrate most of the work on a handful of indices, the way a
	// mostly-monopole atom set with a few genuinely dipolar atoms
	// concentrates spreading cost on those few atoms.
	cost[0], cost[1], cost[2] = 500, 500, 500

	var total int64
	p.ParallelForAtomic(n, func(i int) {
		atomic.AddInt64(&total, int64(cost[i]))
	})

	var want int64
	for _, c := range cost {
		want += int64(c)
	}
	if total != want {
		t.Errorf("ParallelForAtomic processed total cost %d, want %d", total, want)
	}
}

func TestParallelForOnClosedPoolRunsInline(t *testing.T) {
	p := New(2)
	p.Close()

	ran := false
	p.ParallelFor(3, func(start, end int) { ran = true })
	if !ran {
		t.Errorf("ParallelFor on a closed pool did not run its function")
	}

	ran = false
	p.ParallelForAtomic(3, func(i int) { ran = true })
	if !ran {
		t.Errorf("ParallelForAtomic on a closed pool did not run its function")
	}
}

func TestNewNonPositiveFallsBackToGOMAXPROCS(t *testing.T) {
	p := New(0)
	defer p.Close()
	if want := runtime.GOMAXPROCS(0); p.NumWorkers() != want {
		t.Errorf("NumWorkers() = %d, want GOMAXPROCS(0) = %d", p.NumWorkers(), want)
	}
}
