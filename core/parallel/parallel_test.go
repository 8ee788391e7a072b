package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryItem(t *testing.T) {
	for _, items := range []int{0, 1, 7, 64, 1000} {
		var covered int64
		Parallelize(items, func(start, end int) {
			atomic.AddInt64(&covered, int64(end-start))
		})
		if covered != int64(items) {
			t.Errorf("items=%d: covered %d", items, covered)
		}
	}
}

func TestParallelizeDisjointRanges(t *testing.T) {
	const items = 257
	seen := make([]int64, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt64(&seen[i], 1)
		}
	})

	for i, n := range seen {
		if n != 1 {
			t.Fatalf("item %d visited %d times", i, n)
		}
	}
}

func TestParallelizeWithThresholdSequentialPath(t *testing.T) {
	calls := 0
	ParallelizeWithThreshold(4, 8, func(start, end int) {
		calls++
		if start != 0 || end != 4 {
			t.Errorf("sequential range: got [%d, %d)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("below threshold should run once, ran %d times", calls)
	}
}
