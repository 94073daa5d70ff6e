package jobs

import (
	"container/heap"
	"time"
)

// readyEntry is a heap entry pointing at a record by id. Entries may be
// stale after a cancel or requeue; the run loop revalidates against the
// record's state and ReadyAt when popping.
type readyEntry struct {
	id      int64
	readyAt time.Time
}

// readyHeap orders entries by readyAt, earliest first.
type readyHeap []readyEntry

func (h readyHeap) Len() int           { return len(h) }
func (h readyHeap) Less(i, j int) bool { return h[i].readyAt.Before(h[j].readyAt) }
func (h readyHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *readyHeap) Push(x any) {
	*h = append(*h, x.(readyEntry))
}

func (h *readyHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func heapPush(h *readyHeap, e readyEntry) {
	heap.Push(h, e)
}

func heapPop(h *readyHeap) readyEntry {
	return heap.Pop(h).(readyEntry)
}
