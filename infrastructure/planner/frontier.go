package planner

import "container/heap"

// costEntry is a uniform-cost frontier entry. seq is assigned at push time and
// breaks cost ties in favour of earlier pushes.
type costEntry struct {
	cost int
	seq  uint64
	node *node
}

// costHeap is a min-heap ordered by (cost, seq).
type costHeap []costEntry

func (h costHeap) Len() int { return len(h) }

func (h costHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}

func (h costHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *costHeap) Push(x any) {
	*h = append(*h, x.(costEntry))
}

func (h *costHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = costEntry{}
	*h = old[:n-1]
	return entry
}

// frontier wraps costHeap with the per-search sequence counter.
type frontier struct {
	entries costHeap
	nextSeq uint64
}

func newFrontier() *frontier {
	f := &frontier{}
	heap.Init(&f.entries)
	return f
}

func (f *frontier) push(cost int, n *node) {
	heap.Push(&f.entries, costEntry{cost: cost, seq: f.nextSeq, node: n})
	f.nextSeq++
}

func (f *frontier) pop() costEntry {
	return heap.Pop(&f.entries).(costEntry)
}

func (f *frontier) len() int {
	return f.entries.Len()
}
