// Package frontier implements the min-priority queue that drives graph search.
//
// The queue allows several entries for the same node. Search algorithms push
// a node again whenever its distance improves and skip outdated entries when
// they surface, which avoids a decrease-key operation. Ties on priority are
// broken by node id and then by push order so that two runs over the same
// input pop entries in exactly the same order.
package frontier

import (
	"container/heap"

	"github.com/specialistvlad/pathfinder/internal/graph"
)

// Entry is one element of the frontier.
type Entry struct {
	// Priority orders the queue; lower pops first.
	Priority float64
	Node     graph.NodeID
	// Cost is the node's distance from the start when the entry was pushed.
	// Comparing it against the current best distance detects stale entries.
	Cost float64

	seq uint64
}

// Queue is a binary min-heap of entries. The zero value is ready to use.
// A Queue is not safe for concurrent use.
type Queue struct {
	h   entryHeap
	seq uint64
}

// New returns a queue with room for capacity entries.
func New(capacity int) *Queue {
	return &Queue{h: make(entryHeap, 0, capacity)}
}

// Push adds an entry for node.
func (q *Queue) Push(priority float64, node graph.NodeID, cost float64) {
	q.seq++
	heap.Push(&q.h, Entry{Priority: priority, Node: node, Cost: cost, seq: q.seq})
}

// Pop removes and returns the entry with the lowest priority. It panics if
// the queue is empty.
func (q *Queue) Pop() Entry {
	return heap.Pop(&q.h).(Entry)
}

// Len returns the number of entries, stale ones included.
func (q *Queue) Len() int { return len(q.h) }

// Empty reports whether the queue has no entries.
func (q *Queue) Empty() bool { return len(q.h) == 0 }

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	return a.seq < b.seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
