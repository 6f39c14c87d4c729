package events

import (
	"container/heap"
	"sync"
)

// Queue is a thread-safe priority queue of events. Lower priority
// values drain first; events with equal priority keep arrival order.
type Queue struct {
	mu   sync.Mutex
	heap eventHeap
	seq  uint64
}

func NewQueue() *Queue {
	return &Queue{}
}

// Push enqueues an event. It never blocks.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.seq++
	heap.Push(&q.heap, queued{event: ev, seq: q.seq})
}

// Drain removes and returns every queued event in priority order. An
// empty queue yields an empty slice; draining twice in a row returns
// nothing the second time.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := make([]Event, 0, q.heap.Len())
	for q.heap.Len() > 0 {
		item := heap.Pop(&q.heap).(queued)
		drained = append(drained, item.event)
	}
	return drained
}

// Len reports how many events are currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.heap.Len()
}

type queued struct {
	event Event
	seq   uint64
}

type eventHeap []queued

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].event.Priority != h[j].event.Priority {
		return h[i].event.Priority < h[j].event.Priority
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(queued))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
