package x11

import "sync"

// eventQueue buffers everything xgb hands over without bound, so the
// reader goroutine never stalls behind a dispatcher busy in a round trip.
type eventQueue struct {
	mu     sync.Mutex
	items  []pending
	closed bool
}

func (q *eventQueue) push(p pending) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()
}

// close marks the end of the stream. Items already queued stay poppable.
func (q *eventQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// pop returns the oldest item. ok is false when the queue is empty, and
// closed then tells whether more items can still arrive.
func (q *eventQueue) pop() (p pending, ok, closed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return pending{}, false, q.closed
	}
	p = q.items[0]
	q.items[0] = pending{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return p, true, false
}

// filter drops the queued items keep rejects, preserving order.
func (q *eventQueue) filter(keep func(pending) bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.items[:0]
	for _, p := range q.items {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	clear(q.items[len(kept):])
	q.items = kept
}
