package event

import "sync"

// Bus is the queue between the turn goroutine and the UI drain loop.
// It is an unbounded FIFO: Publish never blocks and never drops, so
// producer bursts survive consumer stalls at the cost of memory. Both
// sides may be called from any goroutine.
type Bus struct {
	mu    sync.Mutex
	queue []Event
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	b.mu.Unlock()
}

// Drain removes and returns up to limit events in publish order. It
// never blocks; an empty bus yields nil. limit <= 0 drains everything.
func (b *Bus) Drain(limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.queue)
	if n == 0 {
		return nil
	}
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, n)
	copy(out, b.queue[:n])
	b.queue = b.queue[n:]
	if len(b.queue) == 0 {
		b.queue = nil
	}

	return out
}

func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}
