package message

import "sync"

var _ Queue = (*InMemoryQueue)(nil)

// InMemoryQueue is a FIFO queue that is safe for concurrent enqueueing. The
// iterator returned by Messages must only be used by a single go-routine.
type InMemoryQueue struct {
	mu   sync.Mutex
	msgs []Message
	head int

	latched Message
}

func NewInMemoryQueue() *InMemoryQueue {
	return new(InMemoryQueue)
}

func (q *InMemoryQueue) Enqueue(msg Message) error {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
	return nil
}

func (q *InMemoryQueue) PendingMessages() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.head < len(q.msgs)
}

func (q *InMemoryQueue) DiscardMessages() error {
	q.mu.Lock()
	clear(q.msgs)
	q.msgs, q.head = q.msgs[:0], 0
	q.mu.Unlock()
	return nil
}

func (*InMemoryQueue) Close() error { return nil }

func (q *InMemoryQueue) Messages() Iterator { return q }

func (q *InMemoryQueue) Next() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.msgs) {
		return false
	}
	q.latched = q.msgs[q.head]
	q.head++
	return true
}

func (q *InMemoryQueue) Message() Message { return q.latched }

func (*InMemoryQueue) Error() error { return nil }
