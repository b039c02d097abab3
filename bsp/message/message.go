// Package message defines the messages exchanged between vertices during a
// superstep and the queues that buffer them.
package message

type Message interface {
	Type() string
}

// Queue buffers the messages addressed to a single vertex.
type Queue interface {
	Close() error
	Enqueue(msg Message) error
	// PendingMessages reports whether the queue holds undelivered messages.
	PendingMessages() bool
	// DiscardMessages drops all pending messages.
	DiscardMessages() error
	Messages() Iterator
}

// Iterator drains a Queue.
type Iterator interface {
	// Next advances the iterator. It returns false once the queue is
	// exhausted or an error occurred.
	Next() bool
	Message() Message
	Error() error
}

type QueueFactory func() Queue
