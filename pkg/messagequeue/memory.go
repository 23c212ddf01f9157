package messagequeue

import (
	"context"
	"errors"
	"sync"
)

// ErrQueueClosed is returned by a closed MemoryQueue.
var ErrQueueClosed = errors.New("message queue closed")

// MemoryQueue is an in-process MessageQueue used when RABBITMQ_URL is unset.
type MemoryQueue struct {
	mu     sync.Mutex
	queues map[string]chan []byte
	size   int
	closed chan struct{}
	once   sync.Once
}

// NewMemoryQueue creates a MemoryQueue whose queues buffer up to size messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 64
	}
	return &MemoryQueue{queues: make(map[string]chan []byte), size: size, closed: make(chan struct{})}
}

func (m *MemoryQueue) queue(name string) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[name]
	if !ok {
		q = make(chan []byte, m.size)
		m.queues[name] = q
	}
	return q
}

func (m *MemoryQueue) Publish(ctx context.Context, queueName string, body []byte) error {
	select {
	case <-m.closed:
		return ErrQueueClosed
	default:
	}
	msg := append([]byte(nil), body...)
	select {
	case <-m.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case m.queue(queueName) <- msg:
		return nil
	}
}

func (m *MemoryQueue) Consume(ctx context.Context, queueName string, handler Handler) error {
	q := m.queue(queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.closed:
			return ErrQueueClosed
		case body := <-q:
			_ = handler(ctx, body)
		}
	}
}

func (m *MemoryQueue) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
