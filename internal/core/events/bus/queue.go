package bus

import (
	"errors"
	"sync"
)

// Envelope is an event waiting for delivery to a topic.
type Envelope struct {
	Topic string
	Event Event
}

// Queue buffers events and delivers them through a bus on Drain.
// Enqueue is safe for concurrent producers; Drain has a single consumer.
type Queue struct {
	mu      sync.Mutex
	bus     EventBus
	pending []Envelope
}

func NewQueue(b EventBus) *Queue { return &Queue{bus: b} }

func (q *Queue) Enqueue(topic string, event Event) {
	q.mu.Lock()
	q.pending = append(q.pending, Envelope{Topic: topic, Event: event})
	q.mu.Unlock()
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain delivers everything queued before the call in FIFO order and
// returns how many envelopes were delivered. Events queued by handlers
// while draining stay queued for the next Drain.
func (q *Queue) Drain() (int, error) {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	var all error
	for _, env := range batch {
		if err := q.bus.PublishToTopic(env.Topic, env.Event); err != nil {
			all = errors.Join(all, err)
		}
	}
	return len(batch), all
}

// Discard drops everything queued.
func (q *Queue) Discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.pending)
	q.pending = nil
	return n
}
