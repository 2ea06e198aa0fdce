package feed

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeusync/npcmind/internal/core/observability/log"
)

const defaultBuffer = 16

// Hub fans encoded frames out to subscribers. A subscriber that falls
// behind loses frames instead of blocking the publisher.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  int
	logger  log.Log
	dropped atomic.Uint64
	sent    atomic.Uint64
}

// Client is one subscriber.
type Client struct {
	ID     string
	frames chan []byte
	once   sync.Once
}

// Frames yields encoded frames until the client is unsubscribed.
func (c *Client) Frames() <-chan []byte { return c.frames }

func (c *Client) close() { c.once.Do(func() { close(c.frames) }) }

func NewHub(logger log.Log) *Hub {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  defaultBuffer,
		logger:  logger.Named("feed"),
	}
}

func (h *Hub) Subscribe() *Client {
	c := &Client{ID: uuid.NewString(), frames: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("spectator subscribed", log.String("client_id", c.ID))
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		c.close()
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish encodes f once and offers it to every subscriber.
func (h *Hub) Publish(f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return errors.Wrap(err, "failed to encode frame")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.frames <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
			h.logger.Warn("spectator too slow, dropping frame",
				log.String("client_id", c.ID), log.Int("turn", f.Turn))
		}
	}
	return nil
}

// Close unsubscribes everyone.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
	}
}

type Stats struct {
	Clients int    `json:"clients"`
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	return Stats{Clients: h.Len(), Sent: h.sent.Load(), Dropped: h.dropped.Load()}
}
