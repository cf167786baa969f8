package realtime

import (
	"context"
	"sync"
	"time"

	"maintenance/internal/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	// all is set when the client subscribed without ids.
	all  bool
	subs map[int64]struct{}
}

func (c *client) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// Hub tracks websocket clients and the inventory rows each one follows.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	origin  string
	log     *logrus.Logger
	now     func() time.Time
}

func NewHub(origin string, log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		origin:  origin,
		log:     logger.OrDiscard(log),
		now:     time.Now,
	}
}

// Register adds a connection already following ids.
func (h *Hub) Register(conn *websocket.Conn, ids []int64) *client {
	c := &client{conn: conn, subs: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		c.subs[id] = struct{}{}
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) Unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}

// Subscribe adds ids to the client's follow list. No ids means every row.
func (h *Hub) Subscribe(c *client, ids []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(ids) == 0 {
		c.all = true
		return
	}
	for _, id := range ids {
		c.subs[id] = struct{}{}
	}
}

func (h *Hub) Unsubscribe(c *client, ids []int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(ids) == 0 {
		c.all = false
		c.subs = make(map[int64]struct{})
		return
	}
	for _, id := range ids {
		delete(c.subs, id)
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends ev to every client following its inventory row and returns
// how many received it. Clients that fail the write are dropped.
func (h *Hub) Broadcast(ev Event) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if _, ok := c.subs[ev.InventoryID]; ok || c.all {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(ev); err != nil {
			logger.LogError(h.log, moduleName, "Broadcast", "write event", ev.InventoryID, err)
			h.Unregister(c)
			continue
		}
		sent++
	}
	return sent
}

// InventoryChanged delivers a change made on this instance to local clients.
func (h *Hub) InventoryChanged(_ context.Context, inventoryID int64, reason string, payload any) {
	h.Broadcast(Event{
		Type:        EventInventoryChanged,
		InventoryID: inventoryID,
		Reason:      reason,
		Payload:     payload,
		At:          h.now().UTC(),
		Origin:      h.origin,
	})
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}
