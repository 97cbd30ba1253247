package websocket

import (
	"log"
	"sync"

	"lingohub/models"

	"github.com/gorilla/websocket"
)

// Client represents a user connected for live notification delivery
type Client struct {
	Conn    *websocket.Conn
	UserID  string
	writeMu sync.Mutex
}

// SafeWriteJSON safely writes JSON data to the client's WebSocket connection
func (c *Client) SafeWriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub tracks connected clients per user and pushes notification events to
// them. Delivery is best effort; the polling endpoints remain the source of
// truth, so a missed push is only a latency hit.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]bool)}
}

// Register adds a client for notification delivery
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
}

// Unregister removes a client and closes its connection
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns := h.clients[client.UserID]; conns != nil {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	client.Conn.Close()
}

// Notify pushes a notification to every connection the recipient has open
func (h *Hub) Notify(n *models.Notification) {
	h.mu.RLock()
	conns := make([]*Client, 0, 2)
	for client := range h.clients[n.Recipient.Hex()] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	message := map[string]interface{}{
		"type":         "notification",
		"notification": n,
	}

	for _, client := range conns {
		if err := client.SafeWriteJSON(message); err != nil {
			log.Printf("Error pushing notification to user %s: %v", client.UserID, err)
			go h.Unregister(client)
		}
	}
}

// ClientCount returns the number of open connections across all users
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}
