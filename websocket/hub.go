package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/apex/log"

	"civicreport/models"
)

// Hub manages WebSocket connections and broadcasting. Delivery is
// at-most-once: there is no replay, and a session connecting after an event
// misses it permanently.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Outbound events fanned out to every client
	broadcast chan []byte

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	done chan struct{}

	mutex sync.RWMutex

	// Statistics
	connectedClients int
	eventsBroadcast  int
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns when Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			log.WithField("clients", h.connectedClients).Info("dashboard client connected")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connectedClients = len(h.clients)
			}
			h.mutex.Unlock()
			log.WithField("clients", h.connectedClients).Info("dashboard client disconnected")

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer; drop it rather than block the fan-out.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connectedClients = len(h.clients)
			h.eventsBroadcast++
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.connectedClients = 0
			h.mutex.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast fans an event out to every connected client. It never blocks the
// caller: if the hub's queue is full the event is dropped.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	message := models.BroadcastMessage{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		log.WithError(err).Error("failed to marshal broadcast message")
		return
	}

	select {
	case h.broadcast <- payload:
	default:
		log.WithField("type", eventType).Warn("broadcast queue full, event dropped")
	}
}

// Stats returns the connected client count and the number of events
// broadcast so far.
func (h *Hub) Stats() (int, int) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connectedClients, h.eventsBroadcast
}
