package bridge

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/teslashibe/go-navsim/internal/log"
)

// ErrNoSimulators is returned when a command is issued with no
// simulator connected.
var ErrNoSimulators = errors.New("no connected simulators")

// Hub fans commands out to every connected simulator and funnels their
// events to a single handler. Channel-based: register/unregister/
// broadcast all serialize through Run's loop.
type Hub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient

	// OnEvent receives every inbound simulator message. Set before
	// Run; called from the read pumps.
	OnEvent func(data []byte)

	mu sync.RWMutex
}

// NewHub creates a hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
	}
}

// Run starts the hub's main loop. Call in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Info("simulator connected", "total", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Info("simulator disconnected", "remaining", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client buffer full: drop the slow simulator.
					close(client.send)
					delete(h.clients, client)
					log.Warn("dropped slow simulator connection")
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastJSON encodes v and queues it for every simulator. Returns
// ErrNoSimulators when nobody is connected, so HTTP handlers can
// report that commands went nowhere.
func (h *Hub) BroadcastJSON(v interface{}) error {
	if h.ClientCount() == 0 {
		return ErrNoSimulators
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
		return nil
	default:
		log.Warn("broadcast channel full, dropping command")
		return nil
	}
}

// ClientCount returns the number of connected simulators.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
