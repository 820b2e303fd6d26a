// Package ws relays accepted measurements to connected viewers over
// websockets. Delivery is best-effort: only clients connected at publish time
// receive an event, and no backlog is kept.
package ws

import (
	"encoding/json"
	"log"

	"AquaLog.monitor/models"
)

// LatestFunc returns the last accepted measurement, or nil before the first.
type LatestFunc func() *models.Measurement

type wsEvent struct {
	Event string              `json:"event"`
	Data  *models.Measurement `json:"data"`
}

// Hub maintains the set of active clients and fans published measurements out
// to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	latest     LatestFunc
}

func NewHub(latest LatestFunc) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		latest:     latest,
	}
}

// Run owns the client set; it must be running before ServeWS or Publish is
// called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Println("A viewer has connected")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Println("A viewer has disconnected")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow consumer, drop it rather than block the fan-out
					delete(h.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// Publish pushes a new_measurement event to every connected client.
func (h *Hub) Publish(m *models.Measurement) {
	payload, err := json.Marshal(wsEvent{Event: "new_measurement", Data: m})
	if err != nil {
		log.Printf("Failed to encode measurement event: %v", err)
		return
	}
	h.broadcast <- payload
}
