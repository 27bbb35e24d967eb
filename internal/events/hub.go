// Package events fans task lifecycle notifications out to connected
// websocket clients. Each client is bound to one owner and only sees that
// owner's task events; digest summaries go to everyone.
package events

import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/taskloft/taskloft-be/internal/models"
)

type ownerMessage struct {
	ownerID int64
	data    []byte
}

// Hub maintains the set of active clients and routes messages to them. All
// map mutation happens on the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Messages for every connected client.
	broadcast chan []byte

	// Messages for a single owner's clients.
	direct chan ownerMessage

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// A map of owner ids to the set of clients authenticated as them.
	owners map[int64]map[*Client]bool

	log zerolog.Logger
}

// NewHub creates a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		direct:     make(chan ownerMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		owners:     make(map[int64]map[*Client]bool),
		log:        log,
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.clients[client] = true
			if h.owners[client.OwnerID] == nil {
				h.owners[client.OwnerID] = make(map[*Client]bool)
			}
			h.owners[client.OwnerID][client] = true
			h.log.Info().Int("total_clients", len(h.clients)).Int64("owner_id", client.OwnerID).Msg("Event client connected")

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.log.Info().Int("total_clients", len(h.clients)).Msg("Event client disconnected")
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.drop(client)
				}
			}

		case msg := <-h.direct:
			for client := range h.owners[msg.ownerID] {
				select {
				case client.Send <- msg.data:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// drop removes a slow or disconnected client. Must run on the Run goroutine.
func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if subs, ok := h.owners[client.OwnerID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.owners, client.OwnerID)
		}
	}
}

// PublishTaskEvent sends a task lifecycle event to the owner's clients. It
// satisfies the task service's publisher interface.
func (h *Hub) PublishTaskEvent(ownerID int64, event string, task models.Task) {
	data, err := json.Marshal(Message{Action: event, Payload: task})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("Failed to encode task event")
		return
	}
	h.direct <- ownerMessage{ownerID: ownerID, data: data}
}

// BroadcastAll sends a message to every connected client.
func (h *Hub) BroadcastAll(data []byte) {
	h.broadcast <- data
}
