package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/taskloft/taskloft-be/internal/auth"
	"github.com/taskloft/taskloft-be/internal/events"
)

// EventHandler upgrades HTTP connections to the task event feed.
type EventHandler struct {
	hub      *events.Hub
	strategy auth.TokenStrategy
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(hub *events.Hub, strategy auth.TokenStrategy) *EventHandler {
	return &EventHandler{hub: hub, strategy: strategy}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (consider tightening this in production).
		return true
	},
}

// Serve handles the websocket connection request. Browsers cannot set an
// Authorization header on the upgrade, so the token rides a query param.
func (h *EventHandler) Serve(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing auth token", http.StatusUnauthorized)
		return
	}
	user, err := h.strategy.Resolve(r.Context(), token)
	if err != nil {
		http.Error(w, "Invalid auth token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := events.NewClient(h.hub, conn, user.ID)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
