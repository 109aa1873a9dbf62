package ingest

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub broadcasts live samples to every connected websocket client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan interface{}
	upgrader   websocket.Upgrader
	clientsMux sync.Mutex
}

// NewHub creates a Hub; call Run in a goroutine before serving.
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan interface{}, 16),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast queues v for delivery to all clients. Drops when the queue is
// full so a slow dashboard cannot stall ingest.
func (h *Hub) Broadcast(v interface{}) {
	select {
	case h.broadcast <- v:
	default:
	}
}

// Run delivers queued messages until the broadcast channel is closed.
func (h *Hub) Run() {
	for msg := range h.broadcast {
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Printf("ingest: marshal broadcast: %v", err)
			continue
		}
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("ingest: websocket write: %v", err)
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}

// Handler upgrades the connection and keeps it registered until the client
// goes away.
func (h *Hub) Handler(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ingest: websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	h.clientsMux.Lock()
	h.clients[ws] = true
	h.clientsMux.Unlock()

	defer func() {
		h.clientsMux.Lock()
		delete(h.clients, ws)
		h.clientsMux.Unlock()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
