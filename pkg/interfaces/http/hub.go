package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/vsinha/factorysim/pkg/application/dto"
	"github.com/vsinha/factorysim/pkg/application/services/simulation"
	"github.com/vsinha/factorysim/pkg/logger"
)

var _ simulation.DayObserver = (*Hub)(nil)

// Hub fans every DayResult out to the connected websocket clients.
// DayAdvanced never blocks the tick: a full queue drops the message.
type Hub struct {
	mu         sync.Mutex
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 64),
		log:        log.Named("ws"),
	}
}

// Run serves registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug().Int("clients", n).Msg("websocket client connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Debug().Err(err).Msg("dropping websocket client")
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// DayAdvanced queues the result for every client
func (h *Hub) DayAdvanced(result *dto.DayResult) {
	message, err := json.Marshal(result)
	if err != nil {
		h.log.Error().Err(err).Msg("encode day result")
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn().Msg("websocket queue full, day result dropped")
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve is the websocket handler. It holds the connection until the client
// goes away; incoming messages are ignored.
func (h *Hub) Serve(c *websocket.Conn) {
	h.register <- c
	defer func() { h.unregister <- c }()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}
