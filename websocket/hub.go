package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/renbkna/yt-dlp-ui/types"
)

// Hub fans task progress messages out to WebSocket subscribers. Clients
// subscribe to one task id, or to "all" for every task.
type Hub interface {
	Run()
	BroadcastProgress(msg types.ProgressMessage)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
}

type hub struct {
	// clients keyed by subscribed task id
	clients map[string]map[*Client]bool

	broadcast  chan types.ProgressMessage
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

// NewHub creates a new progress hub.
func NewHub() Hub {
	return &hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan types.ProgressMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.taskID] == nil {
				h.clients[client.taskID] = make(map[*Client]bool)
			}
			h.clients[client.taskID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.taskID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.clients, client.taskID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			h.send(h.clients[message.TaskID], message)
			h.send(h.clients["all"], message)
			h.mu.Unlock()
		}
	}
}

func (h *hub) send(clients map[*Client]bool, message types.ProgressMessage) {
	for client := range clients {
		select {
		case client.send <- message:
		default:
			// slow consumer, drop it
			close(client.send)
			delete(clients, client)
		}
	}
}

// BroadcastProgress queues a message for delivery; drops it if the hub
// is saturated, since progress messages are best effort.
func (h *hub) BroadcastProgress(msg types.ProgressMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("websocket: broadcast channel full, dropping message for task %s", msg.TaskID)
	}
}

func (h *hub) RegisterClient(client *Client)   { h.register <- client }
func (h *hub) UnregisterClient(client *Client) { h.unregister <- client }
