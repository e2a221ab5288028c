package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Conn   *WebSocketConn
	Send   chan []byte
}

// Hub fans messages out to connected chat clients. Presence is mirrored into
// Redis so other instances (and the REST API) can see who is online.
type Hub struct {
	clients    map[string]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	rdb        *redis.Client
	mu         sync.RWMutex
}

const presenceTTL = 5 * time.Minute

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// IsOnline checks the Redis presence key written on register.
func (h *Hub) IsOnline(ctx context.Context, userID uuid.UUID) bool {
	if h.rdb == nil {
		return false
	}
	n, err := h.rdb.Exists(ctx, "presence:"+userID.String()).Result()
	return err == nil && n > 0
}

// SendToUser sends a payload to every open connection of one user.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- payload:
			default:
				// full buffer, skip rather than block
			}
		}
	}
}

// SendToConversation pushes a payload to both participants of a thread.
func (h *Hub) SendToConversation(a, b uuid.UUID, data interface{}) {
	h.SendToUser(a, data)
	h.SendToUser(b, data)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			if h.rdb != nil {
				h.rdb.Set(context.Background(), "presence:"+client.UserID.String(), "1", presenceTTL)
			}
			log.Printf("Client registered: %s (UserID: %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(old.Send)
			}
			h.mu.Unlock()
			if h.rdb != nil {
				h.rdb.Del(context.Background(), "presence:"+client.UserID.String())
			}

		case message := <-h.broadcast:
			// needs the write lock, delivery can evict dead clients
			h.mu.Lock()
			for id, client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}
