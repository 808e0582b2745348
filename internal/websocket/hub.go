package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/cart-backend/pkg/logger"
)

const (
	// Rate limit for inbound client messages, per second.
	maxMessagesPerSecond = 10

	sendBufferSize = 16
)

// ClientMessage is what a subscriber may send upstream.
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client is one live cart subscriber.
type Client struct {
	Hub           *Hub
	Conn          *Conn
	ID            string
	Send          chan []byte
	MessageCount  int       // messages received in the current second
	LastResetTime time.Time // start of the current rate window
	RateMu        sync.Mutex
}

// NewClient builds a client bound to hub with a buffered send queue.
func NewClient(hub *Hub, conn *Conn, id string) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		ID:   id,
		Send: make(chan []byte, sendBufferSize),
	}
}

// Hub fans cart updates out to every connected client.
type Hub struct {
	clients map[*Client]bool

	// queue carries broadcasts and registrations in one FIFO so a client
	// only sees messages queued after it joined.
	queue      chan delivery
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

// delivery is either a message for every client or a client joining.
type delivery struct {
	message []byte
	join    *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		queue:      make(chan delivery, 1024),
		unregister: make(chan *Client, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done. Remaining
// clients are disconnected on exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"client_id":         client.ID,
				"remaining_clients": remaining,
			})

		case d := <-h.queue:
			if d.join != nil {
				h.mu.Lock()
				h.clients[d.join] = true
				total := len(h.clients)
				h.mu.Unlock()
				logger.Info("WebSocket client registered", map[string]interface{}{
					"client_id":     d.join.ID,
					"total_clients": total,
				})
				continue
			}

			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- d.message:
				default:
					// slow consumer
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"client_id": client.ID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast queues message, JSON encoded, for every client. A full queue
// drops the message.
func (h *Hub) Broadcast(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.queue <- delivery{message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped")
	}
	return nil
}

// SendTo queues a message for a single client.
func (h *Hub) SendTo(client *Client, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[client]; !ok {
		return nil
	}
	select {
	case client.Send <- data:
	default:
		logger.Warn("Client send buffer full, message dropped", map[string]interface{}{
			"client_id": client.ID,
		})
	}
	return nil
}

// Register adds client behind every broadcast already queued. Once the
// hub has stopped the client's send queue is closed instead.
func (h *Hub) Register(client *Client) {
	if h.stopped() {
		close(client.Send)
		return
	}
	select {
	case h.queue <- delivery{join: client}:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	if h.stopped() {
		return
	}
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) stopped() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// ClientCount reports the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage answers pings and ignores everything else.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"client_id": client.ID,
			"count":     count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"client_id": client.ID,
			"error":     err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		if err := h.SendTo(client, map[string]string{"type": "pong"}); err != nil {
			logger.Error("Failed to answer ping", err, map[string]interface{}{
				"client_id": client.ID,
			})
		}
	}
}
