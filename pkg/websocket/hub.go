// Package websocket pushes progression notifications to connected game clients.
package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

// Message types sent by the client or the server besides event types.
const (
	MessageTypeSubscribe    = "subscribe"
	MessageTypeUnsubscribe  = "unsubscribe"
	MessageTypeSubscribed   = "subscribed"
	MessageTypeUnsubscribed = "unsubscribed"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeError        = "error"
)

// Message is the JSON frame written to clients. Progression events use the
// event type as Type and carry the event payload as Data.
type Message struct {
	Type      string    `json:"type"`
	PlayerID  string    `json:"player_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub tracks connected clients and the players they follow.
type Hub struct {
	// Subscribed clients by player ID
	clients map[string]map[*Client]bool

	allClients map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	broadcast   chan *Message
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest

	mu     sync.RWMutex
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

type subscriptionRequest struct {
	client   *Client
	playerID string
}

// NewHub creates a new Hub. Call Run to start it.
func NewHub(logger *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		allClients:  make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *Message, 256),
		subscribe:   make(chan *subscriptionRequest),
		unsubscribe: make(chan *subscriptionRequest),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	h.logger.Info("websocket hub started")
	for {
		select {
		case <-h.ctx.Done():
			h.logger.Info("websocket hub stopping")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.allClients[client] = true
			h.mu.Unlock()
			h.logger.Debug("client registered", "client_id", client.id)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.allClients[client]; ok {
				delete(h.allClients, client)
				for playerID, clients := range h.clients {
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.clients, playerID)
					}
				}
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "client_id", client.id)

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.playerID]; !ok {
				h.clients[req.playerID] = make(map[*Client]bool)
			}
			h.clients[req.playerID][req.client] = true
			h.mu.Unlock()
			h.logger.Debug("client subscribed", "client_id", req.client.id, "player_id", req.playerID)

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if clients, ok := h.clients[req.playerID]; ok {
				delete(clients, req.client)
				if len(clients) == 0 {
					delete(h.clients, req.playerID)
				}
			}
			h.mu.Unlock()
			h.logger.Debug("client unsubscribed", "client_id", req.client.id, "player_id", req.playerID)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop ends Run.
func (h *Hub) Stop() {
	h.cancel()
}

// broadcastMessage sends a message to the clients following its player.
func (h *Hub) broadcastMessage(message *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal message", "error", err)
		return
	}

	for client := range h.clients[message.PlayerID] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client buffer full, skipping", "client_id", client.id)
		}
	}
}

// HandleEvent forwards a progression event to the player's subscribers.
// It never blocks, so it is safe to subscribe directly to an events.Bus.
func (h *Hub) HandleEvent(_ context.Context, event events.Event) {
	message := &Message{
		Type:      string(event.Type),
		PlayerID:  event.PlayerID,
		Data:      event.Payload,
		Timestamp: event.OccurredAt,
	}

	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast channel full, dropping message", "type", event.Type, "player_id", event.PlayerID)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client and all its subscriptions.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Subscribe starts forwarding playerID's events to client.
func (h *Hub) Subscribe(client *Client, playerID string) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, playerID: playerID}:
	case <-h.ctx.Done():
	}
}

// Unsubscribe stops forwarding playerID's events to client.
func (h *Hub) Unsubscribe(client *Client, playerID string) {
	select {
	case h.unsubscribe <- &subscriptionRequest{client: client, playerID: playerID}:
	case <-h.ctx.Done():
	}
}

// SubscriberCount returns the number of clients following playerID.
func (h *Hub) SubscriberCount(playerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[playerID])
}

// TotalConnections returns the number of connected clients.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allClients)
}
