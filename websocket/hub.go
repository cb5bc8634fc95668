package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kanya01/freqspace-backend/services"
)

// Define notification types
const (
	NotificationTypeLike    = "content_like"
	NotificationTypeComment = "content_comment"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	UserID  string      `json:"userID,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
}

// Hub maintains the set of active clients and delivers notifications
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Conn.WriteJSON(notification)
}

// NotifyInteraction delivers a like or comment event to the content owner.
// Owners who are not connected simply miss the event.
func (h *Hub) NotifyInteraction(ownerID primitive.ObjectID, event services.InteractionEvent) {
	notification := Notification{
		Data: event,
	}

	switch event.Type {
	case services.InteractionLike:
		notification.Type = NotificationTypeLike
		notification.Message = "Someone liked your content"
	case services.InteractionComment:
		notification.Type = NotificationTypeComment
		notification.Message = "Someone commented on your content"
	default:
		notification.Type = event.Type
		notification.Message = "New activity on your content"
	}

	_ = h.SendToUser(ownerID, notification)
}
