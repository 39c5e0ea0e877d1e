package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"distress-server/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const adminRoom = "admins"

// Frame is the envelope exchanged with clients. Data is kept raw so audio chunks are relayed untouched.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func NewFrame(event string, payload interface{}) ([]byte, error) {
	frame := Frame{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		frame.Data = data
	}
	return json.Marshal(frame)
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	mutex      sync.RWMutex
	done       chan struct{}
	logger     *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     log,
	}
}

// Run serves registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				h.removeLocked(client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Register hands client to the hub. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true
	h.joinRoom(client, userRoom(client.UserID))
	if client.IsAdmin {
		h.joinRoom(client, adminRoom)
	}

	h.logger.WithUserID(client.UserID).WithField("admin", client.IsAdmin).Debug("Audio client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client]; ok {
		h.removeLocked(client)
		h.logger.WithUserID(client.UserID).Debug("Audio client unregistered")
	}
}

// removeLocked drops client from the hub and closes its queue. Caller holds the write lock.
func (h *Hub) removeLocked(client *Client) {
	delete(h.clients, client)
	close(client.send)

	for roomID := range client.rooms {
		if room, exists := h.rooms[roomID]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// Relay forwards a raw frame to the sender's other sessions and to every connected admin.
func (h *Hub) Relay(sender *Client, message []byte) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	delivered := 0
	seen := map[*Client]bool{sender: true}
	for _, roomID := range []string{userRoom(sender.UserID), adminRoom} {
		for client := range h.rooms[roomID] {
			if seen[client] {
				continue
			}
			seen[client] = true
			if h.enqueue(client, message) {
				delivered++
			}
		}
	}
	return delivered
}

func (h *Hub) SendToUser(userID primitive.ObjectID, event string, payload interface{}) {
	h.sendToRoom(userRoom(userID), event, payload)
}

// NotifyAdmins pushes an event to every connected admin session. Delivery is best effort.
func (h *Hub) NotifyAdmins(event string, payload interface{}) {
	h.sendToRoom(adminRoom, event, payload)
}

func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) sendToRoom(roomID, event string, payload interface{}) {
	data, err := NewFrame(event, payload)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Failed to encode websocket frame")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for client := range h.rooms[roomID] {
		h.enqueue(client, data)
	}
}

func (h *Hub) sendToClient(client *Client, event string, payload interface{}) {
	data, err := NewFrame(event, payload)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("Failed to encode websocket frame")
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.clients[client] {
		h.enqueue(client, data)
	}
}

// enqueue never blocks. A client whose queue is full loses the frame. Caller holds at least the read lock.
func (h *Hub) enqueue(client *Client, data []byte) bool {
	select {
	case client.send <- data:
		return true
	default:
		h.logger.WithUserID(client.UserID).Warn("Websocket send queue full, dropping frame")
		return false
	}
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

func userRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}
