// Package ws is the transport gateway: it upgrades connections, keeps the
// per-room broadcast groups, and routes inbound events to the room managers
// and the chat sub-channel.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamehub/internal/chat"
	"gamehub/internal/room"
	"gamehub/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope is the wire frame in both directions.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// client is one live connection. The write mutex serializes frames from the
// manager goroutines and timer callbacks that fan out through the hub.
type client struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) send(event string, data any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(Envelope{Event: event, Data: data})
}

// Hub owns the broadcast groups. Groups are keyed by the composite room key
// (variant:ROOMID), so same-named rooms in different variants never share a
// fan-out target.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	groups  map[string]map[string]*client
	joined  map[string]map[string]struct{} // connID → group keys

	managers       map[string]*room.Manager
	chat           *chat.Service
	sessions       *session.Registry
	defaultVariant string
	logger         *zap.Logger
}

func NewHub(sessions *session.Registry, defaultVariant string, logger *zap.Logger) *Hub {
	return &Hub{
		clients:        make(map[string]*client),
		groups:         make(map[string]map[string]*client),
		joined:         make(map[string]map[string]struct{}),
		managers:       make(map[string]*room.Manager),
		sessions:       sessions,
		defaultVariant: defaultVariant,
		logger:         logger,
	}
}

// RegisterManager attaches a variant's room state machine.
func (h *Hub) RegisterManager(m *room.Manager) {
	h.managers[m.Variant()] = m
}

// SetChat attaches the chat sub-channel. Two-phase because chat broadcasts
// through the hub.
func (h *Hub) SetChat(c *chat.Service) {
	h.chat = c
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	h.joined[c.id] = make(map[string]struct{})
}

func (h *Hub) removeClient(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.joined[connID] {
		delete(h.groups[key], connID)
		if len(h.groups[key]) == 0 {
			delete(h.groups, key)
		}
	}
	delete(h.joined, connID)
	delete(h.clients, connID)
}

// Subscribe adds a connection to a broadcast group.
func (h *Hub) Subscribe(connID, roomKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[connID]
	if !ok {
		return
	}
	if _, ok := h.groups[roomKey]; !ok {
		h.groups[roomKey] = make(map[string]*client)
	}
	h.groups[roomKey][connID] = c
	h.joined[connID][roomKey] = struct{}{}
}

// Unsubscribe removes a connection from a broadcast group.
func (h *Hub) Unsubscribe(connID, roomKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.groups[roomKey], connID)
	if len(h.groups[roomKey]) == 0 {
		delete(h.groups, roomKey)
	}
	delete(h.joined[connID], roomKey)
}

// ToRoom sends an event to every connection in the group.
func (h *Hub) ToRoom(roomKey, event string, data any) {
	h.fanOut(roomKey, "", event, data)
}

// ToRoomExcept sends an event to the group minus one connection.
func (h *Hub) ToRoomExcept(roomKey, exceptConnID, event string, data any) {
	h.fanOut(roomKey, exceptConnID, event, data)
}

func (h *Hub) fanOut(roomKey, exceptConnID, event string, data any) {
	h.mu.RLock()
	members := make([]*client, 0, len(h.groups[roomKey]))
	for id, c := range h.groups[roomKey] {
		if id != exceptConnID {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range members {
		if err := c.send(event, data); err != nil {
			h.logger.Warn("broadcast write failed", zap.String("conn", c.id), zap.String("event", event), zap.Error(err))
		}
	}
}

// ToConn sends an event to a single connection.
func (h *Hub) ToConn(connID, event string, data any) {
	h.mu.RLock()
	c, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.send(event, data); err != nil {
		h.logger.Warn("direct write failed", zap.String("conn", connID), zap.String("event", event), zap.Error(err))
	}
}
