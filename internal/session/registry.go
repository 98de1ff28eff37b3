// Package session tracks live connections and the room each one currently
// occupies. The registry is how inbound events find the right variant manager
// without the transport knowing any game internals.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Entry is the per-connection record. Variant and RoomID are empty until the
// connection successfully joins a room.
type Entry struct {
	ConnID      string
	Variant     string
	RoomID      string
	PlayerName  string
	ConnectedAt time.Time
	JoinedAt    time.Time
}

// Registry is the connection directory. All writes are serialized internally.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Register adds a fresh connection with no room attached.
func (r *Registry) Register(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[connID] = &Entry{ConnID: connID, ConnectedAt: time.Now()}
	r.logger.Info("connection registered", zap.String("conn", connID), zap.Int("total", len(r.entries)))
}

// SetRoom binds a connection to the room it joined.
func (r *Registry) SetRoom(connID, variant, roomID, playerName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[connID]
	if !ok {
		return
	}
	e.Variant = variant
	e.RoomID = roomID
	e.PlayerName = playerName
	e.JoinedAt = time.Now()
}

// Get returns a copy of the entry for connID.
func (r *Registry) Get(connID string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[connID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Unregister drops the connection and returns its final entry, so the caller
// can notify the room it belonged to.
func (r *Registry) Unregister(connID string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[connID]
	if !ok {
		return Entry{}, false
	}
	delete(r.entries, connID)
	r.logger.Info("connection unregistered", zap.String("conn", connID), zap.Int("total", len(r.entries)))
	return *e, true
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
