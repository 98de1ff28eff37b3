// Package store provides the in-memory room registry. Rooms live only for
// the lifetime of the process; there is no persistence layer.
package store

import (
	"strings"
	"sync"

	"gamehub/internal/room"
)

// MemoryStore is a registry keyed by (variant, room id), shared by all
// variant managers. Lookups are O(1) and unambiguous across variants: two
// rooms with the same id in different games never collide.
type MemoryStore struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*room.Room)}
}

func key(variant, roomID string) string {
	return variant + ":" + strings.ToUpper(roomID)
}

func (m *MemoryStore) Get(variant, roomID string) (*room.Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[key(variant, roomID)]
	return r, ok
}

func (m *MemoryStore) Save(r *room.Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[key(r.Variant, r.ID)] = r
}

func (m *MemoryStore) Delete(variant, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, key(variant, roomID))
}

// ByVariant returns the live rooms for one variant. Callers must only touch
// the returned rooms under their manager's lock.
func (m *MemoryStore) ByVariant(variant string) []*room.Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefix := variant + ":"
	var out []*room.Room
	for k, r := range m.rooms {
		if strings.HasPrefix(k, prefix) {
			out = append(out, r)
		}
	}
	return out
}

// Count returns the number of active rooms across all variants.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}
