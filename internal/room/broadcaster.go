package room

// Broadcaster is the fan-out surface the state machine pushes events through.
// Room keys are the composite values produced by Key.
type Broadcaster interface {
	// ToRoom sends an event to every connection subscribed to the room.
	ToRoom(roomKey, event string, data any)
	// ToConn sends an event to a single connection.
	ToConn(connID, event string, data any)
}

// Store is the registry the manager keeps its rooms in. Implementations must
// be safe for concurrent use; the manager additionally serializes all room
// mutations behind its own lock.
type Store interface {
	Get(variant, roomID string) (*Room, bool)
	Save(r *Room)
	Delete(variant, roomID string)
	ByVariant(variant string) []*Room
	Count() int
}
