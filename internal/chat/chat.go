// Package chat implements the per-room chat sub-channel: a capped message
// log, transient typing notices, and per-message emoji reactions. Chat reads
// room membership through a resolver and never touches game state.
package chat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Events emitted by the chat sub-channel.
const (
	EventNewMessage     = "new-message"
	EventPlayerTyping   = "player-typing"
	EventReactionUpdate = "message-reaction-update"
	EventShowReaction   = "show-reaction"
)

// Message is one chat entry as broadcast and retained in the room log.
type Message struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	GameType   string `json:"gameType"`
}

// Broadcaster is the fan-out surface chat pushes events through.
type Broadcaster interface {
	ToRoom(roomKey, event string, data any)
	ToRoomExcept(roomKey, exceptConnID, event string, data any)
}

// MemberResolver reports whether a connection is seated in a room and under
// which display name. Implemented by the room managers.
type MemberResolver interface {
	MemberName(roomID, connID string) (string, bool)
}

type reactionAggregate struct {
	MessageID string
	Emoji     string
	Count     int
	Users     []string
}

type roomLog struct {
	messages  []Message
	reactions map[string]*reactionAggregate // keyed messageID + "_" + emoji
}

// Service holds every room's chat state, keyed by the composite room key.
type Service struct {
	mu        sync.Mutex
	rooms     map[string]*roomLog
	resolvers map[string]MemberResolver
	hub       Broadcaster
	logger    *zap.Logger
	limit     int
}

// NewService builds the chat sub-channel. limit caps each room's retained
// message log; the oldest entry is evicted once the cap is exceeded.
func NewService(hub Broadcaster, limit int, logger *zap.Logger) *Service {
	return &Service{
		rooms:     make(map[string]*roomLog),
		resolvers: make(map[string]MemberResolver),
		hub:       hub,
		logger:    logger,
		limit:     limit,
	}
}

// Register attaches the membership resolver for one variant.
func (s *Service) Register(variant string, r MemberResolver) {
	s.resolvers[variant] = r
}

func (s *Service) member(variant, roomID, connID string) (string, bool) {
	r, ok := s.resolvers[variant]
	if !ok {
		return "", false
	}
	return r.MemberName(roomID, connID)
}

// SendMessage appends a message to the room log and broadcasts it. Unknown
// rooms, non-members, and empty messages are dropped silently.
func (s *Service) SendMessage(variant, roomID, roomKey, connID, text string) {
	name, ok := s.member(variant, roomID, connID)
	if !ok {
		s.logger.Debug("chat message from non-member dropped", zap.String("conn", connID), zap.String("room", roomID))
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	msg := Message{
		ID:         uuid.NewString(),
		PlayerName: name,
		Message:    text,
		Timestamp:  time.Now().Format("15:04:05"),
		GameType:   variant,
	}

	s.mu.Lock()
	log := s.roomLog(roomKey)
	log.messages = append(log.messages, msg)
	if len(log.messages) > s.limit {
		log.messages = log.messages[len(log.messages)-s.limit:]
	}
	s.mu.Unlock()

	s.hub.ToRoom(roomKey, EventNewMessage, msg)
}

// Typing broadcasts a transient typing notice to everyone in the room except
// the sender. Nothing is persisted.
func (s *Service) Typing(variant, roomID, roomKey, connID string, typing bool) {
	name, ok := s.member(variant, roomID, connID)
	if !ok {
		return
	}
	s.hub.ToRoomExcept(roomKey, connID, EventPlayerTyping, map[string]any{
		"playerName": name,
		"typing":     typing,
	})
}

// React counts one reaction per author per emoji on a message and broadcasts
// the updated aggregate. Repeat reactions from the same author are ignored.
func (s *Service) React(variant, roomID, roomKey, connID, messageID, emoji, author string) {
	if _, ok := s.member(variant, roomID, connID); !ok {
		return
	}

	s.mu.Lock()
	log := s.roomLog(roomKey)
	k := messageID + "_" + emoji
	agg, ok := log.reactions[k]
	if !ok {
		agg = &reactionAggregate{MessageID: messageID, Emoji: emoji}
		log.reactions[k] = agg
	}
	for _, u := range agg.Users {
		if u == author {
			s.mu.Unlock()
			return
		}
	}
	agg.Count++
	agg.Users = append(agg.Users, author)
	count := agg.Count
	users := append([]string(nil), agg.Users...)
	s.mu.Unlock()

	s.hub.ToRoom(roomKey, EventReactionUpdate, map[string]any{
		"messageId": messageID,
		"emoji":     emoji,
		"count":     count,
		"users":     users,
	})
}

// ShowReaction passes a floating-emoji payload through to the room without
// retaining anything.
func (s *Service) ShowReaction(roomKey string, payload any) {
	s.hub.ToRoom(roomKey, EventShowReaction, payload)
}

// Messages returns a copy of a room's retained log.
func (s *Service) Messages(roomKey string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.rooms[roomKey]
	if !ok {
		return nil
	}
	return append([]Message(nil), log.messages...)
}

// DropRoom discards the log and reactions of a deleted room.
func (s *Service) DropRoom(roomKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, roomKey)
}

// Stats summarizes retained chat state for the REST surface.
func (s *Service) Stats() (rooms, messages int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, log := range s.rooms {
		messages += len(log.messages)
	}
	return len(s.rooms), messages
}

// RoomKeys lists the rooms with retained chat state.
func (s *Service) RoomKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.rooms))
	for k := range s.rooms {
		keys = append(keys, k)
	}
	return keys
}

// roomLog returns the log for roomKey, creating it on first use. Caller holds
// the lock.
func (s *Service) roomLog(roomKey string) *roomLog {
	log, ok := s.rooms[roomKey]
	if !ok {
		log = &roomLog{reactions: make(map[string]*reactionAggregate)}
		s.rooms[roomKey] = log
	}
	return log
}
