package ws

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"gamehub/internal/room"
)

// Inbound event names.
const (
	eventJoinRoom        = "join-room"
	eventMakeMove        = "make-move"
	eventResetGame       = "reset-game"
	eventNextGame        = "next-game"
	eventSendMessage     = "send-message"
	eventTypingStart     = "typing-start"
	eventTypingStop      = "typing-stop"
	eventMessageReaction = "message-reaction"
	eventSendReaction    = "send-reaction"
)

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	GameType   string `json:"gameType"`
}

type movePayload struct {
	RoomID   string `json:"roomId"`
	Position int    `json:"position"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type messagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

type reactionPayload struct {
	RoomID     string `json:"roomId"`
	MessageID  string `json:"messageId"`
	Emoji      string `json:"emoji"`
	PlayerName string `json:"playerName"`
}

type showReactionPayload struct {
	RoomID   string          `json:"roomId"`
	Reaction json.RawMessage `json:"reaction"`
}

// HandleWS upgrades the request and runs the connection's read loop until the
// peer goes away. One goroutine per connection; all writes go through the hub.
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	cl := &client{id: connID, conn: conn}
	h.addClient(cl)
	h.sessions.Register(connID)
	h.logger.Info("connection opened", zap.String("conn", connID))

	defer h.closeConn(cl)

	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("read loop ended", zap.String("conn", connID), zap.Error(err))
			return
		}
		h.dispatch(connID, msg)
	}
}

// dispatch routes one inbound event. Malformed payloads and events from
// connections that never joined a room are dropped silently.
func (h *Hub) dispatch(connID string, msg inbound) {
	switch msg.Event {
	case eventJoinRoom:
		h.handleJoin(connID, msg.Data)
	case eventMakeMove:
		var p movePayload
		if mgr, ok := h.managerFor(connID, msg.Data, &p); ok {
			mgr.Move(connID, p.RoomID, p.Position)
		}
	case eventResetGame, eventNextGame:
		var p roomPayload
		if mgr, ok := h.managerFor(connID, msg.Data, &p); ok {
			mgr.Reset(p.RoomID)
		}
	case eventSendMessage:
		var p messagePayload
		if e, ok := h.sessionFor(connID, msg.Data, &p); ok {
			h.chat.SendMessage(e.Variant, p.RoomID, room.Key(e.Variant, p.RoomID), connID, p.Message)
		}
	case eventTypingStart, eventTypingStop:
		var p roomPayload
		if e, ok := h.sessionFor(connID, msg.Data, &p); ok {
			h.chat.Typing(e.Variant, p.RoomID, room.Key(e.Variant, p.RoomID), connID, msg.Event == eventTypingStart)
		}
	case eventMessageReaction:
		var p reactionPayload
		if e, ok := h.sessionFor(connID, msg.Data, &p); ok {
			h.chat.React(e.Variant, p.RoomID, room.Key(e.Variant, p.RoomID), connID, p.MessageID, p.Emoji, p.PlayerName)
		}
	case eventSendReaction:
		var p showReactionPayload
		if e, ok := h.sessionFor(connID, msg.Data, &p); ok {
			h.chat.ShowReaction(room.Key(e.Variant, p.RoomID), p.Reaction)
		}
	default:
		h.logger.Debug("unknown event dropped", zap.String("conn", connID), zap.String("event", msg.Event))
	}
}

// handleJoin seats the connection in a room. The connection is subscribed to
// the broadcast group before the state transition, so it receives the join's
// own game-state frame; a rejected join rolls the subscription back and leaves
// no trace.
func (h *Hub) handleJoin(connID string, data json.RawMessage) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.PlayerName == "" {
		return
	}
	variant := p.GameType
	if variant == "" {
		variant = h.defaultVariant
	}
	mgr, ok := h.managers[variant]
	if !ok {
		h.logger.Debug("join for unknown variant dropped", zap.String("conn", connID), zap.String("variant", variant))
		return
	}

	roomKey := room.Key(variant, p.RoomID)
	h.Subscribe(connID, roomKey)
	res := mgr.Join(connID, p.RoomID, p.PlayerName)
	if !res.Joined {
		h.Unsubscribe(connID, roomKey)
		return
	}
	h.sessions.SetRoom(connID, variant, res.RoomID, p.PlayerName)
}

// managerFor decodes the payload and resolves the sender's variant manager.
func (h *Hub) managerFor(connID string, data json.RawMessage, payload any) (*room.Manager, bool) {
	e, ok := h.sessionFor(connID, data, payload)
	if !ok {
		return nil, false
	}
	mgr, ok := h.managers[e.Variant]
	return mgr, ok
}

type sessionInfo struct {
	Variant string
	RoomID  string
	Name    string
}

// sessionFor decodes the payload and looks up the sender's seated session.
func (h *Hub) sessionFor(connID string, data json.RawMessage, payload any) (sessionInfo, bool) {
	if err := json.Unmarshal(data, payload); err != nil {
		return sessionInfo{}, false
	}
	e, ok := h.sessions.Get(connID)
	if !ok || e.RoomID == "" {
		return sessionInfo{}, false
	}
	return sessionInfo{Variant: e.Variant, RoomID: e.RoomID, Name: e.PlayerName}, true
}

// closeConn tears the connection down: the seat is vacated, chat state for a
// room that emptied out is discarded, and the hub forgets the client.
func (h *Hub) closeConn(cl *client) {
	connID := cl.id
	if e, ok := h.sessions.Unregister(connID); ok && e.RoomID != "" {
		if mgr, found := h.managers[e.Variant]; found {
			if deleted := mgr.Leave(connID, e.RoomID, e.PlayerName); deleted {
				h.chat.DropRoom(room.Key(e.Variant, e.RoomID))
			}
		}
	}
	h.removeClient(connID)
	cl.conn.Close()
	h.logger.Info("connection closed", zap.String("conn", connID))
}
