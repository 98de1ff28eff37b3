package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gamehub/internal/chat"
	"gamehub/internal/config"
	"gamehub/internal/game"
	"gamehub/internal/room"
	"gamehub/internal/session"
	"gamehub/internal/store"
)

type wireEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) (*httptest.Server, *session.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	sessions := session.NewRegistry(logger)
	rooms := store.NewMemoryStore()
	hub := NewHub(sessions, game.VariantTicTacToe, logger)

	managers := []*room.Manager{
		room.NewManager(game.TicTacToe{}, rooms, room.NewStatsLedger(), hub, config.GameConfig{AutoNextDelay: time.Hour}, logger),
		room.NewManager(game.Connect4{}, rooms, room.NewStatsLedger(), hub, config.GameConfig{TurnTimeout: time.Hour, AutoNextDelay: time.Hour}, logger),
	}
	chatSvc := chat.NewService(hub, 50, logger)
	for _, m := range managers {
		hub.RegisterManager(m)
		chatSvc.Register(m.Variant(), m)
	}
	hub.SetChat(chatSvc)

	r := gin.New()
	r.GET("/ws", hub.HandleWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: data}))
}

// waitFor reads frames until one matches the wanted event, discarding the
// rest.
func waitFor(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg wireEvent
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q", event)
		if msg.Event == event {
			return msg.Data
		}
	}
}

func TestJoinAndState(t *testing.T) {
	srv, sessions := newTestServer(t)
	alice := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "abc", "playerName": "Alice"})
	data := waitFor(t, alice, room.EventGameState)

	var snap struct {
		ID       string `json:"id"`
		GameType string `json:"gameType"`
		Status   string `json:"gameStatus"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, "ABC", snap.ID)
	assert.Equal(t, game.VariantTicTacToe, snap.GameType)
	assert.Equal(t, "waiting", snap.Status)

	bob := dial(t, srv)
	send(t, bob, "join-room", map[string]any{"roomId": "ABC", "playerName": "Bob"})

	// Alice's own join also emitted a player-joined; wait for Bob's.
	var payload struct {
		PlayerName   string `json:"playerName"`
		PlayersCount int    `json:"playersCount"`
	}
	for payload.PlayerName != "Bob" {
		joined := waitFor(t, alice, room.EventPlayerJoined)
		require.NoError(t, json.Unmarshal(joined, &payload))
	}
	assert.Equal(t, 2, payload.PlayersCount)

	assert.Eventually(t, func() bool { return sessions.Count() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRoomFull(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)
	carol := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "abc", "playerName": "Alice"})
	waitFor(t, alice, room.EventGameState)
	send(t, bob, "join-room", map[string]any{"roomId": "abc", "playerName": "Bob"})
	waitFor(t, bob, room.EventGameState)

	send(t, carol, "join-room", map[string]any{"roomId": "abc", "playerName": "Carol"})
	waitFor(t, carol, room.EventRoomFull)
}

func TestMoveBroadcast(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "abc", "playerName": "Alice"})
	waitFor(t, alice, room.EventGameState)
	send(t, bob, "join-room", map[string]any{"roomId": "abc", "playerName": "Bob"})
	waitFor(t, bob, room.EventGameState)

	send(t, alice, "make-move", map[string]any{"roomId": "abc", "position": 4})

	var snap struct {
		Board       []string `json:"board"`
		CurrentMark string   `json:"currentPlayer"`
	}
	for {
		data := waitFor(t, bob, room.EventGameState)
		require.NoError(t, json.Unmarshal(data, &snap))
		if snap.Board[4] != "" {
			break
		}
	}
	assert.Equal(t, game.MarkX, snap.Board[4])
	assert.Equal(t, game.MarkO, snap.CurrentMark)
}

func TestChatOverSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "abc", "playerName": "Alice"})
	waitFor(t, alice, room.EventGameState)
	send(t, bob, "join-room", map[string]any{"roomId": "abc", "playerName": "Bob"})
	waitFor(t, bob, room.EventGameState)

	send(t, alice, "send-message", map[string]any{"roomId": "abc", "message": "good luck"})
	data := waitFor(t, bob, chat.EventNewMessage)

	var msg chat.Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "Alice", msg.PlayerName)
	assert.Equal(t, "good luck", msg.Message)
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	srv, sessions := newTestServer(t)
	alice := dial(t, srv)
	bob := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "abc", "playerName": "Alice"})
	waitFor(t, alice, room.EventGameState)
	send(t, bob, "join-room", map[string]any{"roomId": "abc", "playerName": "Bob"})
	waitFor(t, bob, room.EventGameState)

	bob.Close()

	left := waitFor(t, alice, room.EventPlayerLeft)
	var payload struct {
		PlayerName string `json:"playerName"`
	}
	require.NoError(t, json.Unmarshal(left, &payload))
	assert.Equal(t, "Bob", payload.PlayerName)

	assert.Eventually(t, func() bool { return sessions.Count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestConnect4OverSocket(t *testing.T) {
	srv, _ := newTestServer(t)
	alice := dial(t, srv)

	send(t, alice, "join-room", map[string]any{"roomId": "c4", "playerName": "Alice", "gameType": game.VariantConnect4})
	data := waitFor(t, alice, room.EventGameState)

	var snap struct {
		GameType string   `json:"gameType"`
		Board    []string `json:"board"`
	}
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Equal(t, game.VariantConnect4, snap.GameType)
	assert.Len(t, snap.Board, game.Connect4Rows*game.Connect4Cols)
}
