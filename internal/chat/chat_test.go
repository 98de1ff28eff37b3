package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentEvent struct {
	RoomKey string
	Except  string
	Event   string
	Data    any
}

type fakeHub struct {
	mu     sync.Mutex
	events []sentEvent
}

func (f *fakeHub) ToRoom(roomKey, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{RoomKey: roomKey, Event: event, Data: data})
}

func (f *fakeHub) ToRoomExcept(roomKey, exceptConnID, event string, data any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, sentEvent{RoomKey: roomKey, Except: exceptConnID, Event: event, Data: data})
}

func (f *fakeHub) byName(event string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// fakeResolver seats conn ids under fixed names, any room.
type fakeResolver map[string]string

func (f fakeResolver) MemberName(roomID, connID string) (string, bool) {
	name, ok := f[connID]
	return name, ok
}

func newTestService(limit int) (*Service, *fakeHub) {
	hub := &fakeHub{}
	svc := NewService(hub, limit, zap.NewNop())
	svc.Register("tictactoe", fakeResolver{"conn-a": "Alice", "conn-b": "Bob"})
	return svc, hub
}

func TestSendMessage(t *testing.T) {
	svc, hub := newTestService(50)

	svc.SendMessage("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "  hello  ")

	sent := hub.byName(EventNewMessage)
	require.Len(t, sent, 1)
	msg := sent[0].Data.(Message)
	assert.Equal(t, "Alice", msg.PlayerName)
	assert.Equal(t, "hello", msg.Message)
	assert.Equal(t, "tictactoe", msg.GameType)
	assert.NotEmpty(t, msg.ID)

	stored := svc.Messages("tictactoe:ABC")
	require.Len(t, stored, 1)
	assert.Equal(t, msg.ID, stored[0].ID)
}

func TestSendMessageDropped(t *testing.T) {
	svc, hub := newTestService(50)

	// Non-member.
	svc.SendMessage("tictactoe", "ABC", "tictactoe:ABC", "conn-x", "hi")
	// Unregistered variant.
	svc.SendMessage("checkers", "ABC", "checkers:ABC", "conn-a", "hi")
	// Whitespace only.
	svc.SendMessage("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "   ")

	assert.Empty(t, hub.byName(EventNewMessage))
	assert.Empty(t, svc.Messages("tictactoe:ABC"))
}

func TestMessageLogEviction(t *testing.T) {
	svc, _ := newTestService(3)

	for i := 0; i < 5; i++ {
		svc.SendMessage("tictactoe", "ABC", "tictactoe:ABC", "conn-a", fmt.Sprintf("msg-%d", i))
	}

	stored := svc.Messages("tictactoe:ABC")
	require.Len(t, stored, 3)
	assert.Equal(t, "msg-2", stored[0].Message)
	assert.Equal(t, "msg-4", stored[2].Message)
}

func TestTypingSkipsSender(t *testing.T) {
	svc, hub := newTestService(50)

	svc.Typing("tictactoe", "ABC", "tictactoe:ABC", "conn-a", true)
	svc.Typing("tictactoe", "ABC", "tictactoe:ABC", "conn-a", false)
	svc.Typing("tictactoe", "ABC", "tictactoe:ABC", "conn-x", true)

	sent := hub.byName(EventPlayerTyping)
	require.Len(t, sent, 2)
	assert.Equal(t, "conn-a", sent[0].Except)
	data := sent[0].Data.(map[string]any)
	assert.Equal(t, "Alice", data["playerName"])
	assert.Equal(t, true, data["typing"])
	assert.Equal(t, false, sent[1].Data.(map[string]any)["typing"])
}

func TestReactionDedupe(t *testing.T) {
	svc, hub := newTestService(50)

	svc.React("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "m1", "👍", "Alice")
	svc.React("tictactoe", "ABC", "tictactoe:ABC", "conn-b", "m1", "👍", "Bob")
	// Repeat from the same author is ignored.
	svc.React("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "m1", "👍", "Alice")
	// Different emoji counts separately.
	svc.React("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "m1", "🔥", "Alice")

	sent := hub.byName(EventReactionUpdate)
	require.Len(t, sent, 3)

	second := sent[1].Data.(map[string]any)
	assert.Equal(t, 2, second["count"])
	assert.Equal(t, []string{"Alice", "Bob"}, second["users"])

	fire := sent[2].Data.(map[string]any)
	assert.Equal(t, "🔥", fire["emoji"])
	assert.Equal(t, 1, fire["count"])
}

func TestShowReactionPassthrough(t *testing.T) {
	svc, hub := newTestService(50)

	payload := map[string]any{"emoji": "🎉", "playerName": "Alice"}
	svc.ShowReaction("tictactoe:ABC", payload)

	sent := hub.byName(EventShowReaction)
	require.Len(t, sent, 1)
	assert.Equal(t, payload, sent[0].Data)
}

func TestDropRoomAndStats(t *testing.T) {
	svc, _ := newTestService(50)

	svc.SendMessage("tictactoe", "ABC", "tictactoe:ABC", "conn-a", "one")
	svc.SendMessage("tictactoe", "DEF", "tictactoe:DEF", "conn-b", "two")

	rooms, messages := svc.Stats()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 2, messages)
	assert.ElementsMatch(t, []string{"tictactoe:ABC", "tictactoe:DEF"}, svc.RoomKeys())

	svc.DropRoom("tictactoe:ABC")
	assert.Empty(t, svc.Messages("tictactoe:ABC"))
	rooms, messages = svc.Stats()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 1, messages)
}
