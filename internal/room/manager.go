package room

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"gamehub/internal/config"
	"gamehub/internal/game"
)

// Manager owns every room of one variant. A single mutex serializes joins,
// moves, resets, leaves, and timer callbacks, so each transition runs to
// completion before the next is admitted — timers re-enter through the same
// lock and validate the room's round token before touching anything.
type Manager struct {
	mu     sync.Mutex
	engine game.Engine
	store  Store
	stats  *StatsLedger
	hub    Broadcaster
	logger *zap.Logger

	turnTimeout   time.Duration
	autoNextDelay time.Duration
}

// NewManager builds the state machine for one variant. The store may be
// shared across variants; the manager only touches its own keyspace.
func NewManager(engine game.Engine, store Store, stats *StatsLedger, hub Broadcaster, cfg config.GameConfig, logger *zap.Logger) *Manager {
	return &Manager{
		engine:        engine,
		store:         store,
		stats:         stats,
		hub:           hub,
		logger:        logger.With(zap.String("variant", engine.Variant())),
		turnTimeout:   cfg.TurnTimeout,
		autoNextDelay: cfg.AutoNextDelay,
	}
}

// Variant returns the manager's variant identifier.
func (m *Manager) Variant() string { return m.engine.Variant() }

// JoinResult tells the caller how a join attempt ended.
type JoinResult struct {
	// Joined is true for both fresh seats and reconnections.
	Joined      bool
	Reconnected bool
	// RoomID is the normalized room identifier.
	RoomID string
	// RoomKey is the broadcast-group key for the room.
	RoomKey string
}

// Join seats a player in the room, creating the room on first contact. A
// rejoin under an existing display name is treated as a reconnection and only
// rebinds the seat's connection id. A full room with an unseen name rejects
// the joiner with a room-full notice and mutates nothing.
func (m *Manager) Join(connID, roomID, name string) JoinResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID = strings.ToUpper(roomID)
	r, ok := m.store.Get(m.Variant(), roomID)
	if !ok {
		r = m.newRoom(roomID)
		m.store.Save(r)
		m.logger.Info("room created", zap.String("room", roomID))
	}

	res := JoinResult{RoomID: roomID, RoomKey: r.key()}

	switch {
	case r.playerByName(name) != nil:
		r.playerByName(name).ConnID = connID
		res.Joined = true
		res.Reconnected = true
		m.logger.Info("player reconnected", zap.String("room", roomID), zap.String("player", name))
	case len(r.Players) < 2:
		marks := m.engine.Marks()
		mark := marks[0]
		if len(r.Players) == 1 {
			mark = marks[1]
		}
		stats := m.stats.GetOrCreate(connID, name)
		r.Players = append(r.Players, &Player{ConnID: connID, Name: name, Mark: mark, Stats: stats})
		res.Joined = true
		m.logger.Info("player joined",
			zap.String("room", roomID),
			zap.String("player", name),
			zap.String("mark", mark),
			zap.Int("players", len(r.Players)))
		if len(r.Players) == 2 {
			r.Status = StatusPlaying
			m.scheduleTurnTimer(r)
		}
	default:
		m.hub.ToConn(connID, EventRoomFull, map[string]any{"message": "Room is full"})
		m.logger.Info("join rejected, room full", zap.String("room", roomID), zap.String("player", name))
		return res
	}

	m.hub.ToRoom(r.key(), EventGameState, r.snapshot())
	m.hub.ToRoom(r.key(), EventPlayerJoined, map[string]any{
		"playerName":   name,
		"playersCount": len(r.Players),
	})
	m.hub.ToRoom(r.key(), EventRoomActivity, map[string]any{
		"icon":    "👋",
		"message": fmt.Sprintf("%s joined the room", name),
	})
	m.sendStatsUpdate(r)
	return res
}

// Move applies a placement for the given connection. Every guard failure —
// unknown room, round not in play, sender not seated, out of turn, illegal
// position — drops the event silently.
func (m *Manager) Move(connID, roomID string, position int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID = strings.ToUpper(roomID)
	r, ok := m.store.Get(m.Variant(), roomID)
	if !ok || r.Status != StatusPlaying {
		return
	}
	p := r.playerByConn(connID)
	if p == nil || p.Mark != r.CurrentMark {
		return
	}
	cell, err := m.engine.Apply(r.Board, position, p.Mark)
	if err != nil {
		return
	}

	r.LastMove = &Move{Position: position, Cell: cell, Mark: p.Mark, Timestamp: time.Now()}
	m.invalidateTimers(r)

	if outcome, done := m.engine.Outcome(r.Board); done {
		m.finishRound(r, outcome)
	} else {
		r.CurrentMark = m.engine.Next(r.CurrentMark)
		m.scheduleTurnTimer(r)
		m.hub.ToRoom(r.key(), EventGameState, r.snapshot())
	}

	m.hub.ToRoom(r.key(), EventRoomActivity, m.moveActivity(p, position))
}

func (m *Manager) moveActivity(p *Player, position int) map[string]any {
	if m.engine.Variant() == game.VariantConnect4 {
		return map[string]any{
			"icon":    "🔴",
			"message": fmt.Sprintf("%s dropped %s disc in column %d", p.Name, p.Mark, position+1),
		}
	}
	return map[string]any{
		"icon":    "🎯",
		"message": fmt.Sprintf("%s placed %s", p.Name, p.Mark),
	}
}

// finishRound records the outcome, settles statistics, and schedules the
// automatic next round. Caller holds the lock.
func (m *Manager) finishRound(r *Room, outcome game.Outcome) {
	r.Status = StatusFinished
	r.GameCount++
	r.Winner = outcome.Winner
	r.WinningCells = outcome.Line

	if outcome.Winner == m.engine.DrawMark() {
		for _, p := range r.Players {
			m.stats.Record(p.ConnID, ResultTie)
		}
	} else {
		if winner := r.playerByMark(outcome.Winner); winner != nil {
			m.stats.Record(winner.ConnID, ResultWin)
		}
		if loser := r.playerByMark(m.engine.Next(outcome.Winner)); loser != nil {
			m.stats.Record(loser.ConnID, ResultLoss)
		}
	}

	r.RoundHistory = append(r.RoundHistory, RoundRecord{
		GameNumber:   r.GameCount,
		Winner:       r.Winner,
		Board:        append([]string(nil), r.Board...),
		WinningCells: append([]int(nil), r.WinningCells...),
		Timestamp:    time.Now(),
	})

	m.logger.Info("round finished",
		zap.String("room", r.ID),
		zap.String("winner", r.Winner),
		zap.Int("gameCount", r.GameCount))

	snap := r.snapshot()
	m.hub.ToRoom(r.key(), EventGameState, snap)
	m.hub.ToRoom(r.key(), EventGameOver, map[string]any{
		"winner":       snap.Winner,
		"winningCells": snap.WinningCells,
		"board":        snap.Board,
		"gameCount":    snap.GameCount,
		"roundHistory": snap.RoundHistory,
	})
	m.sendStatsUpdate(r)

	token := r.roundToken
	roomID := r.ID
	r.nextTimer = afterFunc(m.autoNextDelay, func() { m.autoNextRound(roomID, token) })
}

// autoNextRound fires after the post-round delay. The round token guards
// against a manual reset, a new round, or room deletion racing the timer.
func (m *Manager) autoNextRound(roomID string, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.Get(m.Variant(), roomID)
	if !ok || r.roundToken != token || r.Status != StatusFinished || len(r.Players) != 2 {
		return
	}
	m.startNewRound(r)
	m.hub.ToRoom(r.key(), EventAutoNextGame, map[string]any{
		"message":   "Starting next game...",
		"gameCount": r.GameCount + 1,
	})
}

// Reset starts a new round on request. Unknown rooms are ignored.
func (m *Manager) Reset(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.Get(m.Variant(), strings.ToUpper(roomID))
	if !ok {
		return
	}
	m.startNewRound(r)
}

// startNewRound reinitializes the board and rotates the starting mark: after
// an odd number of completed rounds the second mark opens and both seats swap
// marks, so the visually assigned color rotates along with turn order.
// Caller holds the lock.
func (m *Manager) startNewRound(r *Room) {
	r.Board = m.engine.NewBoard()
	r.Winner = ""
	r.WinningCells = nil
	r.LastMove = nil
	marks := m.engine.Marks()
	r.CurrentMark = marks[0]
	if r.GameCount%2 == 1 {
		r.CurrentMark = marks[1]
		for _, p := range r.Players {
			p.Mark = m.engine.Next(p.Mark)
		}
	}
	if len(r.Players) == 2 {
		r.Status = StatusPlaying
	} else {
		r.Status = StatusWaiting
	}

	m.invalidateTimers(r)
	if r.Status == StatusPlaying {
		m.scheduleTurnTimer(r)
	}

	m.hub.ToRoom(r.key(), EventGameState, r.snapshot())
	m.hub.ToRoom(r.key(), EventGameReset, map[string]any{
		"gameCount":   r.GameCount,
		"nextStarter": r.CurrentMark,
	})
}

// Leave removes the seat bound to connID. The last occupant leaving deletes
// the room outright; otherwise the room drops back to waiting, even mid-game.
// Returns whether the room still exists and whether it was deleted.
func (m *Manager) Leave(connID, roomID, name string) (deleted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	roomID = strings.ToUpper(roomID)
	r, ok := m.store.Get(m.Variant(), roomID)
	if !ok {
		return false
	}

	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.ConnID != connID {
			kept = append(kept, p)
		}
	}
	r.Players = kept
	m.invalidateTimers(r)

	if len(r.Players) == 0 {
		m.store.Delete(m.Variant(), roomID)
		m.logger.Info("room deleted", zap.String("room", roomID))
		return true
	}

	r.Status = StatusWaiting
	m.hub.ToRoom(r.key(), EventPlayerLeft, map[string]any{
		"playerName":   name,
		"playersCount": len(r.Players),
	})
	m.hub.ToRoom(r.key(), EventGameState, r.snapshot())
	m.logger.Info("player left", zap.String("room", roomID), zap.String("player", name), zap.Int("players", len(r.Players)))
	return false
}

// MemberName resolves the display name seated under connID in the room. Used
// by the chat sub-channel, which never sees game state.
func (m *Manager) MemberName(roomID, connID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.Get(m.Variant(), strings.ToUpper(roomID))
	if !ok {
		return "", false
	}
	if p := r.playerByConn(connID); p != nil {
		return p.Name, true
	}
	return "", false
}

// Snapshot returns a sanitized copy of the room, if it exists.
func (m *Manager) Snapshot(roomID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.Get(m.Variant(), strings.ToUpper(roomID))
	if !ok {
		return Snapshot{}, false
	}
	return r.snapshot(), true
}

// Summaries lists the manager's active rooms for the REST index.
func (m *Manager) Summaries() []Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	rooms := m.store.ByVariant(m.Variant())
	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, Summary{
			ID:        r.ID,
			GameType:  r.Variant,
			Players:   len(r.Players),
			Status:    r.Status,
			GameCount: r.GameCount,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// GamesPlayed sums completed rounds across the manager's active rooms.
func (m *Manager) GamesPlayed() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, r := range m.store.ByVariant(m.Variant()) {
		total += r.GameCount
	}
	return total
}

// TrackedPlayers returns the size of the variant's stats ledger.
func (m *Manager) TrackedPlayers() int { return m.stats.Len() }

func (m *Manager) newRoom(roomID string) *Room {
	return &Room{
		ID:          roomID,
		Variant:     m.Variant(),
		Board:       m.engine.NewBoard(),
		Status:      StatusWaiting,
		CurrentMark: m.engine.Marks()[0],
		CreatedAt:   time.Now(),
	}
}

// invalidateTimers bumps the round token and stops pending timers. The bump
// is what actually guards correctness: a callback that already fired off the
// timer goroutine will find a stale token and no-op. Caller holds the lock.
func (m *Manager) invalidateTimers(r *Room) {
	r.roundToken++
	r.turnTimer.Stop()
	r.nextTimer.Stop()
	r.turnTimer = nil
	r.nextTimer = nil
	r.TurnDeadline = nil
}

// scheduleTurnTimer arms the forfeit timer for the current turn on variants
// with timed turns. Caller holds the lock.
func (m *Manager) scheduleTurnTimer(r *Room) {
	if !m.engine.TimedTurns() || m.turnTimeout <= 0 {
		return
	}
	r.turnTimer.Stop()
	deadline := time.Now().Add(m.turnTimeout)
	r.TurnDeadline = &deadline
	token := r.roundToken
	roomID := r.ID
	r.turnTimer = afterFunc(m.turnTimeout, func() { m.turnTimedOut(roomID, token) })
}

// turnTimedOut forfeits the current turn. A move, reset, or leave that landed
// before the callback acquired the lock bumped the token, so the stale firing
// is discarded without a spurious toggle.
func (m *Manager) turnTimedOut(roomID string, token uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.store.Get(m.Variant(), roomID)
	if !ok || r.roundToken != token || r.Status != StatusPlaying {
		return
	}

	r.CurrentMark = m.engine.Next(r.CurrentMark)
	m.logger.Info("turn timed out", zap.String("room", roomID), zap.String("nextTurn", r.CurrentMark))
	m.hub.ToRoom(r.key(), EventTurnTimeout, map[string]any{
		"newCurrentPlayer": r.CurrentMark,
		"message":          "Turn timed out!",
	})
	m.hub.ToRoom(r.key(), EventGameState, r.snapshot())
	m.scheduleTurnTimer(r)
}

func (m *Manager) sendStatsUpdate(r *Room) {
	players := make([]map[string]any, 0, len(r.Players))
	for _, p := range r.Players {
		view := playerView(p)
		players = append(players, map[string]any{
			"name":  view.Name,
			"mark":  view.Mark,
			"stats": view.Stats,
		})
	}
	m.hub.ToRoom(r.key(), EventStatsUpdate, map[string]any{"players": players})
}
