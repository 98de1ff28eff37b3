// Package room implements the per-variant room state machine: joins and
// reconnections, move application, round progression, turn timeouts, and the
// lifetime player statistics ledger. A Manager is the sole mutator of every
// room in its variant.
package room

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a room.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Events emitted by the room state machine.
const (
	EventGameState    = "game-state"
	EventGameOver     = "game-over"
	EventGameReset    = "game-reset"
	EventTurnTimeout  = "turn-timeout"
	EventAutoNextGame = "auto-next-game"
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventRoomFull     = "room-full"
	EventStatsUpdate  = "stats-update"
	EventRoomActivity = "room-activity"
)

// Player is one seat in a room. ConnID is rebindable: a rejoin under the same
// display name keeps the seat and its mark, updating only the connection.
type Player struct {
	ConnID string
	Name   string
	Mark   string
	Stats  *PlayerStats
}

// Move records the most recent placement, kept for client animation only.
type Move struct {
	Position  int       `json:"position"`
	Cell      int       `json:"cell"`
	Mark      string    `json:"mark"`
	Timestamp time.Time `json:"timestamp"`
}

// RoundRecord is one completed round in a room's history.
type RoundRecord struct {
	GameNumber   int       `json:"gameNumber"`
	Winner       string    `json:"winner"`
	Board        []string  `json:"board"`
	WinningCells []int     `json:"winningCells"`
	Timestamp    time.Time `json:"timestamp"`
}

// Room is one authoritative game instance. All fields are owned by the
// variant's Manager; nothing outside this package may mutate them. The
// unexported fields (timer handles, round token) never leave the process.
type Room struct {
	ID           string
	Variant      string
	Players      []*Player
	Board        []string
	CurrentMark  string
	Status       Status
	Winner       string
	WinningCells []int
	GameCount    int
	RoundHistory []RoundRecord
	LastMove     *Move
	TurnDeadline *time.Time
	CreatedAt    time.Time

	// roundToken is bumped on every transition that invalidates pending
	// timers; callbacks compare it before acting.
	roundToken uint64
	turnTimer  *timerHandle
	nextTimer  *timerHandle
}

// Key returns the composite broadcast-group and registry key for a room,
// normalizing the id to upper case.
func Key(variant, roomID string) string {
	return variant + ":" + strings.ToUpper(roomID)
}

func (r *Room) key() string { return Key(r.Variant, r.ID) }

func (r *Room) playerByConn(connID string) *Player {
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p
		}
	}
	return nil
}

func (r *Room) playerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) playerByMark(mark string) *Player {
	for _, p := range r.Players {
		if p.Mark == mark {
			return p
		}
	}
	return nil
}

// StatsView is the sanitized statistics block sent to clients.
type StatsView struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Ties          int `json:"ties"`
	TotalGames    int `json:"totalGames"`
	CurrentStreak int `json:"currentStreak"`
	BestStreak    int `json:"bestStreak"`
}

// PlayerView is the sanitized player record sent to clients.
type PlayerView struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Mark  string     `json:"mark"`
	Stats *StatsView `json:"stats"`
}

// Snapshot is a fully-owned copy of room state safe to transmit: plain data
// only, no connection or timer handles, no aliasing of live slices.
type Snapshot struct {
	ID           string        `json:"id"`
	GameType     string        `json:"gameType"`
	Players      []PlayerView  `json:"players"`
	Board        []string      `json:"board"`
	CurrentMark  string        `json:"currentPlayer"`
	Status       Status        `json:"gameStatus"`
	Winner       string        `json:"winner,omitempty"`
	WinningCells []int         `json:"winningCells"`
	GameCount    int           `json:"gameCount"`
	LastMove     *Move         `json:"lastMove"`
	TurnDeadline *time.Time    `json:"turnDeadline,omitempty"`
	RoundHistory []RoundRecord `json:"roundHistory"`
}

func (r *Room) snapshot() Snapshot {
	s := Snapshot{
		ID:           r.ID,
		GameType:     r.Variant,
		Players:      make([]PlayerView, 0, len(r.Players)),
		Board:        append([]string(nil), r.Board...),
		CurrentMark:  r.CurrentMark,
		Status:       r.Status,
		Winner:       r.Winner,
		WinningCells: append([]int(nil), r.WinningCells...),
		GameCount:    r.GameCount,
		RoundHistory: copyHistory(r.RoundHistory),
	}
	if r.LastMove != nil {
		mv := *r.LastMove
		s.LastMove = &mv
	}
	if r.TurnDeadline != nil {
		d := *r.TurnDeadline
		s.TurnDeadline = &d
	}
	for _, p := range r.Players {
		s.Players = append(s.Players, playerView(p))
	}
	return s
}

func playerView(p *Player) PlayerView {
	v := PlayerView{ID: p.ConnID, Name: p.Name, Mark: p.Mark}
	if p.Stats != nil {
		v.Stats = &StatsView{
			Wins:          p.Stats.Wins,
			Losses:        p.Stats.Losses,
			Ties:          p.Stats.Ties,
			TotalGames:    p.Stats.TotalGames,
			CurrentStreak: p.Stats.CurrentStreak,
			BestStreak:    p.Stats.BestStreak,
		}
	}
	return v
}

func copyHistory(in []RoundRecord) []RoundRecord {
	out := make([]RoundRecord, 0, len(in))
	for _, rec := range in {
		rec.Board = append([]string(nil), rec.Board...)
		rec.WinningCells = append([]int(nil), rec.WinningCells...)
		out = append(out, rec)
	}
	return out
}

// Summary is the lightweight listing served by the REST room index.
type Summary struct {
	ID        string    `json:"id"`
	GameType  string    `json:"gameType"`
	Players   int       `json:"players"`
	Status    Status    `json:"gameStatus"`
	GameCount int       `json:"gameCount"`
	CreatedAt time.Time `json:"createdAt"`
}
