package room

import (
	"sync"
	"time"
)

// Round results recorded against a player's lifetime statistics.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultTie  = "tie"
)

// PlayerStats is a lifetime record keyed by the connection id a player first
// joined with. Entries are created lazily and never deleted; they survive the
// player leaving and rejoining rooms for as long as the process runs.
type PlayerStats struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Ties          int       `json:"ties"`
	TotalGames    int       `json:"totalGames"`
	CurrentStreak int       `json:"currentStreak"`
	BestStreak    int       `json:"bestStreak"`
	LastActive    time.Time `json:"lastActive"`
}

// StatsLedger holds the process-lifetime statistics for one variant. Each
// variant tracks its own ledger; the same human playing both games has two
// independent records.
type StatsLedger struct {
	mu      sync.Mutex
	entries map[string]*PlayerStats
}

func NewStatsLedger() *StatsLedger {
	return &StatsLedger{entries: make(map[string]*PlayerStats)}
}

// GetOrCreate returns the stats record for connID, creating it on first use.
func (l *StatsLedger) GetOrCreate(connID, name string) *PlayerStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.entries[connID]; ok {
		s.Name = name
		return s
	}
	s := &PlayerStats{ID: connID, Name: name, LastActive: time.Now()}
	l.entries[connID] = s
	return s
}

// Record applies a round result. Streaks grow on wins, reset on losses, and
// are untouched by ties.
func (l *StatsLedger) Record(connID, result string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.entries[connID]
	if !ok {
		return
	}
	s.TotalGames++
	s.LastActive = time.Now()
	switch result {
	case ResultWin:
		s.Wins++
		s.CurrentStreak++
		if s.CurrentStreak > s.BestStreak {
			s.BestStreak = s.CurrentStreak
		}
	case ResultLoss:
		s.Losses++
		s.CurrentStreak = 0
	case ResultTie:
		s.Ties++
	}
}

// Len returns the number of tracked players.
func (l *StatsLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
