// Package maintenance runs the periodic housekeeping jobs: a scheduled
// activity report over rooms, connections, and completed games. The latest
// sample is retained for the REST stats endpoint.
package maintenance

import (
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"gamehub/internal/chat"
	"gamehub/internal/room"
	"gamehub/internal/session"
)

// RoomCounter reports active room totals. Implemented by the room store.
type RoomCounter interface {
	Count() int
}

// Sample is one activity snapshot.
type Sample struct {
	Timestamp      time.Time      `json:"timestamp"`
	Connections    int            `json:"connections"`
	Rooms          int            `json:"rooms"`
	ChatRooms      int            `json:"chatRooms"`
	ChatMessages   int            `json:"chatMessages"`
	GamesPlayed    map[string]int `json:"gamesPlayed"`
	TrackedPlayers map[string]int `json:"trackedPlayers"`
}

// Reporter samples hub activity on a cron schedule.
type Reporter struct {
	cron     *cron.Cron
	sessions *session.Registry
	rooms    RoomCounter
	chat     *chat.Service
	managers []*room.Manager
	logger   *zap.Logger
	latest   atomic.Pointer[Sample]
}

func NewReporter(sessions *session.Registry, rooms RoomCounter, chatSvc *chat.Service, managers []*room.Manager, logger *zap.Logger) *Reporter {
	return &Reporter{
		cron:     cron.New(),
		sessions: sessions,
		rooms:    rooms,
		chat:     chatSvc,
		managers: managers,
		logger:   logger,
	}
}

// Start registers the report job and launches the scheduler. An immediate
// sample is taken so the stats endpoint never serves empty data.
func (r *Reporter) Start(schedule string) error {
	if _, err := r.cron.AddFunc(schedule, r.report); err != nil {
		return err
	}
	r.report()
	r.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}

// Latest returns the most recent sample.
func (r *Reporter) Latest() Sample {
	if s := r.latest.Load(); s != nil {
		return *s
	}
	return Sample{}
}

func (r *Reporter) report() {
	chatRooms, chatMessages := r.chat.Stats()
	s := Sample{
		Timestamp:      time.Now(),
		Connections:    r.sessions.Count(),
		Rooms:          r.rooms.Count(),
		ChatRooms:      chatRooms,
		ChatMessages:   chatMessages,
		GamesPlayed:    make(map[string]int, len(r.managers)),
		TrackedPlayers: make(map[string]int, len(r.managers)),
	}
	for _, m := range r.managers {
		s.GamesPlayed[m.Variant()] = m.GamesPlayed()
		s.TrackedPlayers[m.Variant()] = m.TrackedPlayers()
	}
	r.latest.Store(&s)

	r.logger.Info("activity report",
		zap.Int("connections", s.Connections),
		zap.Int("rooms", s.Rooms),
		zap.Int("chatRooms", s.ChatRooms),
		zap.Int("chatMessages", s.ChatMessages),
		zap.Any("gamesPlayed", s.GamesPlayed))
}
