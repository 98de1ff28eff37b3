// Package http exposes the REST surface: health, presence counters, room
// indexes, and the join preflight. Everything real-time goes over the
// websocket gateway instead.
package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gamehub/internal/chat"
	"gamehub/internal/maintenance"
	"gamehub/internal/room"
	"gamehub/internal/session"
)

type Handler struct {
	managers map[string]*room.Manager
	sessions *session.Registry
	chat     *chat.Service
	reporter *maintenance.Reporter
}

func NewHandler(managers []*room.Manager, sessions *session.Registry, chatSvc *chat.Service, reporter *maintenance.Reporter) *Handler {
	byVariant := make(map[string]*room.Manager, len(managers))
	for _, m := range managers {
		byVariant[m.Variant()] = m
	}
	return &Handler{
		managers: byVariant,
		sessions: sessions,
		chat:     chatSvc,
		reporter: reporter,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Online reports the live connection count.
func (h *Handler) Online(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.sessions.Count()})
}

// Stats serves the reporter's latest activity sample.
func (h *Handler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Latest())
}

// ChatStats reports retained chat totals.
func (h *Handler) ChatStats(c *gin.Context) {
	rooms, messages := h.chat.Stats()
	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "messages": messages})
}

// ChatRooms lists the rooms with retained chat state.
func (h *Handler) ChatRooms(c *gin.Context) {
	keys := h.chat.RoomKeys()
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": keys})
}

// Rooms lists a variant's active rooms.
func (h *Handler) Rooms(c *gin.Context) {
	mgr, ok := h.managers[c.Param("gameType")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game type"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": mgr.Summaries()})
}

// Room serves one room's sanitized snapshot.
func (h *Handler) Room(c *gin.Context) {
	mgr, ok := h.managers[c.Param("gameType")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game type"})
		return
	}
	snap, ok := mgr.Snapshot(c.Param("roomId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

type joinPreflightRequest struct {
	PlayerName string `json:"playerName"`
}

// JoinPreflight validates a join before the client opens its websocket. The
// actual seating happens over the gateway; this only rejects obviously bad
// input early.
func (h *Handler) JoinPreflight(c *gin.Context) {
	if _, ok := h.managers[c.Param("gameType")]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown game type"})
		return
	}
	var req joinPreflightRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.PlayerName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerName is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"roomId":     strings.ToUpper(c.Param("roomId")),
		"playerName": strings.TrimSpace(req.PlayerName),
	})
}
