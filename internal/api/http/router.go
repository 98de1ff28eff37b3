package http

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gamehub/internal/api/ws"
	"gamehub/internal/config"
)

// NewRouter wires the REST routes and the websocket endpoint onto one engine.
func NewRouter(cfg config.ServerConfig, h *Handler, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if allowsAnyOrigin(cfg.AllowedOrigins) {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Health)
	r.GET("/ws", hub.HandleWS)

	user := r.Group("/user")
	{
		user.GET("/online", h.Online)
		user.GET("/stats", h.Stats)
	}

	chatGroup := r.Group("/chat")
	{
		chatGroup.GET("/stats", h.ChatStats)
		chatGroup.GET("/rooms", h.ChatRooms)
	}

	games := r.Group("/games/:gameType/api")
	{
		games.GET("/rooms", h.Rooms)
		games.GET("/room/:roomId", h.Room)
		games.POST("/room/:roomId/join", h.JoinPreflight)
	}

	return r
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
