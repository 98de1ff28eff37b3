package main

import (
	"flag"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	api "gamehub/internal/api/http"
	"gamehub/internal/api/ws"
	"gamehub/internal/chat"
	"gamehub/internal/config"
	"gamehub/internal/game"
	"gamehub/internal/logging"
	"gamehub/internal/maintenance"
	"gamehub/internal/room"
	"gamehub/internal/session"
	"gamehub/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.Logging.Format == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	sessions := session.NewRegistry(logger)
	rooms := store.NewMemoryStore()
	hub := ws.NewHub(sessions, game.VariantTicTacToe, logger)

	managers := []*room.Manager{
		room.NewManager(game.TicTacToe{}, rooms, room.NewStatsLedger(), hub, cfg.Game, logger),
		room.NewManager(game.Connect4{}, rooms, room.NewStatsLedger(), hub, cfg.Game, logger),
	}

	chatSvc := chat.NewService(hub, cfg.Chat.HistoryLimit, logger)
	for _, m := range managers {
		hub.RegisterManager(m)
		chatSvc.Register(m.Variant(), m)
	}
	hub.SetChat(chatSvc)

	reporter := maintenance.NewReporter(sessions, rooms, chatSvc, managers, logger)
	if err := reporter.Start(cfg.Maintenance.ReportSchedule); err != nil {
		logger.Fatal("starting reporter", zap.Error(err))
	}
	defer reporter.Stop()

	handler := api.NewHandler(managers, sessions, chatSvc, reporter)
	router := api.NewRouter(cfg.Server, handler, hub)

	logger.Info("server listening", zap.String("addr", cfg.Server.Addr()))
	if err := router.Run(cfg.Server.Addr()); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
