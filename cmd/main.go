package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/game-arena/bot"
	"github.com/Dosada05/game-arena/brackets"
	"github.com/Dosada05/game-arena/config"
	"github.com/Dosada05/game-arena/handlers"
	api "github.com/Dosada05/game-arena/routes"
	"github.com/Dosada05/game-arena/services"
	"github.com/Dosada05/game-arena/ws"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("bot_level", cfg.BotLevel))

	wsHub := ws.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	sessionManager := services.NewSessionManager(logger)
	generator := brackets.NewDoubleEliminationGenerator()
	tournamentService := services.NewTournamentService(generator, sessionManager, logger)
	matchService := services.NewMatchService(logger)

	botLevel, _ := bot.ParseLevel(cfg.BotLevel)
	botPolicy := bot.New(time.Now().UnixNano())

	coordinator := services.NewCoordinator(
		tournamentService,
		matchService,
		sessionManager,
		botPolicy,
		services.CoordinatorOptions{
			BotMoveDelay:   cfg.BotMoveDelay,
			InterGamePause: cfg.InterGamePause,
			BotLevel:       botLevel,
			AutoReady:      cfg.AutoReady,
		},
		logger,
	)
	wsHub.OnMessage = coordinator.HandleMessage
	wsHub.OnDisconnect = coordinator.Unregister
	logger.Info("services initialized")

	adminHandler := handlers.NewAdminHandler(coordinator, logger)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, coordinator, logger)

	router := chi.NewRouter()
	api.SetupRoutes(router, adminHandler, webSocketHandler)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
