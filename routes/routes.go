package routes

import (
	"github.com/Dosada05/game-arena/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	adminHandler *handlers.AdminHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Get("/ws", webSocketHandler.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/games", adminHandler.GamesHandler)

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", adminHandler.ListHandler)
			r.Post("/", adminHandler.CreateHandler)
			r.Post("/import", adminHandler.ImportHandler)

			r.Route("/{tournamentID}", func(r chi.Router) {
				r.Post("/bots", adminHandler.AddBotsHandler)
				r.Post("/start", adminHandler.StartHandler)
				r.Post("/finish", adminHandler.FinishHandler)
				r.Get("/export", adminHandler.ExportHandler)
			})
		})
	})
}
