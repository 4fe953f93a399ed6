package routes

import (
	"github.com/Dosada05/tournament-manager/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes регистрирует все HTTP и WebSocket маршруты приложения.
func SetupRoutes(
	router *chi.Mux,
	userHandler *handlers.UserHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/users", func(r chi.Router) {
		r.Post("/", userHandler.CreateHandler)
		r.Get("/", userHandler.ListHandler)
		r.Get("/{userID}", userHandler.GetByIDHandler)
		r.Get("/{userID}/profile", userHandler.GetProfileHandler)
	})

	router.Get("/leaderboard", userHandler.LeaderboardHandler)

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateHandler)
		r.Get("/", tournamentHandler.ListHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Delete("/", tournamentHandler.DeleteHandler)
			r.Patch("/status", tournamentHandler.UpdateStatusHandler)
			r.Put("/logo", tournamentHandler.UploadLogoHandler)

			r.Post("/players", tournamentHandler.RegisterPlayerHandler)

			r.Post("/bracket", tournamentHandler.GenerateBracketHandler)
			r.Get("/bracket", tournamentHandler.GetBracketHandler)

			r.Get("/matches", matchHandler.ListTournamentMatchesHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Post("/result", matchHandler.ReportResultHandler)
		r.Put("/referee", matchHandler.AssignRefereeHandler)
		r.Delete("/", matchHandler.DeleteHandler)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
