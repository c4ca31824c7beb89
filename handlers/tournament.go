package handlers

import (
	"tournament-signup-system/middleware"
	"tournament-signup-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournamentService *services.TournamentService, identity *services.IdentityService) {
	// 🔓 Public routes — anyone can browse
	app.Get("/tournaments", tournamentService.GetAllTournaments)
	app.Get("/tournaments/:id", tournamentService.GetTournamentByID)

	// 🔐 Authenticated routes. The group is scoped to /tournaments so the
	// ID-token middleware never bleeds onto other mounts (the trusted
	// /admin routes carry a service token, not an ID token).
	secured := app.Group("/tournaments", middleware.TokenAuthMiddleware(identity))

	// Creation and status are admin-gated inside the handlers
	secured.Post("/", tournamentService.CreateTournament)
	secured.Patch("/:id/status", tournamentService.UpdateTournamentStatus)

	// Signup flow
	secured.Post("/:id/join", tournamentService.JoinTournament)
	secured.Get("/:id/participants", tournamentService.GetTournamentParticipants)
}
