package handlers

import (
	"tournament-signup-system/middleware"
	"tournament-signup-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, identity *services.IdentityService) {
	// 🔓 Public
	app.Post("/auth/signup", authService.SignUpHandler)
	app.Post("/auth/signin", authService.SignInHandler)

	// 🔐 Authenticated
	secured := app.Group("/auth", middleware.TokenAuthMiddleware(identity))
	secured.Post("/signout", authService.SignOutHandler)
	secured.Get("/session", authService.GetSessionHandler)
	secured.Post("/refresh", authService.RefreshSessionHandler)
}
