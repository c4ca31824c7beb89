package handlers

import (
	"tournament-signup-system/middleware"
	"tournament-signup-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminRoutes mounts the trusted role-assignment RPC. The whole group
// sits behind the shared service token — these routes are never reachable
// with a plain user ID token.
func SetupAdminRoutes(app *fiber.App, adminService *services.AdminService) {
	trusted := app.Group("/admin", middleware.ServiceTokenMiddleware())
	trusted.Post("/add-admin-role", adminService.AddAdminRoleHandler)
}
