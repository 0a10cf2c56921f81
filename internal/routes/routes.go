package routes

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/example/userauth/internal/handlers"
	"github.com/example/userauth/internal/middleware"
	"github.com/example/userauth/internal/services"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Port    string
	Auth    *services.AuthService
	Profile *services.ProfileService
	// UploadDir is served under services.UploadsRoute when avatars are stored
	// locally. Empty disables the static route.
	UploadDir string
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	resetHandler := handlers.NewPasswordResetHandler(deps.Auth)
	profileHandler := handlers.NewProfileHandler(deps.Profile)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"msg": fmt.Sprintf("server works fine on port %s", deps.Port)})
	})

	if deps.UploadDir != "" {
		app.Static(services.UploadsRoute, deps.UploadDir)
	}

	users := app.Group("/api/users")

	// Auth routes
	users.Post("/regist", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/reset", resetHandler.RequestReset)
	users.Post("/reset-password", resetHandler.ConfirmReset)

	// Protected routes
	requireAuth := middleware.AuthMiddleware(deps.Auth)

	users.Post("/logout", requireAuth, authHandler.Logout)
	users.Get("/profile-get", requireAuth, profileHandler.GetProfile)
	users.Post("/profile-edit", requireAuth, profileHandler.UpdateProfile)
	users.Post("/profile-avatar", requireAuth, profileHandler.UploadAvatar)
}
