package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/MarvinHoffmann/DropGate/internal/pkg/oauth"
)

// AuthRouter serves the provider OAuth handshake. The completed handshake
// hands the caller their provider user id and access token; all later API
// calls carry those as plain credentials.
type AuthRouter struct {
}

func (h AuthRouter) InstallRouter(app *fiber.App) {
	oauth.Setup()

	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", handleOAuthCallback)
	app.Get("/logout/:provider", handleLogout)
}

func handleOAuthCallback(c *fiber.Ctx) error {
	user, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"provider":     user.Provider,
		"user_id":      user.UserID,
		"nickname":     user.NickName,
		"access_token": user.AccessToken,
	})
}

func handleLogout(c *fiber.Ctx) error {
	if err := gothfiber.Logout(c); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_server_error",
			"message": err.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"logged_out": true})
}

func NewAuthRouter() *AuthRouter {
	return &AuthRouter{}
}
