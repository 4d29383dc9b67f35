package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clickcard/clickcard/internal/pkg/usercontext"
)

func isLoggedIn(c *fiber.Ctx) bool {
	return usercontext.IsLoggedIn(c)
}

func currentUser(c *fiber.Ctx) usercontext.UserContext {
	return usercontext.GetUserContext(c)
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   code,
		"message": message,
	})
}
