package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleStart is the API landing route.
func HandleStart(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"name":   "clickcard",
		"status": "ok",
	})
}

// HandleCheckoutSuccess is where Stripe redirects after a completed checkout.
// Entitlements are granted by the webhook, not by reaching this page.
func HandleCheckoutSuccess(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      true,
		"message": "payment received, your plan will update in a moment",
	})
}

// HandleCheckoutCancel is where Stripe redirects after an abandoned checkout.
func HandleCheckoutCancel(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":      false,
		"message": "checkout canceled",
	})
}
