package router

import (
	"github.com/clickcard/clickcard/app/controllers"
	"github.com/clickcard/clickcard/internal/pkg/middleware"
	"github.com/clickcard/clickcard/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleStart)

	// Public card pages
	app.Get("/c/:slug", controllers.HandleCardPublic)
	app.Get("/c/:slug/qr", controllers.HandleCardPublicQR)

	// Checkout redirect targets
	app.Get("/success", controllers.HandleCheckoutSuccess)
	app.Get("/cancel", controllers.HandleCheckoutCancel)

	// Payment provider callbacks authenticate via signature, not session
	app.Post("/webhooks/stripe", controllers.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
