package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/clickcard/clickcard/app/controllers"
	"github.com/clickcard/clickcard/internal/pkg/middleware"
)

// Pong is the ping endpoint response body.
type Pong struct {
	Ping string `json:"ping"`
}

// APIServer bundles the public v1 handlers
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// RegisterHandlers attaches all v1 routes to the given router group.
func RegisterHandlers(r fiber.Router, s *APIServer) {
	r.Get("/ping", s.GetPing)

	auth := r.Group("/auth")
	auth.Post("/register", controllers.HandleAuthRegister)
	auth.Post("/login", controllers.HandleAuthLogin)
	auth.Post("/logout", controllers.HandleAuthLogout)

	cards := r.Group("/cards", middleware.RequireAPISessionAuth)
	cards.Get("/", controllers.HandleCardList)
	cards.Post("/", controllers.HandleCardCreate)
	cards.Get("/:uuid", controllers.HandleCardGet)
	cards.Put("/:uuid", controllers.HandleCardUpdate)
	cards.Delete("/:uuid", controllers.HandleCardDelete)

	billing := r.Group("/billing", middleware.RequireAPISessionAuth)
	billing.Post("/checkout", controllers.HandleCreateCheckoutSession)
	billing.Get("/status", controllers.HandleBillingStatus)
}
