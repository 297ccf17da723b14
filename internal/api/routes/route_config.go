package routes

import (
	"MedFund-Backend/domain"
	"MedFund-Backend/internal/api/handlers"
	"MedFund-Backend/internal/metrics"
	"MedFund-Backend/internal/middleware"
	"MedFund-Backend/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App             *fiber.App
	UserHandler     handlers.UserHandler
	RequestHandler  handlers.RequestHandler
	DonationHandler handlers.DonationHandler
	PaymentHandler  handlers.PaymentHandler
	HomeHandler     handlers.HomeHandler
	Middleware      middleware.Middleware
	JWTService      jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.User()
	c.Admin()
	c.Home()
	c.Payment()
	c.GuestRoute()
}

func (c *Config) auth(roles ...string) []fiber.Handler {
	chain := []fiber.Handler{c.Middleware.AuthMiddleware(c.JWTService)}
	if len(roles) > 0 {
		chain = append(chain, c.Middleware.RoleMiddleware(roles...))
	}
	return chain
}

func with(chain []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(append([]fiber.Handler{}, chain...), h)
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users")
	// user routes
	{
		user.Post("/register", c.UserHandler.Register)
		user.Post("/login", c.UserHandler.Login)
		user.Get("/me", with(c.auth(), c.UserHandler.Me)...)
	}
}

func (c *Config) Admin() {
	admin := c.App.Group("/admin", c.auth(domain.RoleAdmin)...)
	{
		admin.Get("/GetAllDonationRequest", c.RequestHandler.GetAllDonationRequests)
		admin.Get("/GetSingleDonationRequest/:id", c.RequestHandler.GetSingleDonationRequest)
		admin.Put("/UpdateRequestStatus/:id/:status", c.RequestHandler.UpdateRequestStatus)
		admin.Delete("/deleteDonationRequest/:id", c.RequestHandler.DeleteDonationRequest)
		admin.Get("/GetRequestDonations/:id", c.DonationHandler.GetRequestDonations)
	}
}

func (c *Config) Home() {
	home := c.App.Group("/Home")
	{
		home.Get("/GetdonationStatus/:id", c.DonationHandler.GetDonationStatus)
		home.Get("/GetApprovedRequests", c.RequestHandler.GetApprovedRequests)
		home.Get("/ExchangeRate", c.HomeHandler.ExchangeRate)
		home.Post("/CreateDonationRequest", with(c.auth(domain.RoleRecipient), c.RequestHandler.CreateDonationRequest)...)
		home.Get("/MyRequests", with(c.auth(domain.RoleRecipient), c.RequestHandler.GetMyRequests)...)
		home.Get("/MyDonations", with(c.auth(domain.RoleDonor), c.DonationHandler.GetMyDonations)...)
	}
}

func (c *Config) Payment() {
	payment := c.App.Group("/payment", c.auth(domain.RoleDonor, domain.RoleAdmin)...)
	{
		payment.Post("/create-intent", c.PaymentHandler.CreateIntent)
		payment.Post("/confirm", c.PaymentHandler.Confirm)
	}
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", metrics.Handler())
	c.App.Post("/webhook/stripe", c.PaymentHandler.StripeWebhook)
	c.App.Post("/webhook/midtrans", c.PaymentHandler.MidtransWebhook)
}
