package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Kelvin-dev001/nebsam-cert-system/internal/api/http/handlers"
	"github.com/Kelvin-dev001/nebsam-cert-system/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Certificates   *handlers.CertificatesHandler
	MasterData     *handlers.MasterDataHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login/request-otp", cfg.Auth.RequestLoginOTP)
	authGroup.Post("/login/verify-otp", cfg.Auth.VerifyLoginOTP)

	protected := api.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	protected.Get("/vehicle-makes", cfg.MasterData.VehicleMakes)
	protected.Get("/body-types", cfg.MasterData.BodyTypes)
	protected.Get("/devices", cfg.MasterData.Devices)

	certs := protected.Group("/certificates")
	certs.Post("/", cfg.Certificates.Create)
	certs.Get("/", cfg.Certificates.List)
	certs.Get("/:id", cfg.Certificates.Get)
	certs.Put("/:id", cfg.Certificates.Update)
	certs.Delete("/:id", cfg.Certificates.Delete)
	certs.Post("/:id/share", cfg.Certificates.Share)
	certs.Post("/:id/email", cfg.Certificates.Email)
	certs.Post("/:id/whatsapp", cfg.Certificates.WhatsApp)

	// Approval is reserved for admins; the OTP adds the second factor on top.
	approval := certs.Group("/:id/approve", auth.RequireAdmin())
	approval.Post("/request-otp", cfg.Certificates.RequestApprovalOTP)
	approval.Post("/verify-otp", cfg.Certificates.VerifyApprovalOTP)
}
