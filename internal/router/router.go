package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/relayline/sms-assistant/internal/config"
	"github.com/relayline/sms-assistant/internal/handler"    // import the handlers that implement business logic
	"github.com/relayline/sms-assistant/internal/middleware" // import middleware for JWT authentication and rate limiting
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterWebhooks registers the inbound SMS and billing webhook
// endpoints.  Both sit behind the Redis token bucket so a misbehaving
// provider retry storm cannot starve the workers; the limiter fails
// open when Redis is unavailable.
func RegisterWebhooks(e *echo.Echo, s *handler.SMSHandler, b *handler.StripeHandler,
	rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/webhooks")
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))
	g.POST("/sms", s.Receive)
	g.POST("/stripe", b.Receive)
}

// RegisterAuth registers admin authentication routes and applies the
// necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN"))
	auth.GET("/me", a.Me)
}

// RegisterAdmin registers the protected operator endpoints: membership
// stats, manual whitelist mutation and profile inspection.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.GET("/stats", h.Stats)
	g.POST("/whitelist", h.AddWhitelist)
	g.DELETE("/whitelist/:phone", h.RemoveWhitelist)
	g.GET("/users/:phone", h.GetUser)
	g.GET("/users/:phone/messages", h.GetMessages)
}
