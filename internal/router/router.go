// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login and
// refresh are unauthenticated; logout and /v1/me require a valid access
// token so the handler knows which token id to revoke and which user to
// report.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authMW echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, authMW)

	auth := e.Group("/v1", authMW)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog endpoints. The
// optional cache middleware serves repeated reads from Redis; pass nil to
// skip caching.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, cacheMW echo.MiddlewareFunc) {
	mws := []echo.MiddlewareFunc{}
	if cacheMW != nil {
		mws = append(mws, cacheMW)
	}
	e.GET("/v1/services", cat.ListServices, mws...)
	e.GET("/v1/services/:id", cat.GetService, mws...)
}

// RegisterWebhooks registers the gateway callback endpoint. It is
// authenticated by the payload signature, not by JWT, so no auth middleware
// applies here.
func RegisterWebhooks(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/v1/webhooks/payment", w.HandleWebhook)
}
