package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/handler"
)

// RegisterOrders registers the order and checkout endpoints under /v1. All
// routes require a valid access token; ownership checks happen inside the
// handlers so that staff and admins can reach other users' orders while
// customers stay pinned to their own.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, ck *handler.CheckoutHandler, authMW echo.MiddlewareFunc) {
	g := e.Group("/v1", authMW)

	g.POST("/orders", o.CreateOrder)
	g.GET("/orders", o.ListOrders)
	g.GET("/orders/:id", o.GetOrder)

	g.POST("/orders/:id/checkout", ck.ProcessCheckout)
	g.POST("/orders/:id/confirm", ck.ConfirmCheckout)
}
