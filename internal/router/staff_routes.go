package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/handler"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/middleware"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

// RegisterStaff registers endpoints reserved for staff and admin users:
// moving orders through their lifecycle, browsing all orders, and managing
// the service catalog.
func RegisterStaff(e *echo.Echo, o *handler.OrderHandler, cat *handler.CatalogHandler, authMW echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		authMW,
		middleware.RequireRole(model.RoleStaff, model.RoleAdmin),
	)

	g.PATCH("/orders/:id/status", o.UpdateStatus)

	// Admin views reuse the order list handler; staff and admins see every
	// owner unless they filter explicitly.
	g.GET("/admin/orders", o.ListOrders)
	g.POST("/admin/services", cat.CreateService)
}
