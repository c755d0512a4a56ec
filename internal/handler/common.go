package handler // handler defines http handlers

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/middleware"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

// dbTimeout bounds every database call made from a handler.  External
// calls (payment gateway) carry their own configured budget.
const dbTimeout = 5 * time.Second

// caller returns the identity resolved by the authentication middleware.
// Routes are registered behind that middleware, so a missing identity
// means a wiring mistake; the request is rejected rather than trusted.
func caller(c echo.Context) (model.Identity, bool) {
    return middleware.CallerIdentity(c)
}

// errUnauthorized is the single generic 401 body.  Authorization
// failures never explain themselves.
func errUnauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

func errForbidden(c echo.Context) error {
    return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}
