package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// caller holds one of the given roles.  It assumes Authenticate already
// ran on the route; a request without a resolved identity is rejected
// with 401, a resolved identity with the wrong role with 403.  The two
// codes are deliberately distinct: 401 means "we do not know who you
// are", 403 means "we know, and the answer is no".
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CallerIdentity(c)
            if !ok {
                return unauthorized(c)
            }
            if !allowed[id.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
