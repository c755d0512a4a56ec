package middleware // package middleware contains reusable HTTP middleware functions

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
    "github.com/Shantanu-Kulkarni1229/VisonCraft/internal/utils"
)

// UserSource resolves a verified token subject to a full user record.
// Satisfied by *repository.UserRepo; the interface exists so the
// middleware can be tested without a database.
type UserSource interface {
    GetByID(ctx context.Context, id uint64) (model.User, error)
}

// RevocationChecker answers whether a token id has been revoked before
// its natural expiry.  Satisfied by *repository.RevocationStore; a nil
// checker means no revocation set is configured and every token is
// treated as not revoked.
type RevocationChecker interface {
    IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// identityKey is the context key under which the resolved caller is
// stored.  Handlers read it through CallerIdentity.
const identityKey = "identity"

// Authenticate returns an Echo middleware implementing the identity
// resolver: it extracts the bearer token, verifies signature and expiry,
// consults the revocation set, and resolves the subject to a live user
// row.  Only then is the request allowed through, with the caller's
// identity (without password hash) stored in the context.
//
// Every failure answers 401 with the same generic message so the
// response does not reveal whether the token was malformed, expired,
// revoked, forged, or references a deleted account.
func Authenticate(secret string, revoked RevocationChecker, users UserSource) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c)
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.VerifyAccessToken(secret, raw)
            if err != nil {
                return unauthorized(c)
            }

            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()

            if revoked != nil {
                isRevoked, err := revoked.IsRevoked(ctx, claims.TokenID)
                if err != nil {
                    // Fail closed: an unreachable revocation set must not
                    // let possibly revoked tokens through.
                    return unauthorized(c)
                }
                if isRevoked {
                    return unauthorized(c)
                }
            }

            u, err := users.GetByID(ctx, claims.UserID)
            if err != nil || !u.IsActive {
                return unauthorized(c)
            }

            c.Set(identityKey, model.Identity{ID: u.ID, Email: u.Email, Role: u.Role})
            c.Set("user_id", u.ID)
            c.Set("role", string(u.Role))
            return next(c)
        }
    }
}

// CallerIdentity returns the identity resolved by Authenticate.  The
// boolean is false when the middleware did not run for this route.
func CallerIdentity(c echo.Context) (model.Identity, bool) {
    id, ok := c.Get(identityKey).(model.Identity)
    return id, ok
}

func unauthorized(c echo.Context) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}
