package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/login-auth-api/internal/utils" // access-token verification
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's identity claims into the request context.  The provided
// secret must be the access-token signing secret.  This middleware should wrap
// protected routes so that handlers can read the authenticated user via
// `c.Get("username")`, `c.Get("email")` and `c.Get("user_id")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header starts with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Verification distinguishes expiry from everything else, but for
			// a protected endpoint both outcomes mean the same thing: the
			// caller must log in (or refresh) again.
			claims, err := utils.VerifyAccess(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
			}

			c.Set("username", claims.Username)
			c.Set("email", claims.Email)
			c.Set("user_id", claims.UserID)
			return next(c)
		}
	}
}
