package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/login-auth-api/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/login-auth-api/internal/middleware" // import middleware for JWT authentication
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.  The accessSecret is the
// access-token signing secret; the refresh secret never leaves the handler.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string) {
	// Operations that do not require an existing session.  Everything the
	// login and recovery flows need lives in this group.
	g := e.Group("/v1/auth")
	g.POST("/check-username", a.CheckUsername)
	g.POST("/register", a.Register)
	g.POST("/register-mail", a.RegisterMail)
	g.POST("/login", a.Login)
	// Refresh reads the HTTP-only cookie; it does not rotate the refresh token.
	g.POST("/refresh", a.Refresh)
	// Logout is idempotent: with no cookie present it answers 204.
	g.POST("/logout", a.Logout)

	// Password recovery flow: generate a one-time code, verify it, check the
	// armed reset session, then perform the single authorized password change.
	g.GET("/generate-otp", a.GenerateOTP)
	g.GET("/verify-otp", a.VerifyOTP)
	g.GET("/create-reset-session", a.CreateResetSession)
	g.PATCH("/reset-password", a.ResetPassword)

	// Routes that require a valid access token.  All handlers registered on
	// this group execute the JWTAuth middleware before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(accessSecret))
	auth.GET("/me", a.Me)
}
