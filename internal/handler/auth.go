package handler

import (
	"context"  // provides context with cancellation for DB and Redis calls
	"errors"   // sentinel error matching
	"net/http" // HTTP status codes and cookie primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts, cookie lifetimes

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/login-auth-api/internal/config"     // app configuration
	"github.com/iliyamo/login-auth-api/internal/mailer"     // email rendering + publishing
	"github.com/iliyamo/login-auth-api/internal/model"      // user record type
	"github.com/iliyamo/login-auth-api/internal/queue"      // email event payloads
	"github.com/iliyamo/login-auth-api/internal/repository" // sentinel repository errors
	"github.com/iliyamo/login-auth-api/internal/reset"      // recovery state machine errors
	"github.com/iliyamo/login-auth-api/internal/utils"      // token issuing, password hashing
)

// refreshCookieName is the single cookie slot the refresh token lives in.
// Issuing a new refresh token overwrites it; there is no server-side
// revocation list.
const refreshCookieName = "token"

// statusSessionExpired is the non-standard status the recovery flow uses for
// a closed reset-session gate.
const statusSessionExpired = 440

// UserStore is the slice of the user repository the auth endpoints need.
// Lookup misses are reported as repository.ErrUserNotFound, never as nil
// dereferences or raw sql errors.
type UserStore interface {
	Create(ctx context.Context, username, email, password, profile string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	UpdatePassword(ctx context.Context, username, password string, cost int) error
}

// ResetStore is the per-username recovery state machine (pending code,
// armed reset session).
type ResetStore interface {
	SaveCode(ctx context.Context, username, code string, ttl time.Duration) error
	VerifyCode(ctx context.Context, username, submitted string, armTTL time.Duration) error
	Armed(ctx context.Context, username string) (bool, error)
	Consume(ctx context.Context, username string) (bool, error)
}

// EmailPublisher hands a rendered email to the outbound pipeline.
type EmailPublisher func(ctx context.Context, ev queue.AuthEmailEvent) error

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Users   UserStore
	Reset   ResetStore
	Publish EmailPublisher
}

func NewAuthHandler(cfg config.Config, u UserStore, r ResetStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Reset: r, Publish: mailer.PublishAuthEmail}
}

// ----- DTOs -----

type checkUsernameReq struct {
	Username string `json:"username"`
}
type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Profile  string `json:"profile"`
}
type registerMailReq struct {
	Username  string `json:"username"`
	UserEmail string `json:"userEmail"`
	Text      string `json:"text"`
	Subject   string `json:"subject"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type resetPasswordReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userPart is the sanitized user shape returned by refresh. The password
// hash is not part of the type, so it cannot be serialized by accident.
type userPart struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Profile  string `json:"profile,omitempty"`
}

func sanitize(u model.User) userPart {
	return userPart{ID: u.ID, Username: u.Username, Email: u.Email, Profile: u.Profile}
}

// CheckUsername: confirm a username exists before the client starts the
// recovery flow. The match is case-insensitive.
func (h *AuthHandler) CheckUsername(c echo.Context) error {
	var req checkUsernameReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username is required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByUsername(ctx, req.Username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Unauthorized user, invalid username. Please try again."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Valid username, continue!"})
}

// Register: create a new account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, req.Profile, h.Cfg.BcryptCost); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Username already used! Please try another name!"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email address already used! Please try another address!"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create user failed"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "New user " + req.Username + " created!"})
}

// RegisterMail: render a welcome (or custom) email and hand it to the
// outbound pipeline. Delivery failures surface as 500; the handler does
// not retry.
func (h *AuthHandler) RegisterMail(c echo.Context) error {
	var req registerMailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.UserEmail) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Recipient email is required!"})
	}

	ev := queue.AuthEmailEvent{
		To:       strings.TrimSpace(req.UserEmail),
		Username: req.Username,
		Subject:  req.Subject,
		Body:     mailer.ComposeBody(req.Username, req.Text),
		QueuedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Publish(c.Request().Context(), ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "There was an error sending the email. Please try again later."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "You should receive an email from us. Please check your email address!"})
}

// Login: verify credentials, mint the token pair, set the refresh cookie.
// An unknown username and a wrong password produce byte-identical responses
// so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a comparison so the miss takes as long as a mismatch.
			utils.BurnPasswordCheck(req.Password)
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized user, invalid username or password. Please try again."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized user, invalid username or password. Please try again."})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.Username, u.Email, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.Username, h.Cfg.RefreshTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue refresh failed"})
	}

	c.SetCookie(h.refreshCookie(refresh.Token, h.Cfg.RefreshTTLHours*3600))

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Login successfully...",
		"username":     u.Username,
		"access_token": access.Token,
	})
}

// Refresh: mint a new access token from the refresh cookie. The token is
// verified before anything touches the user store, so an expired or forged
// cookie never triggers a lookup. The refresh token itself is not rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Unauthorized user! Please log in again."})
	}

	claims, err := utils.VerifyRefresh(h.Cfg.RefreshSecret, cookie.Value)
	if err != nil {
		// Expired and malformed both end here; no claims are trusted.
		return c.JSON(http.StatusForbidden, echo.Map{"message": "You don't have access."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "The user belonging to this token does no longer exist."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u.Username, u.Email, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue access failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Refresh token created successfully",
		"user":         sanitize(u),
		"access_token": access.Token,
	})
}

// Logout: clear the refresh cookie if present. Idempotent; a missing cookie
// is answered with 204 and no other effect.
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, err := c.Cookie(refreshCookieName); err != nil {
		return c.NoContent(http.StatusNoContent)
	}
	c.SetCookie(h.refreshCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"message": "Cookies cleared."})
}

// GenerateOTP: issue a 6-digit one-time code for the named user and store it
// with a TTL. Generating a new code restarts the recovery flow for that user
// and revokes any armed reset session.
func (h *AuthHandler) GenerateOTP(c echo.Context) error {
	username := strings.TrimSpace(c.QueryParam("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username is required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Unauthorized user, invalid username. Please try again."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}

	code, err := utils.GenerateOTP(6, utils.OTPOptions{}) // digits only
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "generate otp failed"})
	}
	if err := h.Reset.SaveCode(ctx, username, code, h.otpTTL()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "store otp failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"otpCode": code})
}

// VerifyOTP: compare the submitted code against the pending one. The whole
// decision funnels into a single response: either the code matched and the
// reset session is armed, or it did not and nothing changed.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	username := strings.TrimSpace(c.QueryParam("username"))
	otpCode := strings.TrimSpace(c.QueryParam("otpCode"))
	if username == "" || otpCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username and otpCode are required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Reset.VerifyCode(ctx, username, otpCode, h.otpTTL())
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, echo.Map{"message": "OTP verified successfully!"})
	case errors.Is(err, reset.ErrCodeMismatch), errors.Is(err, reset.ErrNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid OTP."})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "verify otp failed"})
	}
}

// CreateResetSession: report whether the reset session is armed. This is a
// read, not a mutation; it does not consume the armed flag.
func (h *AuthHandler) CreateResetSession(c echo.Context) error {
	username := strings.TrimSpace(c.QueryParam("username"))
	if username == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username is required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	armed, err := h.Reset.Armed(ctx, username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reset session check failed"})
	}
	if !armed {
		return c.JSON(statusSessionExpired, echo.Map{"message": "Session expired!"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"flag": true})
}

// ResetPassword: overwrite the password for a user while the reset session
// is armed. The armed flag is consumed up front, so the session authorizes
// at most one mutation attempt regardless of how the attempt ends.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "All fields are required!"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	armed, err := h.Reset.Consume(ctx, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reset session check failed"})
	}
	if !armed {
		return c.JSON(statusSessionExpired, echo.Map{"message": "Session expired!"})
	}

	if err := h.Users.UpdatePassword(ctx, req.Username, req.Password, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Username not found. Please try again."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update password failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Password updated successfully!"})
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":  c.Get("user_id"),
		"username": c.Get("username"),
		"email":    c.Get("email"),
	})
}

// refreshCookie builds the refresh-token cookie. The attribute set is fixed:
// HttpOnly keeps it away from page scripts, Secure + SameSite=None lets the
// cross-site frontend send it, and maxAge < 0 clears the slot.
func (h *AuthHandler) refreshCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
}

func (h *AuthHandler) otpTTL() time.Duration {
	return time.Duration(h.Cfg.OTPTTLMin) * time.Minute
}
