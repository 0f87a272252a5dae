package utils // package utils provides helper functions for token creation and verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Verification failures collapse into two sentinel errors so that handlers can
// map them to distinct HTTP statuses without inspecting library internals.
var (
	// ErrTokenExpired is returned when a token is structurally valid but past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenMalformed is returned when the signature or structure does not validate.
	ErrTokenMalformed = errors.New("token malformed")
)

// AccessClaims is the payload of a short-lived access token.  It carries the
// identity fields a protected endpoint needs without a database round trip.
type AccessClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   uint64 `json:"uid"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a long-lived refresh token.  It is kept
// deliberately narrow: possession of a valid refresh token only proves which
// username it was minted for, everything else is re-resolved from the store.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AccessToken bundles a signed access token with its expiry.  Access tokens
// are short-lived, returned in the response body only and presented in the
// Authorization header on protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken bundles a signed refresh token with its expiry.  Refresh tokens
// travel exclusively in an HTTP-only cookie and are used solely to mint new
// access tokens.
type RefreshToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user's identity fields and a TTL in minutes.  The
// token carries custom claims (username, email, uid) plus the standard
// exp and iat claims.
func NewAccessToken(secret, username, email string, userID uint64, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := AccessClaims{
		Username: username,
		Email:    email,
		UserID:   userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken builds and signs an HS256 JWT carrying only the username.
// The TTL is given in hours and matches the Max-Age of the cookie the token
// is transported in.  Refresh tokens are signed with their own secret so a
// leaked access secret cannot be used to forge them.
func NewRefreshToken(secret, username string, ttlHours int) (RefreshToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlHours) * time.Hour)
	claims := RefreshClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{Token: signed, Exp: exp}, nil
}

// VerifyAccess parses and validates an access token string against the given
// secret and returns its decoded claims.  Expired tokens yield ErrTokenExpired;
// every other validation failure yields ErrTokenMalformed.
func VerifyAccess(secret, token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := parseInto(secret, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefresh parses and validates a refresh token string against the given
// secret and returns its decoded claims.  The error contract is identical to
// VerifyAccess.
func VerifyRefresh(secret, token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := parseInto(secret, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// parseInto validates the signature, the signing method and the time claims,
// decoding the payload into claims on success.
func parseInto(secret, token string, claims jwt.Claims) error {
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenMalformed
	}
	if !tok.Valid {
		return ErrTokenMalformed
	}
	return nil
}
