package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
)

var appJWTConfig = middleware.JWTConfig{
	SigningMethod: middleware.AlgorithmHS256,
	ContextKey:    "adminToken",
	Claims:        new(Claims),
}

// configureAuth sets the signing key from config. Must run before any token is
// issued or verified.
func configureAuth() {
	appJWTConfig.SigningKey = []byte(core.Conf.SecretKey)
}

// Claims represents the authorization claims transmitted via a JWT.
// The back office has a single password-only account, so there is no subject
// identity beyond the admin flag.
type Claims struct {
	jwt.StandardClaims
	IsAdmin bool `json:"is_admin,omitempty"`
}

// GetAdminClaims returns session claims valid for the configured session delta.
func GetAdminClaims() *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   "admin",
			Audience:  "BackOffice",
			ExpiresAt: now.Add(core.Conf.Server.SessionExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsAdmin: true,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
