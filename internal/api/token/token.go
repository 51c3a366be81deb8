// Package token contains utilities for http tokens.
package token

import (
	"context"
	"errors"
	"net/http"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/mkarev/kulinaria/internal/config"
	"github.com/mkarev/kulinaria/internal/env"
	"github.com/mkarev/kulinaria/internal/jwt"
)

const accessTokenLifetime = 60 * 60 * 24 // 24 hours, matches jwt.JWTDuration

var ErrNoToken = errors.New("no access token in request")

type userIDKeyType struct{}

var userIDKey userIDKeyType

type accessTokenKeyType struct{}

var accessTokenKey accessTokenKeyType

func AccessTokenName(e *env.Env) string {
	if e.Config != nil && e.Config.Env == config.EnvProd {
		return "__Host-Kulinaria-access"
	}
	return "access"
}

func CreateAccessToken(params jwt.JWTParams, e *env.Env) (string, error) {
	if e.Config == nil || e.Config.AppSecret.Value == nil {
		return "", errors.New("app secret not configured")
	}
	secret := []byte(*e.Config.AppSecret.Value)
	return jwt.GenerateJWT(params, secret, e.Config.AppSecret.Version)
}

// ValidateAccessToken parses and verifies a raw token against the configured
// secret.
func ValidateAccessToken(raw string, e *env.Env) (*gojwt.Token, error) {
	if e.Config == nil || e.Config.AppSecret.Value == nil {
		return nil, errors.New("app secret not configured")
	}
	version := e.Config.AppSecret.Version
	if version == "" {
		version = jwt.DefaultKID
	}
	return jwt.ValidateJWT(raw, version, []byte(*e.Config.AppSecret.Value))
}

// ExtractAccessToken pulls the raw token from the Authorization header
// ("Bearer <jwt>" or "Token <jwt>") or, failing that, the access cookie.
func ExtractAccessToken(r *http.Request, e *env.Env) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		for _, scheme := range []string{"Bearer ", "Token "} {
			if strings.HasPrefix(header, scheme) {
				return strings.TrimSpace(strings.TrimPrefix(header, scheme)), nil
			}
		}
		return "", ErrNoToken
	}

	cookie, err := r.Cookie(AccessTokenName(e))
	if err != nil {
		return "", ErrNoToken
	}
	return cookie.Value, nil
}

func NewAccessTokenCookie(token string, e *env.Env) *http.Cookie {
	cookie := &http.Cookie{
		Name:     AccessTokenName(e),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   accessTokenLifetime,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}

	if e.Config != nil && e.Config.Env == config.EnvProd {
		cookie.Secure = true
	}

	return cookie
}

// NewExpiredAccessTokenCookie clears the access cookie on logout.
func NewExpiredAccessTokenCookie(e *env.Env) *http.Cookie {
	cookie := NewAccessTokenCookie("", e)
	cookie.MaxAge = -1
	return cookie
}

func UserIDWithCtx(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromCtx returns the authenticated user's id, or 0 when the request
// is anonymous.
func UserIDFromCtx(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

func AccessTokenWithCtx(ctx context.Context, t *gojwt.Token) context.Context {
	return context.WithValue(ctx, accessTokenKey, t)
}

func AccessTokenFromCtx(ctx context.Context) *gojwt.Token {
	if t, ok := ctx.Value(accessTokenKey).(*gojwt.Token); ok {
		return t
	}
	return nil
}
