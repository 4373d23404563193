package middleware

import (
	"context"
	"net/http"

	"wegroup/internal/common"
	"wegroup/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTCustomClaims mirrors the claims issued by the auth service.
type JWTCustomClaims struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// SessionConfig builds the echo-jwt configuration for protected routes. On
// success the caller identity lands in the request context, where handlers
// rebuild an explicit Session for the authorization gate.
func SessionConfig(jwtSecret string) echojwt.Config {
	return echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*JWTCustomClaims)
			if !ok {
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return
			}

			ctx := context.WithValue(c.Request().Context(), common.UserIDKey, userID)
			if claims.TenantID != "" {
				if tenantID, err := uuid.Parse(claims.TenantID); err == nil {
					ctx = context.WithValue(ctx, common.TenantIDKey, tenantID)
				}
			}
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
		},
	}
}

// SessionFromContext rebuilds the explicit session passed into every gate
// call. A missing user ID yields an unauthenticated session, not an error;
// the gate is the one that rejects it.
func SessionFromContext(ctx context.Context) services.Session {
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return services.Session{}
	}
	session := services.Session{UserID: userID, Authenticated: true}
	if tenantID, ok := common.GetTenantIDFromContext(ctx); ok {
		session.TenantID = tenantID
	}
	return session
}
