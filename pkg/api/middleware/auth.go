// Package middleware provides HTTP middleware for the rowguard API.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/internal/telemetry"
	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/engine"
)

// Context key type for storing claims and the bound connection
type contextKey string

const (
	claimsContextKey contextKey = "claims"
	connContextKey   contextKey = "conn"
)

// GetClaimsFromContext retrieves JWT claims from the request context.
// Returns nil if no claims are present.
func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// ConnFromContext returns the connection JWTAuth bound for this request,
// or nil outside authenticated routes.
func ConnFromContext(ctx context.Context) *engine.Conn {
	c, _ := ctx.Value(connContextKey).(*engine.Conn)
	return c
}

// extractBearerToken extracts the token from a Bearer Authorization header.
// Returns the token string and true if successful, or empty string and false if not.
func extractBearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}

// JWTAuth validates the Bearer access token, borrows a connection from
// pool and binds the token's identity to it for the duration of the
// request. The connection goes back to the pool, with its session reset,
// when the handler returns.
//
// A missing or invalid token, or an identity that has since been disabled,
// yields 401.
func JWTAuth(jwtService *auth.JWTService, pool *engine.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := extractBearerToken(r)
			if !ok {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateAccessToken(tokenString)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := r.Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				http.Error(w, "Service unavailable", http.StatusServiceUnavailable)
				return
			}
			defer pool.Release(conn)

			if err := conn.Resume(ctx, claims.Handle()); err != nil {
				logger.DebugCtx(ctx, "token identity rejected", logger.UserID(claims.UserID))
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			if lc := logger.FromContext(ctx); lc != nil {
				ctx = logger.WithContext(ctx, lc.WithIdentity(claims.UserID, claims.PrincipalName))
			}
			telemetry.SetAttributes(ctx, telemetry.Identity(claims.UserID, claims.PrincipalName)...)

			ctx = context.WithValue(ctx, claimsContextKey, claims)
			ctx = context.WithValue(ctx, connContextKey, conn)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
