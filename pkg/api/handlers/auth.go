package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/api/middleware"
	"github.com/marmos91/rowguard/pkg/auth"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
)

// AuthHandler handles login, token refresh and identity endpoints.
type AuthHandler struct {
	pool       *engine.Pool
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(pool *engine.Pool, jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{pool: pool, jwtService: jwtService}
}

// LoginRequest is the request body for POST /api/v1/auth/login.
//
// Kind selects the credential type: "user" (default) or "principal" for a
// durable principal.
type LoginRequest struct {
	Kind     string `json:"kind,omitempty" validate:"omitempty,oneof=user principal"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the response body for login and refresh.
type LoginResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int64       `json:"expires_in"`
	ExpiresAt    time.Time   `json:"expires_at"`
	Identity     auth.Handle `json:"identity"`
}

// RefreshRequest is the request body for POST /api/v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Login handles POST /api/v1/auth/login.
// Every credential failure is the same 401, whatever its cause.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	ctx := r.Context()
	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer h.pool.Release(conn)

	var handle *auth.Handle
	if req.Kind == string(auth.KindPrincipal) {
		handle, err = conn.LoginPrincipal(ctx, req.Username, req.Password)
	} else {
		handle, err = conn.Login(ctx, req.Username, req.Password)
	}
	if err != nil {
		WriteError(w, r, err)
		return
	}

	h.issue(w, r, handle)
}

// Refresh handles POST /api/v1/auth/refresh.
// The identity is re-checked, so a disabled user or principal cannot
// refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			Unauthorized(w, "Refresh token has expired")
			return
		}
		Unauthorized(w, "Invalid refresh token")
		return
	}

	ctx := r.Context()
	conn, err := h.pool.Acquire(ctx)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	defer h.pool.Release(conn)

	handle := claims.Handle()
	if err := conn.Resume(ctx, handle); err != nil {
		logger.InfoCtx(ctx, "refresh rejected", logger.UserID(claims.UserID))
		WriteError(w, r, models.ErrAuthenticationFailed)
		return
	}
	handle.SessionID = conn.ID()

	h.issue(w, r, handle)
}

// Me handles GET /api/v1/auth/me.
// Returns the user the token acts as, freshly read.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}

	user, err := conn.Me(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}

	claims := middleware.GetClaimsFromContext(r.Context())
	WriteJSONOK(w, MeResponse{User: user, Principal: claims.PrincipalName})
}

// MeResponse is the response body for GET /api/v1/auth/me.
type MeResponse struct {
	User      *models.User `json:"user"`
	Principal string       `json:"principal,omitempty"`
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, handle *auth.Handle) {
	tokenPair, err := h.jwtService.GenerateTokenPair(handle)
	if err != nil {
		logger.ErrorCtx(r.Context(), "failed to generate token", logger.Err(err))
		InternalServerError(w, "Failed to generate token")
		return
	}

	WriteJSONOK(w, LoginResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
		ExpiresAt:    tokenPair.ExpiresAt,
		Identity:     *handle,
	})
}
