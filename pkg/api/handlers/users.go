package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
)

// UserHandler serves /api/v1/users and /api/v1/audit.
//
// Listing returns only the caller's own row. Provisioning endpoints are
// checked by the engine against the caller's admin role; the role never
// widens what the caller can read.
type UserHandler struct{}

// NewUserHandler creates a new UserHandler.
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// DefaultAuditLimit caps GET /api/v1/audit when no limit is given.
const DefaultAuditLimit = 100

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	users, err := conn.ListUsers(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, users)
}

// Create handles POST /api/v1/users (admin).
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req engine.NewUser
	if !decodeJSONBody(w, r, &req) {
		return
	}

	u, err := conn.CreateUser(r.Context(), req)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, u)
}

// SetEnabled handles PATCH /api/v1/users/{id} (admin).
func (h *UserHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req SetEnabledRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := conn.SetUserEnabled(r.Context(), chi.URLParam(r, "id"), *req.Enabled); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// GrantCapability handles PUT /api/v1/users/{id}/capabilities/{name} (admin).
func (h *UserHandler) GrantCapability(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	name := models.CapabilityName(chi.URLParam(r, "name"))
	if err := conn.GrantCapability(r.Context(), chi.URLParam(r, "id"), name); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// RevokeCapability handles DELETE /api/v1/users/{id}/capabilities/{name} (admin).
func (h *UserHandler) RevokeCapability(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	name := models.CapabilityName(chi.URLParam(r, "name"))
	if err := conn.RevokeCapability(r.Context(), chi.URLParam(r, "id"), name); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}

// Audit handles GET /api/v1/audit?limit=N.
func (h *UserHandler) Audit(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", DefaultAuditLimit)
	if err != nil || limit <= 0 {
		BadRequest(w, "limit must be a positive integer")
		return
	}

	entries, err := conn.ListAudit(r.Context(), limit)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, entries)
}
