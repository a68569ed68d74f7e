package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/rowguard/pkg/models"
)

// GrantHandler serves project grants.
type GrantHandler struct{}

// NewGrantHandler creates a new GrantHandler.
func NewGrantHandler() *GrantHandler {
	return &GrantHandler{}
}

// GrantRequest is the request body for PUT /api/v1/projects/{id}/grants/{userID}.
type GrantRequest struct {
	Level models.Level `json:"level" validate:"required,oneof=owner writer reader"`
}

// List handles GET /api/v1/grants: every grant row the caller may see,
// which are the rows of projects the caller itself holds a grant on.
func (h *GrantHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	grants, err := conn.ListGrants(r.Context(), "")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, grants)
}

// ListForProject handles GET /api/v1/projects/{id}/grants.
func (h *GrantHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	grants, err := conn.ListGrants(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, grants)
}

// Put handles PUT /api/v1/projects/{id}/grants/{userID}. It creates or
// replaces the grant; the caller must own the project.
func (h *GrantHandler) Put(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req GrantRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	g, err := conn.Grant(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID"), req.Level)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, g)
}

// Delete handles DELETE /api/v1/projects/{id}/grants/{userID}.
func (h *GrantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := conn.Revoke(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
