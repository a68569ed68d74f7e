package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// PrincipalHandler serves /api/v1/principals: the durable principals of
// the calling user.
type PrincipalHandler struct{}

// NewPrincipalHandler creates a new PrincipalHandler.
func NewPrincipalHandler() *PrincipalHandler {
	return &PrincipalHandler{}
}

// CreatePrincipalRequest is the request body for POST /api/v1/principals.
type CreatePrincipalRequest struct {
	Name     string `json:"name" validate:"required,max=63"`
	Password string `json:"password" validate:"required"`
}

// SetEnabledRequest toggles a principal or user.
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// Create handles POST /api/v1/principals. The principal acts as the
// caller, with whatever grants the caller holds at each later operation.
func (h *PrincipalHandler) Create(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req CreatePrincipalRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p, err := conn.CreateDurablePrincipal(r.Context(), req.Name, req.Password)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, p)
}

// List handles GET /api/v1/principals.
func (h *PrincipalHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	ps, err := conn.ListPrincipals(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, ps)
}

// SetEnabled handles PATCH /api/v1/principals/{name}.
func (h *PrincipalHandler) SetEnabled(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req SetEnabledRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := conn.SetPrincipalEnabled(r.Context(), chi.URLParam(r, "name"), *req.Enabled); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
