package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marmos91/rowguard/pkg/models"
)

// ProjectHandler serves /api/v1/projects.
type ProjectHandler struct{}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

// CreateProjectRequest is the request body for POST /api/v1/projects.
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=1024"`
}

// UpdateProjectRequest is the request body for PATCH /api/v1/projects/{id}.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024"`
}

// Create handles POST /api/v1/projects. The creator becomes its owner.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req CreateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p, err := conn.CreateProject(r.Context(), &models.Project{Name: req.Name, Description: req.Description})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONCreated(w, p)
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	projects, err := conn.ListProjects(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, projects)
}

// Get handles GET /api/v1/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	p, err := conn.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, p)
}

// Update handles PATCH /api/v1/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	var req UpdateProjectRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	p, err := conn.UpdateProject(r.Context(), chi.URLParam(r, "id"), models.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSONOK(w, p)
}

// Delete handles DELETE /api/v1/projects/{id}. Needs the delete capability.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conn, ok := connOrUnauthorized(w, r)
	if !ok {
		return
	}
	if err := conn.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteNoContent(w)
}
