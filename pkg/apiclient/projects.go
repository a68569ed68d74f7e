package apiclient

import "github.com/marmos91/rowguard/pkg/models"

// CreateProjectRequest is the body of CreateProject.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CreateProject creates a project owned by the caller.
func (c *Client) CreateProject(req CreateProjectRequest) (*models.Project, error) {
	return createResource[models.Project](c, "/api/v1/projects", req)
}

// ListProjects returns the projects visible to the caller.
func (c *Client) ListProjects() ([]models.Project, error) {
	return listResources[models.Project](c, "/api/v1/projects")
}

// GetProject returns a visible project.
func (c *Client) GetProject(id string) (*models.Project, error) {
	return getResource[models.Project](c, resourcePath("/api/v1/projects/%s", id))
}

// UpdateProject patches a project. Needs writer.
func (c *Client) UpdateProject(id string, patch models.ProjectPatch) (*models.Project, error) {
	return patchResource[models.Project](c, resourcePath("/api/v1/projects/%s", id), patch)
}

// DeleteProject deletes a project and its records. Needs the delete
// capability.
func (c *Client) DeleteProject(id string) error {
	return c.delete(resourcePath("/api/v1/projects/%s", id), nil)
}
