package apiclient

import "github.com/marmos91/rowguard/pkg/models"

// ListGrants returns every grant visible to the caller.
func (c *Client) ListGrants() ([]models.Grant, error) {
	return listResources[models.Grant](c, "/api/v1/grants")
}

// ListProjectGrants returns the grants of one visible project.
func (c *Client) ListProjectGrants(projectID string) ([]models.Grant, error) {
	return listResources[models.Grant](c, resourcePath("/api/v1/projects/%s/grants", projectID))
}

// Grant sets userID's level on a project. Only owners may grant.
func (c *Client) Grant(projectID, userID string, level models.Level) (*models.Grant, error) {
	var g models.Grant
	err := c.put(resourcePath("/api/v1/projects/%s/grants/%s", projectID, userID),
		map[string]models.Level{"level": level}, &g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Revoke removes userID's grant on a project. The last owner cannot be
// revoked.
func (c *Client) Revoke(projectID, userID string) error {
	return c.delete(resourcePath("/api/v1/projects/%s/grants/%s", projectID, userID), nil)
}
