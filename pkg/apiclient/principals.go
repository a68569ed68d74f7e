package apiclient

import "github.com/marmos91/rowguard/pkg/models"

// CreatePrincipal creates a durable principal that acts as the caller.
func (c *Client) CreatePrincipal(name, password string) (*models.Principal, error) {
	return createResource[models.Principal](c, "/api/v1/principals", map[string]string{
		"name":     name,
		"password": password,
	})
}

// ListPrincipals returns the principals created by the caller.
func (c *Client) ListPrincipals() ([]models.Principal, error) {
	return listResources[models.Principal](c, "/api/v1/principals")
}

// SetPrincipalEnabled enables or disables one of the caller's principals.
func (c *Client) SetPrincipalEnabled(name string, enabled bool) error {
	return c.patch(resourcePath("/api/v1/principals/%s", name), map[string]bool{"enabled": enabled}, nil)
}
