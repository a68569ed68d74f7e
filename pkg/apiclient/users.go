package apiclient

import (
	"net/url"
	"strconv"

	"github.com/marmos91/rowguard/pkg/models"
)

// CreateUserRequest is the body of CreateUser.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// ListUsers returns the users visible to the caller, which is only the
// caller's own row.
func (c *Client) ListUsers() ([]models.User, error) {
	return listResources[models.User](c, "/api/v1/users")
}

// CreateUser provisions a user (admin only).
func (c *Client) CreateUser(req CreateUserRequest) (*models.User, error) {
	return createResource[models.User](c, "/api/v1/users", req)
}

// SetUserEnabled enables or disables a user (admin only).
func (c *Client) SetUserEnabled(id string, enabled bool) error {
	return c.patch(resourcePath("/api/v1/users/%s", id), map[string]bool{"enabled": enabled}, nil)
}

// GrantCapability grants a global capability such as "delete" (admin only).
func (c *Client) GrantCapability(userID string, name models.CapabilityName) error {
	return c.put(resourcePath("/api/v1/users/%s/capabilities/%s", userID, string(name)), nil, nil)
}

// RevokeCapability revokes a global capability (admin only).
func (c *Client) RevokeCapability(userID string, name models.CapabilityName) error {
	return c.delete(resourcePath("/api/v1/users/%s/capabilities/%s", userID, string(name)), nil)
}

// ListAudit returns up to limit recent policy decisions. Zero uses the
// server default.
func (c *Client) ListAudit(limit int) ([]models.AuditEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return listResources[models.AuditEntry](c, withQuery("/api/v1/audit", q))
}
