package apiclient

import (
	"time"

	"github.com/marmos91/rowguard/pkg/models"
)

// Identity is the session identity a token carries.
type Identity struct {
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	PrincipalID   string    `json:"principal_id,omitempty"`
	PrincipalName string    `json:"principal,omitempty"`
	Since         time.Time `json:"since"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	Identity     Identity  `json:"identity"`
}

// MeResponse describes the caller.
type MeResponse struct {
	User      *models.User `json:"user"`
	Principal string       `json:"principal,omitempty"`
}

type loginRequest struct {
	Kind     string `json:"kind,omitempty"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates as a user. On success the client keeps the access
// token for subsequent calls.
func (c *Client) Login(username, password string) (*TokenResponse, error) {
	return c.login("user", username, password)
}

// LoginPrincipal authenticates as a durable principal.
func (c *Client) LoginPrincipal(name, password string) (*TokenResponse, error) {
	return c.login("principal", name, password)
}

func (c *Client) login(kind, name, password string) (*TokenResponse, error) {
	resp, err := createResource[TokenResponse](c, "/api/v1/auth/login", loginRequest{
		Kind:     kind,
		Username: name,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return resp, nil
}

// Refresh exchanges a refresh token for a new token pair and keeps the new
// access token.
func (c *Client) Refresh(refreshToken string) (*TokenResponse, error) {
	resp, err := createResource[TokenResponse](c, "/api/v1/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	c.SetToken(resp.AccessToken)
	return resp, nil
}

// Logout forgets the access token. Tokens are stateless, so nothing is
// sent to the server.
func (c *Client) Logout() {
	c.SetToken("")
}

// Me returns the current user.
func (c *Client) Me() (*MeResponse, error) {
	return getResource[MeResponse](c, "/api/v1/auth/me")
}
