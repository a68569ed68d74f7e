package apiclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/marmos91/rowguard/pkg/models"
)

// APIError is an error response from the API. Problem responses fill
// every field; plain-text ones (such as a rejected token) only Status and
// Detail.
type APIError struct {
	Status int    `json:"status"`
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Detail string `json:"detail,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Reason != "" && !strings.Contains(msg, e.Reason) {
		return fmt.Sprintf("%d: %s (%s)", e.Status, msg, e.Reason)
	}
	return fmt.Sprintf("%d: %s", e.Status, msg)
}

// Unwrap maps the status code onto the models error taxonomy.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return models.ErrAuthenticationFailed
	case http.StatusForbidden:
		return models.ErrPermissionDenied
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusConflict:
		return models.ErrConflict
	case http.StatusUnprocessableEntity:
		return models.ErrInvariantViolation
	default:
		return nil
	}
}

func parseError(status int, body []byte) error {
	apiErr := &APIError{}
	if json.Unmarshal(body, apiErr) != nil || (apiErr.Title == "" && apiErr.Detail == "") {
		apiErr = &APIError{Detail: strings.TrimSpace(string(body))}
	}
	apiErr.Status = status
	return apiErr
}
