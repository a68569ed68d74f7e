// Package handlers implements the rowguard REST API.
//
// Every data handler runs on the connection bound by middleware.JWTAuth,
// so visibility and write checks are those of the token's identity.
// Failures are reported as RFC 7807 problem documents.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/marmos91/rowguard/internal/logger"
	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
)

// Problem represents an RFC 7807 "problem details" response.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// Reason is the policy reason of a permission denial.
	Reason string `json:"reason,omitempty"`
}

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem type URIs, one per error class.
const (
	TypeAuthenticationFailed = "urn:rowguard:problem:authentication-failed"
	TypePermissionDenied     = "urn:rowguard:problem:permission-denied"
	TypeInvariantViolation   = "urn:rowguard:problem:invariant-violation"
	TypeConflict             = "urn:rowguard:problem:conflict"
	TypeNotFound             = "urn:rowguard:problem:not-found"
)

func writeProblem(w http.ResponseWriter, p *Problem) {
	if p.Type == "" {
		p.Type = "about:blank"
	}
	w.Header().Set("Content-Type", ContentTypeProblemJSON)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// WriteProblem writes an RFC 7807 problem response.
func WriteProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, &Problem{Title: title, Status: status, Detail: detail})
}

// BadRequest writes a 400 Bad Request problem response.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, "Bad Request", detail)
}

// Unauthorized writes a 401 Unauthorized problem response.
func Unauthorized(w http.ResponseWriter, detail string) {
	writeProblem(w, &Problem{Type: TypeAuthenticationFailed, Title: "Unauthorized", Status: http.StatusUnauthorized, Detail: detail})
}

// NotFound writes a 404 Not Found problem response.
func NotFound(w http.ResponseWriter, detail string) {
	writeProblem(w, &Problem{Type: TypeNotFound, Title: "Not Found", Status: http.StatusNotFound, Detail: detail})
}

// UnprocessableEntity writes a 422 Unprocessable Entity problem response.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	writeProblem(w, &Problem{Type: TypeInvariantViolation, Title: "Unprocessable Entity", Status: http.StatusUnprocessableEntity, Detail: detail})
}

// InternalServerError writes a 500 Internal Server Error problem response.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, "Internal Server Error", detail)
}

// WriteError maps an engine error onto its problem response:
//
//	ErrAuthenticationFailed  401
//	ErrPermissionDenied      403
//	ErrNotFound              404
//	ErrConflict              409
//	ErrInvariantViolation    422
//	closed connection/pool   503
//
// Anything else is logged and reported as 500 without detail.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrAuthenticationFailed):
		Unauthorized(w, "Invalid credentials")
	case errors.Is(err, models.ErrPermissionDenied):
		writeProblem(w, &Problem{
			Type:   TypePermissionDenied,
			Title:  "Forbidden",
			Status: http.StatusForbidden,
			Detail: err.Error(),
			Reason: models.DenialReason(err),
		})
	case errors.Is(err, models.ErrNotFound):
		NotFound(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		writeProblem(w, &Problem{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict, Detail: err.Error()})
	case errors.Is(err, models.ErrInvariantViolation):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, engine.ErrConnClosed), errors.Is(err, engine.ErrPoolClosed):
		WriteProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "server is shutting down")
	default:
		logger.ErrorCtx(r.Context(), "request failed", "path", r.URL.Path, logger.Err(err))
		InternalServerError(w, "internal error")
	}
}
