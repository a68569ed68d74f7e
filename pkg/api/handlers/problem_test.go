package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marmos91/rowguard/pkg/engine"
	"github.com/marmos91/rowguard/pkg/models"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantReason string
	}{
		{"authentication failed", models.ErrAuthenticationFailed, http.StatusUnauthorized, TypeAuthenticationFailed, ""},
		{"denied with reason", models.Deny("update", "records", "reader grant does not allow writes"), http.StatusForbidden, TypePermissionDenied, "reader grant does not allow writes"},
		{"bare denial", models.ErrPermissionDenied, http.StatusForbidden, TypePermissionDenied, ""},
		{"project not found", models.ErrProjectNotFound, http.StatusNotFound, TypeNotFound, ""},
		{"duplicate principal", models.ErrDuplicatePrincipal, http.StatusConflict, TypeConflict, ""},
		{"last owner", models.ErrLastOwner, http.StatusUnprocessableEntity, TypeInvariantViolation, ""},
		{"wrapped invalid level", fmt.Errorf("grant: %w", models.ErrInvalidLevel), http.StatusUnprocessableEntity, TypeInvariantViolation, ""},
		{"pool closed", engine.ErrPoolClosed, http.StatusServiceUnavailable, "about:blank", ""},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError, "about:blank", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
			rr := httptest.NewRecorder()
			WriteError(rr, req, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if ct := rr.Header().Get("Content-Type"); ct != ContentTypeProblemJSON {
				t.Errorf("Content-Type = %q, want %q", ct, ContentTypeProblemJSON)
			}

			var p Problem
			if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
				t.Fatalf("failed to decode problem: %v", err)
			}
			if p.Type != tt.wantType {
				t.Errorf("type = %q, want %q", p.Type, tt.wantType)
			}
			if p.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", p.Reason, tt.wantReason)
			}
			if p.Status != tt.wantStatus {
				t.Errorf("body status = %d, want %d", p.Status, tt.wantStatus)
			}
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	WriteError(rr, req, errors.New("password=hunter2 leaked in driver error"))

	if strings.Contains(rr.Body.String(), "hunter2") {
		t.Errorf("internal error detail leaked: %s", rr.Body.String())
	}
}

func TestWriteError_UniformAuthenticationFailure(t *testing.T) {
	// Wrapped causes must not change what the client sees.
	causes := []error{
		models.ErrAuthenticationFailed,
		fmt.Errorf("user disabled: %w", models.ErrAuthenticationFailed),
		fmt.Errorf("bad password: %w", models.ErrAuthenticationFailed),
	}

	var bodies []string
	for _, err := range causes {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil), err)
		bodies = append(bodies, rr.Body.String())
	}
	for i := 1; i < len(bodies); i++ {
		if bodies[i] != bodies[0] {
			t.Errorf("response %d differs:\n%s\nvs\n%s", i, bodies[i], bodies[0])
		}
	}
}
