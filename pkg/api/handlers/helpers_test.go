package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
	}{
		{"valid", `{"name":"Project 1"}`, true, http.StatusOK},
		{"malformed", `{"name":`, false, http.StatusBadRequest},
		{"unknown field", `{"name":"p","owner":"x"}`, false, http.StatusBadRequest},
		{"missing required", `{"description":"no name"}`, false, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()

			var v CreateProjectRequest
			ok := decodeJSONBody(rr, req, &v)
			if ok != tt.wantOK {
				t.Fatalf("decodeJSONBody() = %v, want %v", ok, tt.wantOK)
			}
			if !ok && rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestDecodeJSONBody_ValidationDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"level":"admin"}`))
	rr := httptest.NewRecorder()

	var v GrantRequest
	if decodeJSONBody(rr, req, &v) {
		t.Fatal("expected validation failure")
	}

	var p Problem
	if err := json.NewDecoder(rr.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	if p.Detail != "Level failed on the 'oneof' rule" {
		t.Errorf("detail = %q", p.Detail)
	}
}

func TestConnOrUnauthorized(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	if _, ok := connOrUnauthorized(rr, req); ok {
		t.Fatal("expected no connection outside JWTAuth")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 100, false},
		{"?limit=5", 5, false},
		{"?limit=abc", 0, true},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
		got, err := queryInt(req, "limit", 100)
		if (err != nil) != tt.wantErr {
			t.Errorf("queryInt(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("queryInt(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestLiveness(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status field = %q, want healthy", resp.Status)
	}
}

func TestReadinessWithoutEngine(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler(nil).Readiness(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
}
