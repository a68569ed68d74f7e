package config

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/marmos91/rowguard/pkg/metrics"
)

func TestInitializeMetrics_Disabled(t *testing.T) {
	cfg := GetDefaultConfig()

	res := InitializeMetrics(cfg)
	if res.Server != nil || res.Authz != nil {
		t.Fatal("Expected no metrics server or collectors when disabled")
	}
	if metrics.IsEnabled() {
		t.Fatal("Expected registry to stay uninitialized")
	}
}

func TestInitializeMetrics_Enabled(t *testing.T) {
	t.Cleanup(metrics.Reset)

	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Port = 9191

	res := InitializeMetrics(cfg)
	if res.Server == nil || res.Authz == nil {
		t.Fatal("Expected metrics server and collectors")
	}
	if res.Server.Addr != ":9191" {
		t.Errorf("Expected addr :9191, got %q", res.Server.Addr)
	}

	res.Authz.RecordDecision("select", "projects", "allow")

	rec := httptest.NewRecorder()
	res.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "rowguard_policy_decisions_total") {
		t.Error("Expected decision counter in /metrics output")
	}
}
