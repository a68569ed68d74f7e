package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marmos91/rowguard/pkg/metrics"
	promauthz "github.com/marmos91/rowguard/pkg/metrics/prometheus"
)

// MetricsResult is what InitializeMetrics produced. Both fields are nil
// when metrics are disabled.
type MetricsResult struct {
	// Server serves /metrics on MetricsConfig.Port. The caller starts it.
	Server *http.Server

	// Authz is passed to the engine.
	Authz metrics.AuthzMetrics
}

// InitializeMetrics creates the Prometheus registry, the authorization
// collectors and the HTTP server exposing them.
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Metrics.Enabled {
		metrics.Reset()
		return &MetricsResult{}
	}

	reg := metrics.InitRegistry()

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsResult{
		Server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		Authz: promauthz.NewAuthzMetrics(),
	}
}
