package config

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/marmos91/rowguard/pkg/store"
)

var configTemplate = template.Must(template.New("config").Parse(`# rowguard Configuration File
#
# Generated by 'rowguard init'. Every value can be overridden with a
# ROWGUARD_* environment variable, e.g. ROWGUARD_LOGGING_LEVEL=DEBUG.
# Users, grants and principals live in the database, not here.

logging:
  level: "INFO"          # DEBUG, INFO, WARN, ERROR
  format: "text"         # text, json
  output: "stdout"       # stdout, stderr, or a file path

telemetry:
  enabled: false
  endpoint: "localhost:4317"
  insecure: true
  sample_rate: 1.0
  profiling:
    enabled: false
    endpoint: "http://localhost:4040"

shutdown_timeout: 30s

database:
  type: "sqlite"         # sqlite, postgres
  sqlite:
    path: "{{ .SQLitePath }}"
  # postgres:
  #   host: "localhost"
  #   port: 5432
  #   database: "rowguard"
  #   user: "rowguard"
  #   password: ""
  #   sslmode: "disable"

metrics:
  enabled: false
  port: {{ .MetricsPort }}

api:
  port: {{ .APIPort }}
  read_timeout: 10s
  write_timeout: 10s
  idle_timeout: 60s
  jwt:
    # Overridden by ROWGUARD_API_SECRET when set.
    secret: "{{ .JWTSecret }}"
    access_token_duration: {{ .AccessToken }}
    refresh_token_duration: {{ .RefreshToken }}

engine:
  pool_size: {{ .PoolSize }}
  audit: true
  bcrypt_cost: {{ .BcryptCost }}

admin:
  username: "admin"
`))

type templateData struct {
	SQLitePath   string
	MetricsPort  int
	APIPort      int
	JWTSecret    string
	AccessToken  string
	RefreshToken string
	PoolSize     int
	BcryptCost   int
}

// InitConfig writes a commented configuration file at the default
// location and returns its path. An existing file is kept unless force
// is set.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes a commented configuration file at path with a
// freshly generated JWT secret.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", path)
		}
	}

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate JWT secret: %w", err)
	}

	db := store.Config{Type: store.DatabaseTypeSQLite}
	db.ApplyDefaults()

	var buf bytes.Buffer
	err = configTemplate.Execute(&buf, templateData{
		SQLitePath:   filepath.ToSlash(db.SQLite.Path),
		MetricsPort:  DefaultMetricsPort,
		APIPort:      DefaultAPIPort,
		JWTSecret:    secret,
		AccessToken:  DefaultAccessToken.String(),
		RefreshToken: DefaultRefreshToken.String(),
		PoolSize:     DefaultPoolSize,
		BcryptCost:   DefaultBcryptCost,
	})
	if err != nil {
		return fmt.Errorf("failed to render config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// generateSecret returns 32 random bytes, hex encoded.
func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
