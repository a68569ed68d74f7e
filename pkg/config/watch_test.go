package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func watchTestConfig(dir, level string) string {
	return `
logging:
  level: "` + level + `"

database:
  type: sqlite
  sqlite:
    path: "` + yamlSafePath(dir) + `/rowguard.db"

api:
  jwt:
    secret: "test-secret-key-for-testing-minimum-32-chars"
`
}

func TestWatch_ReportsLevelChange(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(watchTestConfig(tmpDir, "INFO")), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	changes := make(chan string, 8)
	if err := Watch(configPath, func(cfg *Config) { changes <- cfg.Logging.Level }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(configPath, []byte(watchTestConfig(tmpDir, "DEBUG")), 0644); err != nil {
		t.Fatalf("Failed to rewrite config file: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-changes:
			if level == "DEBUG" {
				return
			}
		case <-deadline:
			t.Fatal("configuration change was not reported")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	if err := Watch(filepath.Join(t.TempDir(), "absent.yaml"), func(*Config) {}); err == nil {
		t.Fatal("expected an error for a missing configuration file")
	}
}
