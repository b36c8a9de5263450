package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.BaseURL != "https://api.artic.edu/api/v1" {
		t.Errorf("unexpected base URL: %s", cfg.API.BaseURL)
	}
	if cfg.API.PageSize != 12 {
		t.Errorf("expected page size 12, got %d", cfg.API.PageSize)
	}
	if cfg.API.RequestsPerMinute != 60 {
		t.Errorf("expected 60 requests per minute, got %d", cfg.API.RequestsPerMinute)
	}
	if cfg.API.UserAgent == "" {
		t.Error("expected a default user-agent")
	}
	if cfg.Cache.RedisAddr != "" {
		t.Errorf("expected cache disabled by default, got %s", cfg.Cache.RedisAddr)
	}
	if !strings.Contains(cfg.Store.Path, "artcat") {
		t.Errorf("expected store path under artcat dir, got %s", cfg.Store.Path)
	}
	if cfg.Logging.Level != "INFO" {
		t.Errorf("expected INFO level, got %s", cfg.Logging.Level)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	// No config file in the test working directory; defaults must apply.
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.PageSize < 1 {
		t.Errorf("expected positive page size, got %d", cfg.API.PageSize)
	}
}

func TestSave_WritesConfigFile(t *testing.T) {
	// Point the config directory into a temp home.
	t.Setenv("HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.PageSize = 25
	cfg.Cache.RedisAddr = "localhost:6379"

	path, err := Save(cfg)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("unexpected config file name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "page_size: 25") {
		t.Errorf("written config missing page size, got:\n%s", content)
	}
	if !strings.Contains(content, "localhost:6379") {
		t.Errorf("written config missing redis address, got:\n%s", content)
	}
}
