package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.HTTPAddr != ":3000" {
		t.Fatalf("unexpected default addr: %s", cfg.App.HTTPAddr)
	}
	if cfg.Mongo.Database != "TodoApp" {
		t.Fatalf("unexpected default database: %s", cfg.Mongo.Database)
	}
	if cfg.Security.JWTSecret == "" {
		t.Fatalf("jwt secret must have a default")
	}
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"app":{"http_addr":":9999"},"mongo":{"database":"TodoAppTest"}}`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.App.HTTPAddr != ":9999" {
		t.Fatalf("file value not applied: %s", cfg.App.HTTPAddr)
	}
	if cfg.Mongo.Database != "TodoAppTest" {
		t.Fatalf("file value not applied: %s", cfg.Mongo.Database)
	}
	// 未设置的字段回退到默认值
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Fatalf("default uri not applied: %s", cfg.Mongo.URI)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env_secret")
	t.Setenv("MONGO_URI", "mongodb://example:27017")
	t.Setenv("APP_HTTP_ADDR", ":8081")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Security.JWTSecret != "env_secret" {
		t.Fatalf("JWT_SECRET override not applied: %s", cfg.Security.JWTSecret)
	}
	if cfg.Mongo.URI != "mongodb://example:27017" {
		t.Fatalf("MONGO_URI override not applied: %s", cfg.Mongo.URI)
	}
	if cfg.App.HTTPAddr != ":8081" {
		t.Fatalf("APP_HTTP_ADDR override not applied: %s", cfg.App.HTTPAddr)
	}
}
