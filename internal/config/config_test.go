package config_test

import (
	"testing"
	"time"

	"github.com/fotocheck/fotocheck/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("FOTOCHECK_DB_NAME", "fotocheck")
	t.Setenv("FOTOCHECK_DB_USER", "postgres")
	t.Setenv("FOTOCHECK_DB_PASSWORD", "postgres")
	t.Setenv("FOTOCHECK_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("FOTOCHECK_GATEWAY_ENDPOINT", "https://example.services.ai.azure.com/api/projects/demo")
	t.Setenv("FOTOCHECK_GATEWAY_MODEL_DEPLOYMENT", "gpt-4o")
	t.Setenv("FOTOCHECK_GATEWAY_IMAGE_DEPLOYMENT", "gpt-image-1")
}

func TestFinalizeDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.ContainerName != "photos" {
		t.Errorf("ContainerName = %s, want photos", cfg.Storage.ContainerName)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("BasePath = %s, want /api", cfg.API.BasePath)
	}
	if cfg.API.MaxUploadSizeBytes() != 20*1024*1024 {
		t.Errorf("MaxUploadSize = %d, want 20MiB", cfg.API.MaxUploadSizeBytes())
	}
	if len(cfg.Rubric.Criteria) != 5 {
		t.Errorf("rubric criteria = %d, want 5", len(cfg.Rubric.Criteria))
	}
	if cfg.Gateway.AgentName != "image-evaluator" {
		t.Errorf("AgentName = %s, want image-evaluator", cfg.Gateway.AgentName)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FOTOCHECK_SHUTDOWN_TIMEOUT", "45s")
	t.Setenv("FOTOCHECK_SERVER_PORT", "9090")
	t.Setenv("FOTOCHECK_GATEWAY_RUN_TIMEOUT", "5m")
	t.Setenv("FOTOCHECK_API_MAX_UPLOAD_SIZE", "10MB")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ShutdownTimeout != "45s" {
		t.Errorf("ShutdownTimeout = %s, want 45s", cfg.ShutdownTimeout)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Gateway.RunTimeoutDuration() != 5*time.Minute {
		t.Errorf("RunTimeout = %v, want 5m", cfg.Gateway.RunTimeoutDuration())
	}
	if cfg.API.MaxUploadSizeBytes() != 10*1024*1024 {
		t.Errorf("MaxUploadSize = %d, want 10MiB", cfg.API.MaxUploadSizeBytes())
	}
}

func TestMerge(t *testing.T) {
	base := &config.Config{
		ShutdownTimeout: "30s",
		Server:          config.ServerConfig{Port: 8080},
	}
	overlay := &config.Config{
		ShutdownTimeout: "1m",
		Server:          config.ServerConfig{Host: "127.0.0.1"},
	}

	base.Merge(overlay)

	if base.ShutdownTimeout != "1m" {
		t.Errorf("ShutdownTimeout = %s, want 1m", base.ShutdownTimeout)
	}
	if base.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %s, want 127.0.0.1", base.Server.Host)
	}
	if base.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, overlay cleared base value", base.Server.Port)
	}
}

func TestEnv(t *testing.T) {
	cfg := &config.Config{}

	if env := cfg.Env(); env != "local" {
		t.Errorf("Env = %s, want local", env)
	}

	t.Setenv("FOTOCHECK_ENV", "production")
	if env := cfg.Env(); env != "production" {
		t.Errorf("Env = %s, want production", env)
	}
}
