package storage_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/fotocheck/fotocheck/pkg/storage"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "photos" {
		t.Errorf("ContainerName = %q, want photos", cfg.ContainerName)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONTAINER", "uploads")
	t.Setenv("TEST_STORAGE_CONN", "UseDevelopmentStorage=true")

	env := &storage.Env{
		ContainerName:    "TEST_STORAGE_CONTAINER",
		ConnectionString: "TEST_STORAGE_CONN",
	}

	cfg := storage.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ContainerName != "uploads" {
		t.Errorf("ContainerName = %q, want uploads", cfg.ContainerName)
	}
	if cfg.ConnectionString != "UseDevelopmentStorage=true" {
		t.Errorf("ConnectionString = %q", cfg.ConnectionString)
	}
}

func TestConfigFinalizeMissingConnectionString(t *testing.T) {
	cfg := storage.Config{}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "connection_string required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := storage.Config{ContainerName: "photos", ConnectionString: "base"}
	overlay := storage.Config{ContainerName: "uploads"}
	base.Merge(&overlay)

	if base.ContainerName != "uploads" {
		t.Errorf("ContainerName = %q, want uploads", base.ContainerName)
	}
	if base.ConnectionString != "base" {
		t.Errorf("ConnectionString = %q, want base (unchanged)", base.ConnectionString)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", storage.ErrNotFound, http.StatusNotFound},
		{"empty key", storage.ErrEmptyKey, http.StatusBadRequest},
		{"invalid key", storage.ErrInvalidKey, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storage.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
