package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fotocheck/fotocheck/pkg/module"
)

func echoMux(body string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /photos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	})
	return mux
}

func TestModulePrefixStripping(t *testing.T) {
	m := module.New("/api", echoMux("api"))

	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/photos", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "api" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestModuleMiddleware(t *testing.T) {
	m := module.New("/api", echoMux("api"))
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Module", "api")
			next.ServeHTTP(w, r)
		})
	})

	router := module.NewRouter()
	router.Mount(m)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/photos", nil)
	router.ServeHTTP(rec, req)

	if rec.Header().Get("X-Module") != "api" {
		t.Error("module middleware not applied")
	}
}

func TestModuleInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"multi level", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("New(%q) should panic", tt.prefix)
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestRouterNativeFallback(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoMux("api")))
	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/healthz", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestRouterTrailingSlashNormalized(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoMux("api")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/photos/", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rec.Code)
	}
}

func TestRouterUnknownPrefix(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", echoMux("api")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/other/photos", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}
