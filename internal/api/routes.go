package api

import (
	"net/http"

	"github.com/fotocheck/fotocheck/internal/config"
	"github.com/fotocheck/fotocheck/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	maxUpload := cfg.API.MaxUploadSizeBytes()

	routes.Register(
		mux,
		domain.Evaluations.Handler(maxUpload).Routes(),
		domain.Improvements.Handler(maxUpload).Routes(),
	)
}
