package api

import (
	"github.com/fotocheck/fotocheck/internal/config"
	"github.com/fotocheck/fotocheck/internal/infrastructure"
	"github.com/fotocheck/fotocheck/internal/workflow"
	"github.com/fotocheck/fotocheck/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// shared workflow runtime.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Workflow   *workflow.Runtime
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Gateway:   infra.Gateway,
		},
		Pagination: cfg.API.Pagination,
		Workflow: workflow.NewRuntime(
			infra.Gateway,
			&cfg.Gateway,
			&cfg.Rubric,
			logger,
		),
	}
}
