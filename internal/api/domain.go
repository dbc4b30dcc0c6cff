package api

import (
	"github.com/fotocheck/fotocheck/internal/evaluations"
	"github.com/fotocheck/fotocheck/internal/improvements"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Evaluations  evaluations.System
	Improvements improvements.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	evaluationsSystem := evaluations.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Workflow,
		runtime.Logger,
		runtime.Pagination,
	)

	improvementsSystem := improvements.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Workflow,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Evaluations:  evaluationsSystem,
		Improvements: improvementsSystem,
	}
}
