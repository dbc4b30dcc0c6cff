package improvements

import (
	"context"

	"github.com/google/uuid"

	"github.com/fotocheck/fotocheck/pkg/pagination"
	"github.com/fotocheck/fotocheck/pkg/storage"
)

// System defines the public contract for improvement domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Improvement], error)

	Find(ctx context.Context, id uuid.UUID) (*Improvement, error)
	Create(ctx context.Context, cmd CreateCommand) (*Improvement, error)
	Photo(ctx context.Context, id uuid.UUID) (*storage.Download, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
