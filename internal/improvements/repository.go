package improvements

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/fotocheck/fotocheck/internal/workflow"
	"github.com/fotocheck/fotocheck/pkg/pagination"
	"github.com/fotocheck/fotocheck/pkg/query"
	"github.com/fotocheck/fotocheck/pkg/repository"
	"github.com/fotocheck/fotocheck/pkg/storage"
)

// corrected photos always come back from the edit deployment as PNG
const improvedContentType = "image/png"

type repo struct {
	db         *sql.DB
	storage    storage.System
	runtime    *workflow.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an improvement repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	runtime *workflow.Runtime,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		storage:    store,
		runtime:    runtime,
		logger:     logger.With("system", "improvements"),
		pagination: pagination,
	}
}

func (r *repo) Handler(maxUploadSize int64) *Handler {
	return NewHandler(r, r.logger, r.pagination, maxUploadSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Improvement], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Prompt")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count improvements: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	improvements, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanImprovement)
	if err != nil {
		return nil, fmt.Errorf("query improvements: %w", err)
	}

	result := pagination.NewPageResult(improvements, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Improvement, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	i, err := repository.QueryOne(ctx, r.db, q, args, scanImprovement)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &i, nil
}

// Create runs the improvement workflow against the photo, uploads the
// corrected image to blob storage, and records the applied prompt. The blob
// upload is compensated when the insert fails.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Improvement, error) {
	result, err := workflow.Improve(ctx, r.runtime, workflow.ImproveJob{
		Filename:       cmd.Filename,
		Image:          cmd.Data,
		PromptOverride: cmd.PromptOverride,
		Notes:          cmd.Notes,
		CriteriaScores: cmd.CriteriaScores,
		Size:           cmd.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("improve photo: %w", err)
	}

	size := cmd.Size
	if size == "" {
		size = "1024x1024"
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(result.Image), improvedContentType); err != nil {
		return nil, fmt.Errorf("upload corrected blob: %w", err)
	}

	q := `
		INSERT INTO improvements(id, filename, content_type, size_bytes, storage_key, prompt, applied_fixes, size, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, filename, content_type, size_bytes, storage_key, prompt, applied_fixes, size, notes, created_at`

	insertArgs := []any{
		id,
		cmd.Filename,
		improvedContentType,
		int64(len(result.Image)),
		key,
		result.Prompt,
		FixList(result.AppliedFixes),
		size,
		cmd.Notes,
	}

	i, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Improvement, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanImprovement)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("improvement created",
		"id", i.ID,
		"filename", i.Filename,
		"fixes", len(i.AppliedFixes),
	)
	return &i, nil
}

func (r *repo) Photo(ctx context.Context, id uuid.UUID) (*storage.Download, error) {
	i, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.storage.Download(ctx, i.StorageKey)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	i, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM improvements WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, i.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", i.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("improvement deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("improvements/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "photo"
	}
	return url.PathEscape(name)
}
