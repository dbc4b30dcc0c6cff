package evaluations

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

type repo struct {
	db         *sql.DB
	storage    storage.System
	runtime    *workflow.Runtime
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates an evaluation repository implementing the System interface.
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
		logger:     logger.With("system", "evaluations"),
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
) (*pagination.PageResult[Evaluation], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Filename", "Notes")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count evaluations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	evaluations, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanEvaluation)
	if err != nil {
		return nil, fmt.Errorf("query evaluations: %w", err)
	}

	result := pagination.NewPageResult(evaluations, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Evaluation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	e, err := repository.QueryOne(ctx, r.db, q, args, scanEvaluation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &e, nil
}

// Create runs the evaluation workflow against the photo, uploads the
// original to blob storage, and records the normalized result. The blob
// upload is compensated when the insert fails.
func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Evaluation, error) {
	result, err := workflow.Evaluate(ctx, r.runtime, cmd.Filename, cmd.Data, cmd.Prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluate photo: %w", err)
	}

	prompt := cmd.Prompt
	if prompt == "" {
		prompt = r.runtime.Rubric.Prompt
	}

	id := uuid.New()
	key := buildStorageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload photo blob: %w", err)
	}

	q := `
		INSERT INTO evaluations(id, filename, content_type, size_bytes, storage_key, prompt, overall_score, criteria_scores, safe, notes, agent_id, thread_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, filename, content_type, size_bytes, storage_key, prompt, overall_score, criteria_scores, safe, notes, agent_id, thread_id, created_at`

	insertArgs := []any{
		id,
		cmd.Filename,
		cmd.ContentType,
		int64(len(cmd.Data)),
		key,
		prompt,
		result.OverallScore,
		ScoreMap(result.CriteriaScores),
		result.Safe,
		result.Notes,
		result.AgentID,
		result.ThreadID,
	}

	e, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Evaluation, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanEvaluation)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("evaluation created",
		"id", e.ID,
		"filename", e.Filename,
		"overall_score", e.OverallScore,
		"safe", e.Safe,
	)
	return &e, nil
}

func (r *repo) Photo(ctx context.Context, id uuid.UUID) (*storage.Download, error) {
	e, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.storage.Download(ctx, e.StorageKey)
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	e, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM evaluations WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, e.StorageKey); delErr != nil {
		r.logger.Warn(
			"blob delete failed after DB delete",
			"key", e.StorageKey,
			"error", delErr,
		)
	}

	r.logger.Info("evaluation deleted", "id", id)
	return nil
}

func buildStorageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("evaluations/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "photo"
	}
	return url.PathEscape(name)
}
