package improvements

import (
	"net/url"

	"github.com/fotocheck/fotocheck/pkg/query"
	"github.com/fotocheck/fotocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "improvements", "i").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("prompt", "Prompt").
	Project("applied_fixes", "AppliedFixes").
	Project("size", "Size").
	Project("notes", "Notes").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for improvement queries.
// Nil fields are ignored. Size uses exact matching; Filename uses
// case-insensitive contains matching.
type Filters struct {
	Filename *string `json:"filename,omitempty"`
	Size     *string `json:"size,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Filename", f.Filename).
		WhereEquals("Size", f.Size)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if s := values.Get("size"); s != "" {
		f.Size = &s
	}

	return f
}

func scanImprovement(s repository.Scanner) (Improvement, error) {
	var i Improvement
	err := s.Scan(
		&i.ID,
		&i.Filename,
		&i.ContentType,
		&i.SizeBytes,
		&i.StorageKey,
		&i.Prompt,
		&i.AppliedFixes,
		&i.Size,
		&i.Notes,
		&i.CreatedAt,
	)
	return i, err
}
