package evaluations

import (
	"net/url"
	"strconv"

	"github.com/fotocheck/fotocheck/pkg/query"
	"github.com/fotocheck/fotocheck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "evaluations", "e").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("storage_key", "StorageKey").
	Project("prompt", "Prompt").
	Project("overall_score", "OverallScore").
	Project("criteria_scores", "CriteriaScores").
	Project("safe", "Safe").
	Project("notes", "Notes").
	Project("agent_id", "AgentID").
	Project("thread_id", "ThreadID").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for evaluation queries.
// Nil fields are ignored. Safe and AgentID use exact matching; Filename
// uses case-insensitive contains matching.
type Filters struct {
	Safe     *bool   `json:"safe,omitempty"`
	Filename *string `json:"filename,omitempty"`
	AgentID  *string `json:"agent_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Safe", f.Safe).
		WhereContains("Filename", f.Filename).
		WhereEquals("AgentID", f.AgentID)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("safe"); s != "" {
		if v, err := strconv.ParseBool(s); err == nil {
			f.Safe = &v
		}
	}

	if fn := values.Get("filename"); fn != "" {
		f.Filename = &fn
	}

	if a := values.Get("agent_id"); a != "" {
		f.AgentID = &a
	}

	return f
}

func scanEvaluation(s repository.Scanner) (Evaluation, error) {
	var e Evaluation
	err := s.Scan(
		&e.ID,
		&e.Filename,
		&e.ContentType,
		&e.SizeBytes,
		&e.StorageKey,
		&e.Prompt,
		&e.OverallScore,
		&e.CriteriaScores,
		&e.Safe,
		&e.Notes,
		&e.AgentID,
		&e.ThreadID,
		&e.CreatedAt,
	)
	return e, err
}
