package rubric

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fotocheck/fotocheck/pkg/formatting"
)

// Result is the normalized outcome of a rubric evaluation.
type Result struct {
	OverallScore   int            `json:"overall_score"`
	CriteriaScores map[string]int `json:"criteria_scores"`
	Safe           bool           `json:"safe"`
	Notes          string         `json:"notes"`
	AgentID        string         `json:"agent_id,omitempty"`
	ThreadID       string         `json:"thread_id,omitempty"`
}

// Normalizer converts free-form model output into a Result, enforcing the
// strict field contract the agent instructions demand.
type Normalizer struct {
	rubric *Config
	logger *slog.Logger
}

func NewNormalizer(rubric *Config, logger *slog.Logger) *Normalizer {
	return &Normalizer{
		rubric: rubric,
		logger: logger.With("system", "rubric"),
	}
}

// Normalize extracts the JSON object from content and validates it. Models
// wrap their answer in prose or markdown fences often enough that extraction
// is tolerant; field validation is not. Every required key must be present
// and correctly typed. Unknown top-level keys are ignored. Scores outside
// [0, 100] are clamped and logged rather than rejected.
func (n *Normalizer) Normalize(content string) (*Result, error) {
	fields, err := formatting.Parse[map[string]json.RawMessage](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}

	overall, err := requireField[int](fields, "overall_score")
	if err != nil {
		return nil, err
	}

	scores, err := requireField[map[string]int](fields, "criteria_scores")
	if err != nil {
		return nil, err
	}

	safe, err := requireField[bool](fields, "safe")
	if err != nil {
		return nil, err
	}

	notes, err := requireField[string](fields, "notes")
	if err != nil {
		return nil, err
	}

	for name := range scores {
		if !n.rubric.Known(name) {
			return nil, fmt.Errorf("%w: unknown criterion: %s", ErrInvalidOutput, name)
		}
	}

	result := &Result{
		OverallScore:   n.clamp("overall_score", overall),
		CriteriaScores: make(map[string]int, len(scores)),
		Safe:           safe,
		Notes:          notes,
	}

	for name, score := range scores {
		result.CriteriaScores[name] = n.clamp(name, score)
	}

	return result, nil
}

func (n *Normalizer) clamp(field string, score int) int {
	clamped := min(max(score, 0), 100)
	if clamped != score {
		n.logger.Warn("score out of range, clamping",
			"field", field,
			"score", score,
			"clamped", clamped,
		)
	}
	return clamped
}

func requireField[T any](fields map[string]json.RawMessage, key string) (T, error) {
	var value T

	raw, ok := fields[key]
	if !ok {
		return value, fmt.Errorf("%w: missing field: %s", ErrInvalidOutput, key)
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		return value, fmt.Errorf("%w: field %s: %v", ErrInvalidOutput, key, err)
	}

	return value, nil
}
