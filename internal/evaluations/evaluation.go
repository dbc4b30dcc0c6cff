// Package evaluations implements the photo evaluation domain for Fotocheck.
// It provides types, data access, and business logic for submitting photos
// to the rubric agent, persisting the normalized results, and retaining the
// original photo in blob storage.
package evaluations

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Evaluation represents a scored photo with its rubric result and blob
// storage reference.
type Evaluation struct {
	ID             uuid.UUID `json:"id"`
	Filename       string    `json:"filename"`
	ContentType    string    `json:"content_type"`
	SizeBytes      int64     `json:"size_bytes"`
	StorageKey     string    `json:"storage_key"`
	Prompt         string    `json:"prompt"`
	OverallScore   int       `json:"overall_score"`
	CriteriaScores ScoreMap  `json:"criteria_scores"`
	Safe           bool      `json:"safe"`
	Notes          string    `json:"notes"`
	AgentID        string    `json:"agent_id"`
	ThreadID       string    `json:"thread_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to evaluate and register a photo.
// Prompt is optional; the configured rubric prompt applies when empty.
type CreateCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	Prompt      string
}

// ScoreMap stores per-criterion scores as a jsonb column.
type ScoreMap map[string]int

func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		m = ScoreMap{}
	}
	return json.Marshal(m)
}

func (m *ScoreMap) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = ScoreMap{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ScoreMap", src)
	}
}
