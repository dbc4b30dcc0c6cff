// Package improvements implements the photo correction domain for Fotocheck.
// It derives edit prompts from evaluation output, applies them through the
// image edit deployment, and retains the corrected photo in blob storage.
package improvements

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Improvement represents a corrected photo with the prompt that produced it
// and its blob storage reference.
type Improvement struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	StorageKey   string    `json:"storage_key"`
	Prompt       string    `json:"prompt"`
	AppliedFixes FixList   `json:"applied_fixes"`
	Size         string    `json:"size"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateCommand carries the data needed to correct and register a photo.
// PromptOverride, when non-empty, is used verbatim; otherwise the prompt is
// derived from CriteriaScores and Notes. Size defaults to 1024x1024.
type CreateCommand struct {
	Data           []byte
	Filename       string
	ContentType    string
	PromptOverride string
	Notes          string
	CriteriaScores map[string]int
	Size           string
}

// FixList stores applied fix directives as a jsonb column.
type FixList []string

func (l FixList) Value() (driver.Value, error) {
	if l == nil {
		l = FixList{}
	}
	return json.Marshal(l)
}

func (l *FixList) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	case nil:
		*l = FixList{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into FixList", src)
	}
}
