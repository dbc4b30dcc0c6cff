package rubric_test

import (
	"strings"
	"testing"

	"github.com/fotocheck/fotocheck/internal/rubric"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := &rubric.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if len(cfg.Criteria) != 5 {
		t.Errorf("criteria count = %d, want 5", len(cfg.Criteria))
	}
	if cfg.Criteria[0].Name != "tamaño_3x4" {
		t.Errorf("first criterion = %s, want tamaño_3x4", cfg.Criteria[0].Name)
	}
	if cfg.Generic == "" || cfg.Preamble == "" || cfg.Suffix == "" || cfg.Prompt == "" {
		t.Error("prompt text defaults not populated")
	}

	total := 0
	for _, criterion := range cfg.Criteria {
		total += criterion.MaxScore
	}
	if total != 100 {
		t.Errorf("max scores sum to %d, want 100", total)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     rubric.Config
		wantErr string
	}{
		{
			name: "duplicate criterion",
			cfg: rubric.Config{Criteria: []rubric.Criterion{
				{Name: "fondo_blanco", Threshold: 25, Directive: "a"},
				{Name: "fondo_blanco", Threshold: 25, Directive: "b"},
			}},
			wantErr: "duplicate criterion",
		},
		{
			name: "threshold out of range",
			cfg: rubric.Config{Criteria: []rubric.Criterion{
				{Name: "fondo_blanco", Threshold: 120, Directive: "a"},
			}},
			wantErr: "threshold out of range",
		},
		{
			name: "missing directive",
			cfg: rubric.Config{Criteria: []rubric.Criterion{
				{Name: "fondo_blanco", Threshold: 25},
			}},
			wantErr: "directive required",
		},
		{
			name: "empty keyword",
			cfg: rubric.Config{Vocabulary: []rubric.KeywordRule{
				{Keyword: "", Directive: "a"},
			}},
			wantErr: "keyword and directive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := rubric.Default()
	overlay := &rubric.Config{
		Generic: "Retocar mínimamente.",
		Criteria: []rubric.Criterion{
			{Name: "fondo_blanco", MaxScore: 100, Threshold: 50, Directive: "Aclarar el fondo."},
		},
	}

	base.Merge(overlay)

	if base.Generic != "Retocar mínimamente." {
		t.Errorf("Generic = %q, not overridden", base.Generic)
	}
	if len(base.Criteria) != 1 || base.Criteria[0].Threshold != 50 {
		t.Errorf("Criteria not overridden: %v", base.Criteria)
	}
	if base.Preamble == "" {
		t.Error("Merge cleared unset field")
	}
}

func TestConfigKnown(t *testing.T) {
	cfg := rubric.Default()

	if !cfg.Known("fondo_blanco") {
		t.Error("fondo_blanco not recognized")
	}
	if cfg.Known("nitidez") {
		t.Error("nitidez recognized as criterion")
	}
}
