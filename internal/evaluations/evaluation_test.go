package evaluations_test

import (
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/fotocheck/fotocheck/internal/evaluations"
	"github.com/fotocheck/fotocheck/internal/gateway"
	"github.com/fotocheck/fotocheck/internal/rubric"
	"github.com/fotocheck/fotocheck/internal/workflow"
)

func TestScoreMapRoundTrip(t *testing.T) {
	m := evaluations.ScoreMap{
		"fondo_blanco": 20,
		"tamano_3x4":   25,
	}

	value, err := m.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var scanned evaluations.ScoreMap
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(scanned) != 2 {
		t.Fatalf("scanned length: got %d, want 2", len(scanned))
	}
	if scanned["fondo_blanco"] != 20 {
		t.Errorf("fondo_blanco: got %d, want 20", scanned["fondo_blanco"])
	}
}

func TestScoreMapScanNil(t *testing.T) {
	var m evaluations.ScoreMap
	if err := m.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if m == nil {
		t.Error("expected empty map, got nil")
	}
}

func TestScoreMapScanString(t *testing.T) {
	var m evaluations.ScoreMap
	if err := m.Scan(`{"mirada_frontal_rostro_homogeneo": 15}`); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if m["mirada_frontal_rostro_homogeneo"] != 15 {
		t.Errorf("got %d, want 15", m["mirada_frontal_rostro_homogeneo"])
	}
}

func TestScoreMapScanInvalidType(t *testing.T) {
	var m evaluations.ScoreMap
	if err := m.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantSafe     *bool
		wantFilename string
		wantAgentID  string
	}{
		{
			name:  "empty query",
			query: "",
		},
		{
			name:     "safe true",
			query:    "safe=true",
			wantSafe: boolPtr(true),
		},
		{
			name:     "safe false",
			query:    "safe=false",
			wantSafe: boolPtr(false),
		},
		{
			name:  "safe invalid ignored",
			query: "safe=maybe",
		},
		{
			name:         "filename and agent",
			query:        "filename=foto&agent_id=asst_123",
			wantFilename: "foto",
			wantAgentID:  "asst_123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("parse query: %v", err)
			}

			f := evaluations.FiltersFromQuery(values)

			switch {
			case tt.wantSafe == nil && f.Safe != nil:
				t.Errorf("safe: got %v, want nil", *f.Safe)
			case tt.wantSafe != nil && (f.Safe == nil || *f.Safe != *tt.wantSafe):
				t.Errorf("safe: got %v, want %v", f.Safe, *tt.wantSafe)
			}

			if tt.wantFilename == "" && f.Filename != nil {
				t.Errorf("filename: got %v, want nil", *f.Filename)
			}
			if tt.wantFilename != "" && (f.Filename == nil || *f.Filename != tt.wantFilename) {
				t.Errorf("filename: got %v, want %s", f.Filename, tt.wantFilename)
			}

			if tt.wantAgentID != "" && (f.AgentID == nil || *f.AgentID != tt.wantAgentID) {
				t.Errorf("agent_id: got %v, want %s", f.AgentID, tt.wantAgentID)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", evaluations.ErrNotFound, http.StatusNotFound},
		{"duplicate", evaluations.ErrDuplicate, http.StatusConflict},
		{"too large", evaluations.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{"invalid upload", evaluations.ErrInvalidUpload, http.StatusBadRequest},
		{"invalid request", workflow.ErrInvalidRequest, http.StatusBadRequest},
		{"invalid output", rubric.ErrInvalidOutput, http.StatusBadGateway},
		{"run timeout", gateway.ErrRunTimeout, http.StatusGatewayTimeout},
		{"wrapped not found", errorsJoin(evaluations.ErrNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluations.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func errorsJoin(err error) error {
	return errors.Join(errors.New("find evaluation"), err)
}

func boolPtr(v bool) *bool { return &v }
