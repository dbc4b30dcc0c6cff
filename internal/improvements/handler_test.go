package improvements_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fotocheck/fotocheck/internal/improvements"
	"github.com/fotocheck/fotocheck/internal/workflow"
	"github.com/fotocheck/fotocheck/pkg/pagination"
	"github.com/fotocheck/fotocheck/pkg/routes"
	"github.com/fotocheck/fotocheck/pkg/storage"
)

type fakeSystem struct {
	improvement *improvements.Improvement
	createErr   error
	findErr     error
	deleteErr   error
	photo       *storage.Download

	lastCommand improvements.CreateCommand
	lastFilters improvements.Filters
}

func (f *fakeSystem) Handler(maxUploadSize int64) *improvements.Handler {
	return improvements.NewHandler(f, testLogger(), testPagination(), maxUploadSize)
}

func (f *fakeSystem) List(
	_ context.Context,
	page pagination.PageRequest,
	filters improvements.Filters,
) (*pagination.PageResult[improvements.Improvement], error) {
	f.lastFilters = filters

	var data []improvements.Improvement
	if f.improvement != nil {
		data = append(data, *f.improvement)
	}

	result := pagination.NewPageResult(data, len(data), page.Page, page.PageSize)
	return &result, nil
}

func (f *fakeSystem) Find(_ context.Context, id uuid.UUID) (*improvements.Improvement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.improvement, nil
}

func (f *fakeSystem) Create(_ context.Context, cmd improvements.CreateCommand) (*improvements.Improvement, error) {
	f.lastCommand = cmd
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.improvement, nil
}

func (f *fakeSystem) Photo(_ context.Context, id uuid.UUID) (*storage.Download, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.photo, nil
}

func (f *fakeSystem) Delete(_ context.Context, id uuid.UUID) error {
	return f.deleteErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPagination() pagination.Config {
	return pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}
}

func testMux(sys *fakeSystem) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(1<<20).Routes())
	return mux
}

func sampleImprovement() *improvements.Improvement {
	return &improvements.Improvement{
		ID:          uuid.New(),
		Filename:    "photo.jpg",
		ContentType: "image/png",
		SizeBytes:   4096,
		StorageKey:  "improvements/abc/photo.jpg",
		Prompt:      "Edita la imagen para cumplir con las reglas de fotografía tipo documento.",
		AppliedFixes: improvements.FixList{
			"Uniformizar el fondo a blanco puro.",
		},
		Size: "1024x1024",
	}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHandlerImprove(t *testing.T) {
	sys := &fakeSystem{improvement: sampleImprovement()}
	mux := testMux(sys)

	body, contentType := multipartBody(
		t,
		map[string]string{
			"notes":           "El fondo presenta sombras.",
			"criteria_scores": `{"fondo_blanco": 10, "tamano_3x4": 25}`,
			"size":            "512x512",
		},
		"photo.jpg",
		[]byte("fake image bytes"),
	)

	req := httptest.NewRequest("POST", "/improvements", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201; body: %s", rec.Code, rec.Body.String())
	}
	if sys.lastCommand.Filename != "photo.jpg" {
		t.Errorf("filename: got %s", sys.lastCommand.Filename)
	}
	if sys.lastCommand.Notes != "El fondo presenta sombras." {
		t.Errorf("notes: got %s", sys.lastCommand.Notes)
	}
	if sys.lastCommand.CriteriaScores["fondo_blanco"] != 10 {
		t.Errorf("criteria_scores: got %v", sys.lastCommand.CriteriaScores)
	}
	if sys.lastCommand.Size != "512x512" {
		t.Errorf("size: got %s", sys.lastCommand.Size)
	}
}

func TestHandlerImproveOverride(t *testing.T) {
	sys := &fakeSystem{improvement: sampleImprovement()}
	mux := testMux(sys)

	body, contentType := multipartBody(
		t,
		map[string]string{"prompt_override": "Recortar a 3:4 exacto."},
		"photo.jpg",
		[]byte("img"),
	)

	req := httptest.NewRequest("POST", "/improvements", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201", rec.Code)
	}
	if sys.lastCommand.PromptOverride != "Recortar a 3:4 exacto." {
		t.Errorf("prompt_override: got %s", sys.lastCommand.PromptOverride)
	}
}

func TestHandlerImproveMalformedScores(t *testing.T) {
	mux := testMux(&fakeSystem{improvement: sampleImprovement()})

	body, contentType := multipartBody(
		t,
		map[string]string{"criteria_scores": "not json"},
		"photo.jpg",
		[]byte("img"),
	)

	req := httptest.NewRequest("POST", "/improvements", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerImproveMissingFile(t *testing.T) {
	mux := testMux(&fakeSystem{})

	body, contentType := multipartBody(t, map[string]string{"notes": "x"}, "", nil)

	req := httptest.NewRequest("POST", "/improvements", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerImproveInvalidSize(t *testing.T) {
	sys := &fakeSystem{createErr: workflow.ErrInvalidRequest}
	mux := testMux(sys)

	body, contentType := multipartBody(
		t,
		map[string]string{"size": "999x999"},
		"photo.jpg",
		[]byte("img"),
	)

	req := httptest.NewRequest("POST", "/improvements", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	i := sampleImprovement()
	sys := &fakeSystem{improvement: i}
	mux := testMux(sys)

	req := httptest.NewRequest("GET", "/improvements/"+i.ID.String(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}

	var envelope struct {
		Success bool                     `json:"success"`
		Result  improvements.Improvement `json:"result"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Error("expected success envelope")
	}
	if envelope.Result.ID != i.ID {
		t.Errorf("id: got %s, want %s", envelope.Result.ID, i.ID)
	}
	if len(envelope.Result.AppliedFixes) != 1 {
		t.Errorf("applied_fixes: got %d, want 1", len(envelope.Result.AppliedFixes))
	}
}

func TestHandlerFindNotFound(t *testing.T) {
	sys := &fakeSystem{findErr: improvements.ErrNotFound}
	mux := testMux(sys)

	req := httptest.NewRequest("GET", "/improvements/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rec.Code)
	}
}

func TestHandlerSearch(t *testing.T) {
	sys := &fakeSystem{improvement: sampleImprovement()}
	mux := testMux(sys)

	req := httptest.NewRequest(
		"POST",
		"/improvements/search",
		strings.NewReader(`{"page": 1, "size": "1024x1024"}`),
	)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if sys.lastFilters.Size == nil || *sys.lastFilters.Size != "1024x1024" {
		t.Error("size filter not propagated")
	}
}

func TestHandlerPhoto(t *testing.T) {
	sys := &fakeSystem{
		improvement: sampleImprovement(),
		photo: &storage.Download{
			Body:          io.NopCloser(bytes.NewReader([]byte("png bytes"))),
			ContentType:   "image/png",
			ContentLength: 9,
		},
	}
	mux := testMux(sys)

	req := httptest.NewRequest("GET", "/improvements/"+uuid.NewString()+"/photo", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type: got %s", ct)
	}
	if rec.Body.String() != "png bytes" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}

func TestHandlerDelete(t *testing.T) {
	mux := testMux(&fakeSystem{})

	req := httptest.NewRequest("DELETE", "/improvements/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", rec.Code)
	}
}
