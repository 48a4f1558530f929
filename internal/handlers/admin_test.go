package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"carebot/internal/handlers"
	"carebot/internal/ingest"
)

type stubResyncer struct {
	result *ingest.SyncResult
	err    error
}

func (s *stubResyncer) Reset(context.Context) (*ingest.SyncResult, error) {
	return s.result, s.err
}

type stubStats struct {
	chunks int
	terms  int
	err    error
}

func (s *stubStats) ChunkCount(context.Context) (int, error) { return s.chunks, s.err }

func (s *stubStats) TermCount(context.Context) (int, error) { return s.terms, s.err }

func TestAdminSync(t *testing.T) {
	handler := handlers.NewAdminHandler(&stubResyncer{
		result: &ingest.SyncResult{FilesProcessed: 4, ChunksAdded: 12, Duration: 3 * time.Second},
	}, &stubStats{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil)
	rec := httptest.NewRecorder()
	handler.Sync(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, want := range []string{`"files_processed":4`, `"chunks_added":12`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("expected body to contain %s, got %s", want, rec.Body.String())
		}
	}
}

func TestAdminSyncFailure(t *testing.T) {
	handler := handlers.NewAdminHandler(&stubResyncer{err: errors.New("ingest failed")}, &stubStats{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/sync", nil)
	rec := httptest.NewRecorder()
	handler.Sync(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestAdminDiagnostic(t *testing.T) {
	handler := handlers.NewAdminHandler(&stubResyncer{}, &stubStats{chunks: 42, terms: 9})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/diagnostic", nil)
	rec := httptest.NewRecorder()
	handler.Diagnostic(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, want := range []string{`"chunk_count":42`, `"term_count":9`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("expected body to contain %s, got %s", want, rec.Body.String())
		}
	}
}

func TestAdminDiagnosticFailure(t *testing.T) {
	handler := handlers.NewAdminHandler(&stubResyncer{}, &stubStats{err: errors.New("db down")})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/diagnostic", nil)
	rec := httptest.NewRecorder()
	handler.Diagnostic(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
