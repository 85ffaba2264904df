package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PabloTorresOyarzun/sgdparser/internal/cache"
	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
	"github.com/PabloTorresOyarzun/sgdparser/internal/statuscheck"
)

type fakeRunner struct {
	uploads    atomic.Int32
	dispatches atomic.Int32
	finals     []orchestrator.FinalDocument
	err        error
}

func (f *fakeRunner) RunUpload(ctx context.Context, data []byte, filename string, op orchestrator.Operation) ([]orchestrator.FinalDocument, error) {
	f.uploads.Add(1)
	return f.finals, f.err
}

func (f *fakeRunner) RunDispatch(ctx context.Context, docs []sgd.Document, op orchestrator.Operation) []orchestrator.FinalDocument {
	f.dispatches.Add(1)
	return f.finals
}

type fakeDispatch struct {
	detail *sgd.DispatchDetail
	docs   []sgd.Document
	err    error
}

func (f *fakeDispatch) FetchDetail(ctx context.Context, code string) (*sgd.DispatchDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.detail, nil
}

func (f *fakeDispatch) FetchDocuments(ctx context.Context, code string) ([]sgd.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

type fakeCache struct {
	dispatches map[string]cache.DispatchEntry
	documents  map[string]cache.DocumentEntry
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		dispatches: map[string]cache.DispatchEntry{},
		documents:  map[string]cache.DocumentEntry{},
	}
}

func (f *fakeCache) GetDispatch(ctx context.Context, code, operation, hash string) (*cache.DispatchEntry, error) {
	e, ok := f.dispatches[code+"|"+operation]
	if !ok || (hash != "" && e.DocumentsHash != hash) {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeCache) PutDispatch(ctx context.Context, e cache.DispatchEntry) error {
	e.UpdatedAt = time.Now()
	f.dispatches[e.Code+"|"+e.Operation] = e
	return nil
}

func (f *fakeCache) GetDocument(ctx context.Context, fileHash, operation string) (*cache.DocumentEntry, error) {
	e, ok := f.documents[fileHash+"|"+operation]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (f *fakeCache) PutDocument(ctx context.Context, e cache.DocumentEntry) error {
	e.UpdatedAt = time.Now()
	f.documents[e.FileHash+"|"+e.Operation] = e
	return nil
}

func (f *fakeCache) CheckDispatchChanges(ctx context.Context, code, operation, newHash string) (cache.ChangeStatus, error) {
	e, ok := f.dispatches[code+"|"+operation]
	if !ok {
		return cache.ChangeStatus{Exists: false, Changed: true, NewHash: newHash}, nil
	}
	return cache.ChangeStatus{
		Exists:      true,
		Changed:     e.DocumentsHash != newHash,
		CurrentHash: e.DocumentsHash,
		NewHash:     newHash,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}

func (f *fakeCache) PurgeDispatch(ctx context.Context, code, operation string) (int64, error) {
	var removed int64
	for key, e := range f.dispatches {
		if e.Code == code && (operation == "" || e.Operation == operation) {
			delete(f.dispatches, key)
			removed++
		}
	}
	return removed, nil
}

const testToken = "secreto"

func newTestServer(runner *fakeRunner, dispatch *fakeDispatch, results *fakeCache) http.Handler {
	cfg := config.Config{}
	cfg.Server.APIToken = testToken
	cfg.Cache.Enabled = true
	s := NewServer(cfg, runner, dispatch, results, statuscheck.New(statuscheck.Options{}))
	return s.Routes()
}

func uploadRequest(t *testing.T, url string, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", testToken)
	return req
}

func TestAuthRejectsMissingToken(t *testing.T) {
	h := newTestServer(&fakeRunner{}, &fakeDispatch{}, newFakeCache())

	req := httptest.NewRequest(http.MethodPost, "/documentos/clasificar", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHealthIsOpen(t *testing.T) {
	h := newTestServer(&fakeRunner{}, &fakeDispatch{}, newFakeCache())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func TestUploadCacheRoundTrip(t *testing.T) {
	runner := &fakeRunner{finals: []orchestrator.FinalDocument{
		{SourceFile: "f.pdf", OutputName: "f_FACTURA_COMERCIAL_1.pdf", DocType: "FACTURA_COMERCIAL", Pages: []int{1}},
	}}
	h := newTestServer(runner, &fakeDispatch{}, newFakeCache())

	data := []byte("%PDF-1.4 contenido")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/documentos/clasificar", "f.pdf", data))
	if rec.Code != http.StatusOK {
		t.Fatalf("first call: %d %s", rec.Code, rec.Body)
	}
	var first DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatal(err)
	}
	if first.Cache.FromCache {
		t.Fatal("first call must not come from cache")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/documentos/clasificar", "renombrado.pdf", data))
	var second DocumentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if !second.Cache.FromCache {
		t.Fatal("identical bytes must hit the cache regardless of filename")
	}
	if !bytes.Equal(first.Documents, second.Documents) {
		t.Fatalf("cached payload differs: %s vs %s", first.Documents, second.Documents)
	}
	if runner.uploads.Load() != 1 {
		t.Fatalf("pipeline ran %d times, expected 1", runner.uploads.Load())
	}
}

func TestUploadForceBypassesCache(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestServer(runner, &fakeDispatch{}, newFakeCache())

	data := []byte("%PDF-1.4 contenido")
	h.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "/documentos/clasificar", "f.pdf", data))
	h.ServeHTTP(httptest.NewRecorder(), uploadRequest(t, "/documentos/clasificar?force=true", "f.pdf", data))

	if runner.uploads.Load() != 2 {
		t.Fatalf("pipeline ran %d times, expected 2", runner.uploads.Load())
	}
}

func TestUploadValidationErrorMapsTo400(t *testing.T) {
	runner := &fakeRunner{err: &orchestrator.ValidationError{Reason: "unsupported file type"}}
	h := newTestServer(runner, &fakeDispatch{}, newFakeCache())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, uploadRequest(t, "/documentos/clasificar", "f.bin", []byte("xx")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDispatchChangeDetection(t *testing.T) {
	detail := &sgd.DispatchDetail{Code: "I-1234", Client: "ACME", State: "abierto", Type: "importacion"}
	dispatch := &fakeDispatch{
		detail: detail,
		docs: []sgd.Document{
			{Name: "factura.pdf", ExternalID: "77", Data: "JVBERg=="},
		},
	}
	runner := &fakeRunner{}
	h := newTestServer(runner, dispatch, newFakeCache())

	authed := func(method, url string) *http.Request {
		req := httptest.NewRequest(method, url, nil)
		req.Header.Set("X-API-Key", testToken)
		return req
	}

	// First run processes and caches.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authed(http.MethodPost, "/sgd/clasificar/I-1234"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first run: %d %s", rec.Code, rec.Body)
	}

	// Same document set: served from cache, pipeline not re-invoked.
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, authed(http.MethodPost, "/sgd/clasificar/I-1234"))
	var resp DispatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Cache.FromCache {
		t.Fatal("unchanged dispatch must hit the cache")
	}
	if resp.Cache.HasChanges == nil || *resp.Cache.HasChanges {
		t.Fatalf("unchanged dispatch: hay_cambios = %v", resp.Cache.HasChanges)
	}
	if runner.dispatches.Load() != 1 {
		t.Fatalf("pipeline ran %d times, expected 1", runner.dispatches.Load())
	}

	// A new document changes the identity hash and forces reprocessing.
	dispatch.docs = append(dispatch.docs, sgd.Document{Name: "bl.pdf", ExternalID: "78", Data: "JVBERg=="})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, authed(http.MethodPost, "/sgd/clasificar/I-1234"))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Cache.FromCache {
		t.Fatal("changed dispatch must reprocess")
	}
	if resp.Cache.HasChanges == nil || !*resp.Cache.HasChanges {
		t.Fatalf("changed dispatch: hay_cambios = %v", resp.Cache.HasChanges)
	}
	if runner.dispatches.Load() != 2 {
		t.Fatalf("pipeline ran %d times, expected 2", runner.dispatches.Load())
	}
}

func TestDispatchNotFound(t *testing.T) {
	h := newTestServer(&fakeRunner{}, &fakeDispatch{err: sgd.ErrNotFound}, newFakeCache())

	req := httptest.NewRequest(http.MethodPost, "/sgd/procesar/NO-EXISTE", nil)
	req.Header.Set("X-API-Key", testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPurgeDispatchCache(t *testing.T) {
	results := newFakeCache()
	results.PutDispatch(context.Background(), cache.DispatchEntry{
		Code: "I-1234", Operation: "clasificar", DocumentsHash: "abc", Result: json.RawMessage("[]"),
	})
	h := newTestServer(&fakeRunner{}, &fakeDispatch{}, results)

	req := httptest.NewRequest(http.MethodDelete, "/admin/cache/despacho/I-1234", nil)
	req.Header.Set("X-API-Key", testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("purge: %d %s", rec.Code, rec.Body)
	}

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["filas_eliminadas"].(float64) != 1 {
		t.Fatalf("expected 1 purged row, got %v", out["filas_eliminadas"])
	}
	if len(results.dispatches) != 0 {
		t.Fatal("cache entry survived purge")
	}
}

func TestConsultDispatch(t *testing.T) {
	detail := &sgd.DispatchDetail{
		Code:   "I-1234",
		Client: "ACME",
		State:  "abierto",
		Type:   "importacion",
		Documents: []sgd.DocumentEntry{
			{Name: "Factura Comercial", State: "recibido", ReceivedAt: "2026-08-01"},
		},
	}
	h := newTestServer(&fakeRunner{}, &fakeDispatch{detail: detail}, newFakeCache())

	req := httptest.NewRequest(http.MethodGet, "/sgd/consultar/I-1234", nil)
	req.Header.Set("X-API-Key", testToken)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("consult: %d %s", rec.Code, rec.Body)
	}

	var resp ConsultResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "I-1234" || len(resp.Documents) != 1 {
		t.Fatalf("consult response: %+v", resp)
	}
}
