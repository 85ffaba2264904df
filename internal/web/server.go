package web

import (
	"context"
	"net/http"
	"time"

	"github.com/PabloTorresOyarzun/sgdparser/internal/cache"
	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
	"github.com/PabloTorresOyarzun/sgdparser/internal/statuscheck"
)

// DocumentRunner takes uploads and dispatch document sets through the
// processing pipeline.
type DocumentRunner interface {
	RunUpload(ctx context.Context, data []byte, filename string, op orchestrator.Operation) ([]orchestrator.FinalDocument, error)
	RunDispatch(ctx context.Context, docs []sgd.Document, op orchestrator.Operation) []orchestrator.FinalDocument
}

// DispatchFetcher retrieves dispatch metadata and documents from the
// dispatch management backend.
type DispatchFetcher interface {
	FetchDetail(ctx context.Context, code string) (*sgd.DispatchDetail, error)
	FetchDocuments(ctx context.Context, code string) ([]sgd.Document, error)
}

// ResultCache persists and serves previously computed results.
type ResultCache interface {
	GetDispatch(ctx context.Context, code, operation, hash string) (*cache.DispatchEntry, error)
	PutDispatch(ctx context.Context, e cache.DispatchEntry) error
	GetDocument(ctx context.Context, fileHash, operation string) (*cache.DocumentEntry, error)
	PutDocument(ctx context.Context, e cache.DocumentEntry) error
	CheckDispatchChanges(ctx context.Context, code, operation, newHash string) (cache.ChangeStatus, error)
	PurgeDispatch(ctx context.Context, code, operation string) (int64, error)
}

// Server is the HTTP surface: document upload endpoints, dispatch
// endpoints, cache administration and health/status probes.
type Server struct {
	runner       DocumentRunner
	dispatch     DispatchFetcher
	cache        ResultCache
	checker      *statuscheck.Checker
	apiToken     string
	cacheEnabled bool
}

func NewServer(cfg config.Config, runner DocumentRunner, dispatch DispatchFetcher, results ResultCache, checker *statuscheck.Checker) *Server {
	return &Server{
		runner:       runner,
		dispatch:     dispatch,
		cache:        results,
		checker:      checker,
		apiToken:     cfg.Server.APIToken,
		cacheEnabled: cfg.Cache.Enabled && results != nil,
	}
}

// Routes builds the handler tree. Health, status and metrics are open;
// everything else requires the API token.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /documentos/clasificar", s.auth(s.handleUpload(orchestrator.OpClassify)))
	mux.HandleFunc("POST /documentos/procesar", s.auth(s.handleUpload(orchestrator.OpProcess)))

	mux.HandleFunc("GET /sgd/consultar/{codigo}", s.auth(s.handleConsult))
	mux.HandleFunc("POST /sgd/clasificar/{codigo}", s.auth(s.handleDispatchRun(orchestrator.OpClassify)))
	mux.HandleFunc("POST /sgd/procesar/{codigo}", s.auth(s.handleDispatchRun(orchestrator.OpProcess)))

	mux.HandleFunc("DELETE /admin/cache/despacho/{codigo}", s.auth(s.handlePurge))

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", metrics.Handler())

	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	writeJSON(w, http.StatusOK, s.checker.Summary(ctx))
}
