package web

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/cache"
	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
)

// handleConsult returns the dispatch detail without processing anything.
func (s *Server) handleConsult(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("codigo")

	detail, err := s.dispatch.FetchDetail(r.Context(), code)
	if err != nil {
		if errors.Is(err, sgd.ErrNotFound) {
			writeError(w, http.StatusNotFound, "despacho no encontrado")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ConsultResponse{
		Code:      detail.Code,
		Client:    detail.Client,
		State:     detail.State,
		Type:      detail.Type,
		Documents: detail.Documents,
		Users:     detail.Users,
	})
}

// handleDispatchRun processes every document of a dispatch. The cache is
// consulted by dispatch code plus the identity hash of the document set;
// a changed set forces full reprocessing.
func (s *Server) handleDispatchRun(op orchestrator.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.PathValue("codigo")
		force := r.URL.Query().Get("force") == "true"

		detail, err := s.dispatch.FetchDetail(r.Context(), code)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		docs, err := s.dispatch.FetchDocuments(r.Context(), code)
		if err != nil {
			writePipelineError(w, err)
			return
		}

		hash := cache.DocumentSetHash(docs)

		var hasChanges *bool
		if s.cacheEnabled && !force {
			status, err := s.cache.CheckDispatchChanges(r.Context(), code, string(op), hash)
			if err != nil {
				cerr := &orchestrator.CacheError{Op: "check despacho", Err: err}
				log.Warn().Err(cerr).Str("despacho", code).Msg("change check failed, processing anyway")
			} else {
				hasChanges = &status.Changed
				if status.Exists && !status.Changed {
					entry, err := s.cache.GetDispatch(r.Context(), code, string(op), hash)
					if err != nil {
						cerr := &orchestrator.CacheError{Op: "get despacho", Err: err}
						log.Warn().Err(cerr).Str("despacho", code).Msg("cache lookup failed, processing anyway")
					}
					if entry != nil {
						writeJSON(w, http.StatusOK, DispatchResponse{
							Code:          entry.Code,
							Client:        entry.Client,
							State:         entry.State,
							Type:          entry.Type,
							Operation:     string(op),
							TotalSegments: entry.TotalSegments,
							Documents:     entry.Result,
							Cache: CacheInfo{
								FromCache:     true,
								DocumentsHash: entry.DocumentsHash,
								CachedAt:      &entry.UpdatedAt,
								HasChanges:    hasChanges,
							},
						})
						return
					}
				}
			}
		}

		finals := s.runner.RunDispatch(r.Context(), docs, op)
		payload := marshalDocuments(finals)

		if s.cacheEnabled {
			put := cache.DispatchEntry{
				Code:          code,
				Operation:     string(op),
				DocumentsHash: hash,
				Client:        detail.Client,
				State:         detail.State,
				Type:          detail.Type,
				TotalSegments: len(finals),
				Result:        payload,
			}
			if err := s.cache.PutDispatch(r.Context(), put); err != nil {
				cerr := &orchestrator.CacheError{Op: "put despacho", Err: err}
				log.Warn().Err(cerr).Str("despacho", code).Msg("cache write failed")
			}
		}

		writeJSON(w, http.StatusOK, DispatchResponse{
			Code:          code,
			Client:        detail.Client,
			State:         detail.State,
			Type:          detail.Type,
			Operation:     string(op),
			TotalSegments: len(finals),
			Documents:     payload,
			Cache: CacheInfo{
				FromCache:     false,
				DocumentsHash: hash,
				HasChanges:    hasChanges,
			},
		})
	}
}

// handlePurge drops cached dispatch rows. An empty tipo_operacion purges
// both operations.
func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		writeError(w, http.StatusServiceUnavailable, "cache not configured")
		return
	}
	code := r.PathValue("codigo")
	operation := r.URL.Query().Get("tipo_operacion")

	rows, err := s.cache.PurgeDispatch(r.Context(), code, operation)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"codigo_despacho":  code,
		"filas_eliminadas": rows,
	})
}
