package web

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/cache"
	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
)

const maxUploadMemory = 32 << 20

// handleUpload runs one uploaded file through the pipeline, serving from
// the content-addressed cache when the exact same bytes were already
// processed under the same operation.
func (s *Server) handleUpload(op orchestrator.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading upload")
			return
		}

		force := r.URL.Query().Get("force") == "true"
		hash := cache.FileHash(data)

		if s.cacheEnabled && !force {
			entry, err := s.cache.GetDocument(r.Context(), hash, string(op))
			if err != nil {
				cerr := &orchestrator.CacheError{Op: "get documento", Err: err}
				log.Warn().Err(cerr).Str("archivo", hdr.Filename).Msg("cache lookup failed, processing anyway")
			}
			if entry != nil {
				writeJSON(w, http.StatusOK, DocumentResponse{
					File:          hdr.Filename,
					Operation:     string(op),
					TotalSegments: entry.TotalSegments,
					Documents:     entry.Result,
					Cache:         CacheInfo{FromCache: true, CachedAt: &entry.UpdatedAt},
				})
				return
			}
		}

		finals, err := s.runner.RunUpload(r.Context(), data, hdr.Filename, op)
		if err != nil {
			writePipelineError(w, err)
			return
		}
		payload := marshalDocuments(finals)

		if s.cacheEnabled {
			put := cache.DocumentEntry{
				FileHash:      hash,
				Filename:      hdr.Filename,
				Operation:     string(op),
				TotalSegments: len(finals),
				Result:        payload,
			}
			if err := s.cache.PutDocument(r.Context(), put); err != nil {
				cerr := &orchestrator.CacheError{Op: "put documento", Err: err}
				log.Warn().Err(cerr).Str("archivo", hdr.Filename).Msg("cache write failed")
			}
		}

		writeJSON(w, http.StatusOK, DocumentResponse{
			File:          hdr.Filename,
			Operation:     string(op),
			TotalSegments: len(finals),
			Documents:     payload,
			Cache:         CacheInfo{FromCache: false},
		})
	}
}
