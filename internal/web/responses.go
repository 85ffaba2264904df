package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
)

// CacheInfo tells the caller whether the payload was served from cache
// and what the change detection saw.
type CacheInfo struct {
	FromCache     bool       `json:"desde_cache"`
	DocumentsHash string     `json:"hash_documentos,omitempty"`
	CachedAt      *time.Time `json:"fecha_cache,omitempty"`
	HasChanges    *bool      `json:"hay_cambios,omitempty"`
}

// DocumentResponse is the result of one uploaded file.
type DocumentResponse struct {
	File          string          `json:"archivo"`
	Operation     string          `json:"operacion"`
	TotalSegments int             `json:"total_documentos_segmentados"`
	Documents     json.RawMessage `json:"documentos"`
	Cache         CacheInfo       `json:"cache"`
}

// DispatchResponse is the result of processing every document of one
// dispatch.
type DispatchResponse struct {
	Code          string          `json:"codigo_despacho"`
	Client        string          `json:"cliente"`
	State         string          `json:"estado"`
	Type          string          `json:"tipo"`
	Operation     string          `json:"operacion"`
	TotalSegments int             `json:"total_documentos_segmentados"`
	Documents     json.RawMessage `json:"documentos"`
	Cache         CacheInfo       `json:"cache"`
}

// ConsultResponse mirrors the dispatch detail lookup.
type ConsultResponse struct {
	Code      string              `json:"codigo_despacho"`
	Client    string              `json:"cliente"`
	State     string              `json:"estado"`
	Type      string              `json:"tipo"`
	Documents []sgd.DocumentEntry `json:"documentos"`
	Users     []sgd.UserEntry     `json:"usuarios"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("writing response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writePipelineError maps the pipeline error taxonomy onto HTTP codes.
func writePipelineError(w http.ResponseWriter, err error) {
	var valErr *orchestrator.ValidationError
	var toErr *orchestrator.TimeoutError
	var extErr *orchestrator.ExternalServiceError

	switch {
	case errors.Is(err, sgd.ErrNotFound):
		writeError(w, http.StatusNotFound, "despacho no encontrado")
	case errors.As(err, &valErr):
		writeError(w, http.StatusBadRequest, valErr.Error())
	case errors.As(err, &toErr):
		writeError(w, http.StatusGatewayTimeout, toErr.Error())
	case errors.As(err, &extErr):
		writeError(w, http.StatusBadGateway, extErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// marshalDocuments serializes the final document list, treating an empty
// run as an empty array rather than null.
func marshalDocuments(finals []orchestrator.FinalDocument) json.RawMessage {
	if len(finals) == 0 {
		return json.RawMessage("[]")
	}
	data, err := json.Marshal(finals)
	if err != nil {
		log.Error().Err(err).Msg("serializing documents")
		return json.RawMessage("[]")
	}
	return data
}
