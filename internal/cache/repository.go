package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS despachos_procesados (
    id SERIAL PRIMARY KEY,
    codigo_despacho VARCHAR(50) NOT NULL,
    tipo_operacion VARCHAR(20) NOT NULL,
    documentos_hash VARCHAR(64) NOT NULL,
    cliente VARCHAR(255),
    estado VARCHAR(50),
    tipo VARCHAR(50),
    total_documentos_segmentados INTEGER,
    resultado JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE(codigo_despacho, tipo_operacion)
);

CREATE TABLE IF NOT EXISTS documentos_procesados (
    id SERIAL PRIMARY KEY,
    archivo_hash VARCHAR(64) NOT NULL,
    nombre_archivo VARCHAR(255) NOT NULL,
    tipo_operacion VARCHAR(20) NOT NULL,
    total_documentos_segmentados INTEGER,
    resultado JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
    UNIQUE(archivo_hash, tipo_operacion)
);

CREATE INDEX IF NOT EXISTS idx_despachos_codigo ON despachos_procesados(codigo_despacho);
CREATE INDEX IF NOT EXISTS idx_despachos_hash ON despachos_procesados(documentos_hash);
CREATE INDEX IF NOT EXISTS idx_documentos_hash ON documentos_procesados(archivo_hash);
`

// DispatchEntry is one cached dispatch result row.
type DispatchEntry struct {
	Code          string
	Operation     string
	DocumentsHash string
	Client        string
	State         string
	Type          string
	TotalSegments int
	Result        json.RawMessage
	UpdatedAt     time.Time
}

// DocumentEntry is one cached standalone-file result row.
type DocumentEntry struct {
	FileHash      string
	Filename      string
	Operation     string
	TotalSegments int
	Result        json.RawMessage
	UpdatedAt     time.Time
}

// ChangeStatus reports whether a dispatch has cached state and whether
// the new document-set hash differs from the stored one.
type ChangeStatus struct {
	Exists      bool
	Changed     bool
	CurrentHash string
	NewHash     string
	UpdatedAt   time.Time
}

// Repository persists processed results in Postgres, keyed by dispatch
// code or file hash plus the operation that produced them.
type Repository struct {
	pool *pgxpool.Pool
}

// Connect opens the connection pool and bootstraps the schema.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("opening database pool: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrapping cache schema: %w", err)
	}

	log.Info().Msg("cache database ready")
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

// Ping verifies database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// GetDispatch fetches the cached dispatch result. When hash is non-empty
// only an entry with that exact document-set hash matches. A miss
// returns (nil, nil).
func (r *Repository) GetDispatch(ctx context.Context, code, operation, hash string) (*DispatchEntry, error) {
	query := `SELECT codigo_despacho, tipo_operacion, documentos_hash, cliente, estado, tipo,
	                 total_documentos_segmentados, resultado, updated_at
	          FROM despachos_procesados
	          WHERE codigo_despacho = $1 AND tipo_operacion = $2`
	args := []any{code, operation}
	if hash != "" {
		query += ` AND documentos_hash = $3`
		args = append(args, hash)
	}

	var e DispatchEntry
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&e.Code, &e.Operation, &e.DocumentsHash, &e.Client, &e.State, &e.Type,
		&e.TotalSegments, &e.Result, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.IncCache("despacho", "miss")
		return nil, nil
	}
	if err != nil {
		metrics.IncCache("despacho", "error")
		return nil, err
	}
	metrics.IncCache("despacho", "hit")
	return &e, nil
}

// PutDispatch stores or refreshes the dispatch result.
func (r *Repository) PutDispatch(ctx context.Context, e DispatchEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO despachos_procesados
			(codigo_despacho, tipo_operacion, documentos_hash, cliente, estado, tipo,
			 total_documentos_segmentados, resultado)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (codigo_despacho, tipo_operacion)
		DO UPDATE SET
			documentos_hash = EXCLUDED.documentos_hash,
			cliente = EXCLUDED.cliente,
			estado = EXCLUDED.estado,
			tipo = EXCLUDED.tipo,
			total_documentos_segmentados = EXCLUDED.total_documentos_segmentados,
			resultado = EXCLUDED.resultado,
			updated_at = NOW()`,
		e.Code, e.Operation, e.DocumentsHash, e.Client, e.State, e.Type,
		e.TotalSegments, e.Result,
	)
	if err != nil {
		return err
	}
	log.Info().Str("despacho", e.Code).Str("operacion", e.Operation).Msg("dispatch result cached")
	return nil
}

// GetDocument fetches the cached result for a standalone file.
func (r *Repository) GetDocument(ctx context.Context, fileHash, operation string) (*DocumentEntry, error) {
	var e DocumentEntry
	err := r.pool.QueryRow(ctx, `
		SELECT archivo_hash, nombre_archivo, tipo_operacion,
		       total_documentos_segmentados, resultado, updated_at
		FROM documentos_procesados
		WHERE archivo_hash = $1 AND tipo_operacion = $2`,
		fileHash, operation,
	).Scan(&e.FileHash, &e.Filename, &e.Operation, &e.TotalSegments, &e.Result, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.IncCache("documento", "miss")
		return nil, nil
	}
	if err != nil {
		metrics.IncCache("documento", "error")
		return nil, err
	}
	metrics.IncCache("documento", "hit")
	return &e, nil
}

// PutDocument stores or refreshes the standalone-file result.
func (r *Repository) PutDocument(ctx context.Context, e DocumentEntry) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documentos_procesados
			(archivo_hash, nombre_archivo, tipo_operacion, total_documentos_segmentados, resultado)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (archivo_hash, tipo_operacion)
		DO UPDATE SET
			nombre_archivo = EXCLUDED.nombre_archivo,
			total_documentos_segmentados = EXCLUDED.total_documentos_segmentados,
			resultado = EXCLUDED.resultado,
			updated_at = NOW()`,
		e.FileHash, e.Filename, e.Operation, e.TotalSegments, e.Result,
	)
	if err != nil {
		return err
	}
	log.Info().Str("archivo", e.Filename).Str("operacion", e.Operation).Msg("document result cached")
	return nil
}

// CheckDispatchChanges compares the incoming document-set hash with the
// cached one. A dispatch with no cache row always counts as changed.
func (r *Repository) CheckDispatchChanges(ctx context.Context, code, operation, newHash string) (ChangeStatus, error) {
	var currentHash string
	var updatedAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT documentos_hash, updated_at
		FROM despachos_procesados
		WHERE codigo_despacho = $1 AND tipo_operacion = $2`,
		code, operation,
	).Scan(&currentHash, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChangeStatus{Exists: false, Changed: true, NewHash: newHash}, nil
	}
	if err != nil {
		return ChangeStatus{}, err
	}

	status := ChangeStatus{
		Exists:      true,
		Changed:     currentHash != newHash,
		CurrentHash: currentHash,
		NewHash:     newHash,
		UpdatedAt:   updatedAt,
	}
	if status.Changed {
		metrics.IncCache("despacho", "changed")
	}
	return status, nil
}

// PurgeDispatch removes cached rows for a dispatch. An empty operation
// purges every operation; the count of deleted rows is returned.
func (r *Repository) PurgeDispatch(ctx context.Context, code, operation string) (int64, error) {
	query := `DELETE FROM despachos_procesados WHERE codigo_despacho = $1`
	args := []any{code}
	if operation != "" {
		query += ` AND tipo_operacion = $2`
		args = append(args, operation)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	rows := tag.RowsAffected()
	log.Info().Str("despacho", code).Int64("rows", rows).Msg("dispatch cache purged")
	return rows, nil
}
