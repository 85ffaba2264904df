package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/classify"
	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
	"github.com/PabloTorresOyarzun/sgdparser/internal/quality"
	"github.com/PabloTorresOyarzun/sgdparser/internal/segment"
	"github.com/PabloTorresOyarzun/sgdparser/internal/workers"
)

// Operation selects how far the pipeline runs: classification only, or
// classification plus per-segment field extraction.
type Operation string

const (
	OpClassify Operation = "clasificar"
	OpProcess  Operation = "procesar"
)

// extractableTypes lists the document types backed by a trained
// extraction model. Everything else skips extraction silently.
var extractableTypes = map[string]struct{}{
	"FACTURA_COMERCIAL":     {},
	"DOCUMENTO_TRANSPORTE":  {},
	"CERTIFICADO_ORIGEN":    {},
	"LISTA_EMBALAJE":        {},
	"CERTIFICADO_SANITARIO": {},
	"POLIZA_SEGURO":         {},
}

// Extractable reports whether a document type maps to a trained model.
func Extractable(docType string) bool {
	_, ok := extractableTypes[docType]
	return ok
}

// TextExtractor turns a (header-cropped) PDF into per-page OCR text.
type TextExtractor interface {
	ExtractPageText(ctx context.Context, pdf []byte, timeout time.Duration) (map[int]string, error)
}

// FieldExtractor runs a trained model over one segment.
type FieldExtractor interface {
	VerifyModel(ctx context.Context, modelID string) bool
	ExtractFields(ctx context.Context, pdf []byte, modelID string) (map[string]any, error)
}

// FinalDocument is one classified segment ready to hand back to the
// caller: the rendered sub-PDF plus its alerts and optional extraction.
type FinalDocument struct {
	SourceFile string         `json:"archivo_origen"`
	OutputName string         `json:"nombre_salida"`
	DocType    string         `json:"tipo"`
	Pages      []int          `json:"paginas"`
	Alerts     []Alert        `json:"alertas,omitempty"`
	Extracted  map[string]any `json:"datos_extraidos,omitempty"`
	Bytes      []byte         `json:"-"`
}

// Pipeline sequences quality analysis, rotation normalization,
// classification, segmentation and optional field extraction for one
// PDF. CPU-bound stages run through the shared worker pool under
// page-scaled timeout budgets.
type Pipeline struct {
	cfg     config.PipelineConfig
	modelID string
	text    TextExtractor
	fields  FieldExtractor
	pool    *workers.Pool
}

func NewPipeline(cfg config.PipelineConfig, modelID string, text TextExtractor, fields FieldExtractor, pool *workers.Pool) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		modelID: modelID,
		text:    text,
		fields:  fields,
		pool:    pool,
	}
}

// Run processes one PDF end to end and returns its final documents. The
// input bytes must be a PDF; conversion happens before the pipeline.
func (p *Pipeline) Run(ctx context.Context, pdf []byte, filename string, op Operation) ([]FinalDocument, error) {
	start := time.Now()

	docs, err := p.run(ctx, pdf, filename, op)
	if err != nil {
		metrics.IncDocument("pdf", "error")
		return nil, err
	}

	metrics.IncDocument("pdf", "ok")
	metrics.ObservePipeline(time.Since(start))
	return docs, nil
}

func (p *Pipeline) run(ctx context.Context, pdf []byte, filename string, op Operation) ([]FinalDocument, error) {
	doc, err := pdfdoc.Open(pdf)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	pages := doc.PageCount()

	// Quality analysis plus rotation normalization, budgeted by page
	// count.
	qualityBudget := p.cfg.QualityTimeout(pages)
	var records []quality.PageRecord
	normalized := pdf
	err = p.runStage(ctx, "calidad", qualityBudget, func() error {
		defer doc.Close()
		stageStart := time.Now()

		records = quality.NewAnalyzer().Analyze(doc)
		out, corrected, err := quality.NewNormalizer(p.cfg.VerticalTextRotation).Normalize(pdf, records)
		if err != nil {
			return err
		}
		normalized = out

		metrics.ObserveStage("calidad", time.Since(stageStart))
		log.Info().Str("file", filename).Int("pages", pages).Int("corrected", corrected).
			Dur("duration", time.Since(stageStart)).Msg("quality analysis done")
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Classification: OCR the header strip of every page in one call,
	// then match patterns per page.
	classifyStart := time.Now()
	cropped, err := pdfdoc.CropHeader(normalized, p.cfg.HeaderCropFraction)
	if err != nil {
		return nil, err
	}
	texts, err := p.text.ExtractPageText(ctx, cropped, p.cfg.AzureTimeout(pages))
	if err != nil {
		return nil, &ExternalServiceError{Service: "text extraction", Err: err}
	}
	pageTypes := make([]string, pages)
	for i := range pageTypes {
		pageTypes[i] = classify.Classify(texts[i+1])
	}
	metrics.ObserveStage("clasificacion", time.Since(classifyStart))

	// Segmentation.
	baseName := strings.TrimSuffix(filename, ".pdf")
	var segments []segment.Segment
	err = p.pool.Do(ctx, func() error {
		stageStart := time.Now()
		var err error
		segments, err = segment.Build(normalized, pageTypes, baseName)
		metrics.ObserveStage("segmentacion", time.Since(stageStart))
		return err
	})
	if err != nil {
		return nil, err
	}

	alertsByPage := PageAlerts(records)

	finals := make([]FinalDocument, 0, len(segments))
	for _, seg := range segments {
		pageList := make([]int, 0, seg.PageCount())
		for page := seg.FirstPage; page <= seg.LastPage; page++ {
			pageList = append(pageList, page)
		}

		final := FinalDocument{
			SourceFile: filename,
			OutputName: seg.Name,
			DocType:    seg.DocType,
			Pages:      pageList,
			Alerts:     segmentAlerts(alertsByPage, seg.FirstPage, seg.LastPage),
			Bytes:      seg.Bytes,
		}

		if op == OpProcess {
			final.Extracted = p.extractFields(ctx, seg)
		}
		finals = append(finals, final)
	}

	log.Info().Str("file", filename).Int("segments", len(finals)).Str("operacion", string(op)).Msg("pipeline finished")
	return finals, nil
}

// extractFields runs the trained model over one segment. Extraction is
// best effort: any failure leaves the segment without extracted data.
func (p *Pipeline) extractFields(ctx context.Context, seg segment.Segment) map[string]any {
	if p.fields == nil || !Extractable(seg.DocType) {
		return nil
	}

	stageStart := time.Now()
	defer func() { metrics.ObserveStage("extraccion", time.Since(stageStart)) }()

	if !p.fields.VerifyModel(ctx, p.modelID) {
		log.Warn().Str("model", p.modelID).Msg("extraction model not available")
		return nil
	}
	fields, err := p.fields.ExtractFields(ctx, seg.Bytes, p.modelID)
	if err != nil {
		log.Warn().Err(err).Str("segment", seg.Name).Msg("field extraction failed")
		return nil
	}
	return fields
}

// runStage gates fn through the worker pool under a hard deadline. On
// expiry the stage context is cancelled and the document fails with a
// timeout; an in-flight fn finishes in the background.
func (p *Pipeline) runStage(ctx context.Context, stage string, budget time.Duration, fn func() error) error {
	sctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- p.pool.Do(sctx, fn)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return &TimeoutError{Stage: stage, Budget: budget}
		}
		return err
	case <-sctx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TimeoutError{Stage: stage, Budget: budget}
	}
}
