package orchestrator

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/converter"
	"github.com/PabloTorresOyarzun/sgdparser/internal/filetype"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
)

// SpreadsheetConverter converts spreadsheet bytes to PDF bytes.
type SpreadsheetConverter interface {
	SpreadsheetToPDF(ctx context.Context, data []byte, filename string) ([]byte, error)
}

// Batch runs the pipeline over the documents of one dispatch. Individual
// document failures are skipped; partial success is the normal outcome.
type Batch struct {
	pipeline *Pipeline
	convert  SpreadsheetConverter
	detector *filetype.Detector
	cfg      config.PipelineConfig
	sem      *semaphore.Weighted
}

func NewBatch(pipeline *Pipeline, convert SpreadsheetConverter, cfg config.PipelineConfig) *Batch {
	return &Batch{
		pipeline: pipeline,
		convert:  convert,
		detector: filetype.New(),
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.MaxConcurrentPDFs)),
	}
}

// Intake validates an upload and converts it to PDF bytes. The returned
// filename is the post-conversion name fed into output naming.
func (b *Batch) Intake(ctx context.Context, data []byte, filename string) ([]byte, string, error) {
	if err := b.detector.CheckSize(data, b.cfg.MaxFileSizeMB); err != nil {
		return nil, "", &ValidationError{Reason: err.Error()}
	}
	info, err := b.detector.Detect(filename, data)
	if err != nil {
		return nil, "", &ValidationError{Reason: err.Error()}
	}

	switch info.Kind {
	case filetype.KindPDF:
		return data, filename, nil

	case filetype.KindSpreadsheet:
		cctx, cancel := context.WithTimeout(ctx, b.cfg.ExcelTimeout(int64(len(data))))
		defer cancel()
		pdf, err := b.convert.SpreadsheetToPDF(cctx, data, filename)
		if err != nil {
			if cctx.Err() != nil {
				return nil, "", &TimeoutError{Stage: "conversion", Budget: b.cfg.ExcelTimeout(int64(len(data)))}
			}
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		metrics.IncDocument("spreadsheet", "converted")
		return pdf, converter.PDFName(filename), nil

	case filetype.KindImage:
		pdf, err := converter.ImageToPDF(data, filename)
		if err != nil {
			return nil, "", &ValidationError{Reason: err.Error()}
		}
		metrics.IncDocument("image", "converted")
		return pdf, converter.PDFName(filename), nil

	default:
		return nil, "", &ValidationError{Reason: "unsupported file type"}
	}
}

// RunUpload takes one raw upload through intake and the pipeline.
func (b *Batch) RunUpload(ctx context.Context, data []byte, filename string, op Operation) ([]FinalDocument, error) {
	pdf, name, err := b.Intake(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	return b.pipeline.Run(ctx, pdf, name, op)
}

// RunDispatch decodes and processes every dispatch document, bounded by
// the in-flight PDF semaphore. Failing documents are logged and skipped;
// results aggregate in input order.
func (b *Batch) RunDispatch(ctx context.Context, docs []sgd.Document, op Operation) []FinalDocument {
	results := make([][]FinalDocument, len(docs))
	var wg sync.WaitGroup

	for i, doc := range docs {
		wg.Add(1)
		go func(i int, doc sgd.Document) {
			defer wg.Done()

			if err := b.sem.Acquire(ctx, 1); err != nil {
				log.Warn().Err(err).Str("file", doc.Name).Msg("dispatch document cancelled")
				return
			}
			defer b.sem.Release(1)

			data, err := doc.Decode()
			if err != nil {
				log.Warn().Err(err).Str("file", doc.Name).Msg("skipping undecodable document")
				return
			}

			finals, err := b.RunUpload(ctx, data, doc.Name, op)
			if err != nil {
				log.Warn().Err(err).Str("file", doc.Name).Msg("skipping failed document")
				return
			}
			results[i] = finals
		}(i, doc)
	}
	wg.Wait()

	var out []FinalDocument
	for _, finals := range results {
		out = append(out, finals...)
	}
	return out
}
