package quality

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
)

const (
	// Minimum fraction of the page covered by raster content for a page
	// to count as scanned.
	ScannedCoverageRatio = 0.7

	// Pages with at least this much embedded text are digital regardless
	// of raster coverage.
	ScannedMaxChars = 200

	// Aspect ratio separating vertical from horizontal text spans.
	SpanAspectRatio = 1.5

	// Fraction of vertical spans above which a digital page counts as
	// rotated.
	VerticalSpanRatio = 0.6
)

// OrientationKind classifies the page orientation finding.
type OrientationKind int

const (
	OrientNormal OrientationKind = iota
	OrientRotated
	OrientSlightTilt
	OrientModerateTilt
	OrientSevereTilt
	OrientNoText
	OrientNoImage
	OrientNoLines
	OrientUndetermined
)

// Orientation is the per-page orientation verdict. Angle is meaningful
// only for the tilt kinds.
type Orientation struct {
	Kind  OrientationKind
	Angle float64
}

func (o Orientation) String() string {
	switch o.Kind {
	case OrientNormal:
		return "NORMAL"
	case OrientRotated:
		return "ROTADA"
	case OrientSlightTilt:
		return fmt.Sprintf("LIGERAMENTE INCLINADA (%.2f°)", o.Angle)
	case OrientModerateTilt:
		return fmt.Sprintf("INCLINADA (%.2f°)", o.Angle)
	case OrientSevereTilt:
		return fmt.Sprintf("MUY INCLINADA (%.2f°)", o.Angle)
	case OrientNoText:
		return "SIN TEXTO"
	case OrientNoImage:
		return "SIN IMAGEN"
	case OrientNoLines:
		return "NO SE DETECTARON LINEAS"
	default:
		return "INDETERMINADA"
	}
}

// Tilted reports whether the page is skewed at any severity.
func (o Orientation) Tilted() bool {
	return o.Kind == OrientSlightTilt || o.Kind == OrientModerateTilt || o.Kind == OrientSevereTilt
}

// Anomalous reports a scanned-page finding worth alerting on beyond tilt.
func (o Orientation) Anomalous() bool {
	switch o.Kind {
	case OrientNormal, OrientNoText, OrientNoImage:
		return false
	}
	return true
}

// PageRecord captures the quality findings for one page. Records are
// created once during analysis and never mutated afterwards.
type PageRecord struct {
	Page           int         `json:"pagina"`
	Scanned        bool        `json:"escaneada"`
	ImageCount     int         `json:"num_imagenes"`
	FormalRotation int         `json:"rotacion_formal"`
	Orientation    Orientation `json:"-"`
	OrientationStr string      `json:"orientacion"`
	CharCount      int         `json:"chars_texto"`
}

// Analyzer performs the read-only per-page quality pass.
type Analyzer struct {
	dpi float64
}

// NewAnalyzer creates an analyzer rendering at the standard analysis DPI.
func NewAnalyzer() *Analyzer {
	return &Analyzer{dpi: AnalysisDPI}
}

// Analyze inspects every page and returns one record per page, 1-indexed.
// A failure on a single page degrades that page to an undetermined
// orientation instead of failing the document.
func (a *Analyzer) Analyze(doc *pdfdoc.Document) []PageRecord {
	n := doc.PageCount()
	records := make([]PageRecord, 0, n)

	for page := 1; page <= n; page++ {
		rec := a.analyzePage(doc, page)
		rec.OrientationStr = rec.Orientation.String()
		records = append(records, rec)
	}
	return records
}

func (a *Analyzer) analyzePage(doc *pdfdoc.Document, page int) PageRecord {
	rec := PageRecord{Page: page}

	text, err := doc.PageText(page)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("page text extraction failed")
		rec.Orientation = Orientation{Kind: OrientUndetermined}
		return rec
	}
	rec.CharCount = len([]rune(strings.TrimSpace(text)))

	rec.ImageCount, err = doc.PageImageCount(page)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("page image census failed")
	}

	rec.FormalRotation, err = doc.PageRotation(page)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("page rotation read failed")
	}

	img, err := doc.RenderPage(page, a.dpi)
	if err != nil {
		log.Warn().Err(err).Int("page", page).Msg("page render failed")
		rec.Orientation = Orientation{Kind: OrientUndetermined}
		return rec
	}

	coverage := contentCoverage(img)
	rec.Scanned = IsScanned(rec.ImageCount, rec.CharCount, coverage)

	if rec.Scanned {
		rec.Orientation = a.scannedOrientation(img, rec.ImageCount)
	} else {
		spans, err := doc.PageSpans(page)
		if err != nil {
			log.Warn().Err(err).Int("page", page).Msg("page span extraction failed")
			rec.Orientation = Orientation{Kind: OrientUndetermined}
			return rec
		}
		rec.Orientation = ClassifySpans(spans)
	}
	return rec
}

// IsScanned decides whether a page is a scan: it must carry at least one
// image, little embedded text and mostly raster coverage.
func IsScanned(imageCount, charCount int, coverage float64) bool {
	if imageCount == 0 {
		return false
	}
	if charCount >= ScannedMaxChars {
		return false
	}
	return coverage > ScannedCoverageRatio
}

// ClassifySpans derives the digital-text orientation from span geometry.
func ClassifySpans(spans []pdfdoc.Span) Orientation {
	if len(spans) == 0 {
		return Orientation{Kind: OrientNoText}
	}

	vertical, horizontal := 0, 0
	for _, s := range spans {
		switch {
		case s.Height > SpanAspectRatio*s.Width:
			vertical++
		case s.Width > SpanAspectRatio*s.Height:
			horizontal++
		}
	}

	classified := vertical + horizontal
	if classified == 0 {
		return Orientation{Kind: OrientNormal}
	}
	if float64(vertical)/float64(classified) > VerticalSpanRatio {
		return Orientation{Kind: OrientRotated}
	}
	return Orientation{Kind: OrientNormal}
}
