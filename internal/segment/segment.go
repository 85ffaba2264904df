package segment

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/classify"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
)

// Segment is one contiguous run of pages sharing a document type.
type Segment struct {
	DocType   string `json:"tipo"`
	FirstPage int    `json:"pagina_inicio"`
	LastPage  int    `json:"pagina_fin"`
	Name      string `json:"nombre"`
	Bytes     []byte `json:"-"`
}

// PageCount returns how many pages the segment spans.
func (s Segment) PageCount() int {
	return s.LastPage - s.FirstPage + 1
}

// Plan partitions the per-page types into contiguous segments. A new
// segment starts only when a page carries a recognized type different
// from the current one; unclassified pages always fold into the segment
// in progress. When no page is recognized at all the whole document
// becomes a single unclassified segment.
func Plan(pageTypes []string) []Segment {
	if len(pageTypes) == 0 {
		return nil
	}

	var segments []Segment
	current := -1
	for i, docType := range pageTypes {
		page := i + 1
		if docType == classify.DefaultType {
			if current >= 0 {
				segments[current].LastPage = page
			}
			continue
		}
		if current >= 0 && segments[current].DocType == docType {
			segments[current].LastPage = page
			continue
		}
		segments = append(segments, Segment{DocType: docType, FirstPage: page, LastPage: page})
		current = len(segments) - 1
	}

	if len(segments) == 0 {
		return []Segment{{
			DocType:   classify.DefaultType,
			FirstPage: 1,
			LastPage:  len(pageTypes),
		}}
	}

	// Leading unclassified pages belong to the first recognized segment.
	segments[0].FirstPage = 1
	return segments
}

// Build plans the segments and renders each as a standalone PDF cut from
// the source document. baseName is the upload filename without extension
// and feeds the output naming scheme {base}_{tipo}_{n}.pdf.
func Build(data []byte, pageTypes []string, baseName string) ([]Segment, error) {
	segments := Plan(pageTypes)

	for i := range segments {
		segments[i].Name = fmt.Sprintf("%s_%s_%d.pdf", baseName, segments[i].DocType, i+1)

		part, err := pdfdoc.ExtractPages(data, segments[i].FirstPage, segments[i].LastPage)
		if err != nil {
			return nil, fmt.Errorf("extracting pages %d-%d: %w", segments[i].FirstPage, segments[i].LastPage, err)
		}
		segments[i].Bytes = part
		metrics.IncSegment(segments[i].DocType)
	}

	log.Debug().Int("segments", len(segments)).Str("base", baseName).Msg("document segmented")
	return segments, nil
}
