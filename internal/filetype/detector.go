package filetype

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Kind is the closed set of document kinds accepted at intake.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindSpreadsheet
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindImage:
		return "image"
	default:
		return "unsupported"
	}
}

var spreadsheetExts = map[string]bool{
	".xls": true, ".xlsx": true, ".xlsm": true, ".xlsb": true, ".xltx": true, ".xltm": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".tiff": true, ".tif": true, ".webp": true,
}

// zipExts are the spreadsheet extensions stored as ZIP containers.
var zipExts = map[string]bool{
	".xlsx": true, ".xlsm": true, ".xltx": true, ".xltm": true,
}

var (
	pdfMagic = []byte("%PDF")
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Info describes a detected document.
type Info struct {
	Kind      Kind
	MIMEType  string
	Extension string
}

// Detector resolves the document kind once at intake, from the declared
// filename and the actual magic bytes.
type Detector struct{}

// New creates a new file type detector
func New() *Detector {
	return &Detector{}
}

// Detect resolves the kind of the given payload. The filename extension
// selects the candidate kind; magic bytes must agree, since container
// formats (ZIP, OLE) are shared across many extensions.
func (d *Detector) Detect(filename string, data []byte) (*Info, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mtype := mimetype.Detect(data)
	mimeType := mtype.String()

	log.Debug().Str("file", filename).Str("mime", mimeType).Str("ext", ext).Msg("detected file type")

	info := &Info{MIMEType: mimeType, Extension: ext}

	switch {
	case ext == ".pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return nil, fmt.Errorf("file %s does not start with a PDF header", filename)
		}
		info.Kind = KindPDF

	case spreadsheetExts[ext]:
		if zipExts[ext] {
			if !bytes.HasPrefix(data, zipMagic) {
				return nil, fmt.Errorf("spreadsheet %s is not a valid ZIP container", filename)
			}
		} else {
			if !bytes.HasPrefix(data, oleMagic) {
				return nil, fmt.Errorf("spreadsheet %s is not a valid OLE container", filename)
			}
		}
		info.Kind = KindSpreadsheet

	case imageExts[ext]:
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("file %s has an image extension but content is %s", filename, mimeType)
		}
		info.Kind = KindImage

	default:
		info.Kind = KindUnsupported
		return info, fmt.Errorf("unsupported file type: %s (%s)", ext, mimeType)
	}

	return info, nil
}

// CheckSize validates the payload against the configured size cap.
func (d *Detector) CheckSize(data []byte, maxSizeMB int) error {
	if maxSizeMB <= 0 {
		return nil
	}
	limit := int64(maxSizeMB) << 20
	if int64(len(data)) > limit {
		return fmt.Errorf("file size %.1fMB exceeds limit of %dMB", float64(len(data))/(1<<20), maxSizeMB)
	}
	return nil
}
