package converter

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
)

// ImageToPDF wraps an image upload into a single-page A4 PDF with the
// image centered.
func ImageToPDF(data []byte, filename string) ([]byte, error) {
	if err := ValidateImage(data, filename); err != nil {
		return nil, err
	}

	pdf, err := pdfdoc.FromImage(data)
	if err != nil {
		return nil, fmt.Errorf("image %s could not be converted: %w", filename, err)
	}

	log.Debug().Str("file", filename).Int("pdf_bytes", len(pdf)).Msg("image converted")
	return pdf, nil
}

// ValidateImage checks the upload decodes as an image. Formats outside
// the standard decoders (tiff, webp, bmp) only get a header sniff here
// and are fully validated by the PDF importer.
func ValidateImage(data []byte, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("image %s is empty", filename)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
		if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
			return fmt.Errorf("image %s is not decodable: %w", filename, err)
		}
	}
	return nil
}

// PDFName rewrites an upload filename to its post-conversion name.
func PDFName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext) + ".pdf"
}
