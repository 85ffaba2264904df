package pdfdoc

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Document is an owned, single-writer handle over one PDF. It is created
// from raw bytes, read during quality analysis and never shared across
// goroutines. Mutation (rotation rewrite, cropping, page extraction)
// produces new bytes; reopen to continue working on the result.
type Document struct {
	data   []byte
	fz     *fitz.Document
	reader *pdf.Reader
}

// Open validates the payload and opens both backing readers.
func Open(data []byte) (*Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("missing PDF header")
	}

	fz, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		fz.Close()
		return nil, fmt.Errorf("parse PDF structure: %w", err)
	}

	return &Document{data: data, fz: fz, reader: reader}, nil
}

// Close releases the rendering backend.
func (d *Document) Close() error {
	return d.fz.Close()
}

// Bytes returns the underlying serialized document.
func (d *Document) Bytes() []byte { return d.data }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.fz.NumPage() }

// PageText extracts the embedded text of a page (1-based).
func (d *Document) PageText(page int) (string, error) {
	if page < 1 || page > d.fz.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, d.fz.NumPage())
	}
	return d.fz.Text(page - 1)
}

// RenderPage rasterizes a page (1-based) at the given DPI.
func (d *Document) RenderPage(page int, dpi float64) (image.Image, error) {
	if page < 1 || page > d.fz.NumPage() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, d.fz.NumPage())
	}
	return d.fz.ImageDPI(page-1, dpi)
}

// PageRotation reads the formal /Rotate flag of a page (1-based),
// normalized into {0, 90, 180, 270}.
func (d *Document) PageRotation(page int) (rot int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read rotation of page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return 0, fmt.Errorf("page %d not found", page)
	}
	v := p.V.Key("Rotate")
	if v.IsNull() {
		return 0, nil
	}
	rot = int(v.Int64()) % 360
	if rot < 0 {
		rot += 360
	}
	return rot, nil
}

// PageImageCount counts the image XObjects referenced by a page (1-based).
func (d *Document) PageImageCount(page int) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read images of page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return 0, fmt.Errorf("page %d not found", page)
	}
	xobj := p.V.Key("Resources").Key("XObject")
	if xobj.IsNull() {
		return 0, nil
	}
	for _, name := range xobj.Keys() {
		if xobj.Key(name).Key("Subtype").Name() == "Image" {
			n++
		}
	}
	return n, nil
}

// PageSize returns the media box width and height of a page in points.
func (d *Document) PageSize(page int) (w, h float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read size of page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return 0, 0, fmt.Errorf("page %d not found", page)
	}
	box := p.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return 0, 0, fmt.Errorf("page %d has no media box", page)
	}
	w = box.Index(2).Float64() - box.Index(0).Float64()
	h = box.Index(3).Float64() - box.Index(1).Float64()
	return w, h, nil
}

// PageSpans extracts positioned text spans from a page (1-based).
func (d *Document) PageSpans(page int) (spans []Span, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("read spans of page %d: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d not found", page)
	}
	content := p.Content()
	return buildSpans(content.Text), nil
}
