package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// RotatePages applies per-page relative rotations (degrees, clockwise) and
// returns the re-serialized document. Pages are 1-based; entries with a
// zero rotation are ignored.
func RotatePages(data []byte, rotations map[int]int) ([]byte, error) {
	// Group pages by rotation value, one rewrite pass per distinct value.
	byDegrees := map[int][]int{}
	for page, deg := range rotations {
		deg = ((deg % 360) + 360) % 360
		if deg == 0 {
			continue
		}
		byDegrees[deg] = append(byDegrees[deg], page)
	}
	if len(byDegrees) == 0 {
		return data, nil
	}

	degrees := make([]int, 0, len(byDegrees))
	for deg := range byDegrees {
		degrees = append(degrees, deg)
	}
	sort.Ints(degrees)

	out := data
	for _, deg := range degrees {
		pages := byDegrees[deg]
		sort.Ints(pages)
		selected := make([]string, len(pages))
		for i, p := range pages {
			selected[i] = fmt.Sprintf("%d", p)
		}

		var buf bytes.Buffer
		if err := api.Rotate(bytes.NewReader(out), &buf, deg, selected, newConfiguration()); err != nil {
			return nil, fmt.Errorf("rotate pages %v by %d: %w", pages, deg, err)
		}
		out = buf.Bytes()
	}
	return out, nil
}

// CropHeader crops every page to its top fraction (0 < fraction <= 1) and
// returns the cropped document. The original bytes are left untouched.
func CropHeader(data []byte, fraction float64) ([]byte, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, fmt.Errorf("invalid header fraction %.2f", fraction)
	}

	boxDef := fmt.Sprintf("[0 %.4f 1 1] rel", 1-fraction)
	box, err := model.ParseBox(boxDef, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse crop box: %w", err)
	}

	var buf bytes.Buffer
	if err := api.Crop(bytes.NewReader(data), &buf, nil, box, newConfiguration()); err != nil {
		return nil, fmt.Errorf("crop header: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractPages renders the inclusive page range [from, to] as an
// independent document.
func ExtractPages(data []byte, from, to int) ([]byte, error) {
	if from < 1 || to < from {
		return nil, fmt.Errorf("invalid page range %d-%d", from, to)
	}

	var buf bytes.Buffer
	selected := []string{fmt.Sprintf("%d-%d", from, to)}
	if err := api.Trim(bytes.NewReader(data), &buf, selected, newConfiguration()); err != nil {
		return nil, fmt.Errorf("extract pages %d-%d: %w", from, to, err)
	}
	return buf.Bytes(), nil
}

// FromImage builds a single-page A4 document with the image centered.
func FromImage(img []byte) ([]byte, error) {
	imp, err := api.Import("form:A4, pos:c", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse import config: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(img)}, imp, newConfiguration()); err != nil {
		return nil, fmt.Errorf("import image: %w", err)
	}
	return buf.Bytes(), nil
}
