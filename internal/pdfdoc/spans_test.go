package pdfdoc

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func horizontalWord(word string, x, y float64) []pdf.Text {
	chars := make([]pdf.Text, 0, len(word))
	for i, r := range word {
		chars = append(chars, pdf.Text{
			S:        string(r),
			X:        x + float64(i)*6,
			Y:        y,
			W:        6,
			FontSize: 10,
		})
	}
	return chars
}

func verticalWord(word string, x, y float64) []pdf.Text {
	chars := make([]pdf.Text, 0, len(word))
	for i, r := range word {
		chars = append(chars, pdf.Text{
			S:        string(r),
			X:        x,
			Y:        y - float64(i)*11,
			W:        6,
			FontSize: 10,
		})
	}
	return chars
}

func TestBuildSpansHorizontal(t *testing.T) {
	t.Parallel()

	spans := buildSpans(horizontalWord("FACTURA", 100, 700))
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Text != "FACTURA" {
		t.Fatalf("unexpected text: %q", s.Text)
	}
	if s.Width <= s.Height {
		t.Fatalf("horizontal span must be wider than tall: w=%v h=%v", s.Width, s.Height)
	}
}

func TestBuildSpansVertical(t *testing.T) {
	t.Parallel()

	spans := buildSpans(verticalWord("TOTAL", 50, 700))
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Height <= s.Width {
		t.Fatalf("vertical span must be taller than wide: w=%v h=%v", s.Width, s.Height)
	}
}

func TestBuildSpansSeparateWords(t *testing.T) {
	t.Parallel()

	// Two words far apart on the same row become two spans.
	chars := append(horizontalWord("FACTURA", 100, 700), horizontalWord("COMERCIAL", 300, 700)...)
	spans := buildSpans(chars)
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
}

func TestBuildSpansSkipsWhitespace(t *testing.T) {
	t.Parallel()

	chars := []pdf.Text{
		{S: " ", X: 10, Y: 10, W: 3, FontSize: 10},
		{S: "\n", X: 13, Y: 10, W: 0, FontSize: 10},
	}
	if spans := buildSpans(chars); len(spans) != 0 {
		t.Fatalf("whitespace-only input must yield no spans, got %d", len(spans))
	}
}
