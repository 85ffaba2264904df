package pdfdoc

import (
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// Y tolerance for treating two characters as horizontally adjacent.
	rowTolerance = 3.0

	// Fraction of font size allowed as gap between characters of one word.
	wordSpaceMultiplier = 0.3
)

// Span is a run of adjacent characters with its bounding box in page points.
type Span struct {
	Text          string
	X, Y          float64
	Width, Height float64
}

// buildSpans merges raw characters into spans. Characters continue the
// current span when they advance horizontally within the row tolerance, or
// stack vertically at roughly the same X (rotated text renders that way).
func buildSpans(chars []pdf.Text) []Span {
	var spans []Span
	var cur *spanBuilder

	for _, t := range chars {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if cur == nil {
			cur = newSpanBuilder(t)
			continue
		}
		if cur.accepts(t) {
			cur.add(t)
			continue
		}
		spans = append(spans, cur.build())
		cur = newSpanBuilder(t)
	}
	if cur != nil {
		spans = append(spans, cur.build())
	}
	return spans
}

type spanBuilder struct {
	text                   strings.Builder
	minX, minY, maxX, maxY float64
	last                   pdf.Text
}

func newSpanBuilder(t pdf.Text) *spanBuilder {
	b := &spanBuilder{
		minX: t.X,
		minY: t.Y,
		maxX: t.X + t.W,
		maxY: t.Y + fontHeight(t),
		last: t,
	}
	b.text.WriteString(t.S)
	return b
}

func (b *spanBuilder) accepts(t pdf.Text) bool {
	fs := fontHeight(t)

	// Horizontal continuation: same baseline, small forward gap.
	dy := math.Abs(t.Y - b.last.Y)
	gap := t.X - (b.last.X + b.last.W)
	if dy <= rowTolerance && gap <= wordSpaceMultiplier*fs && gap >= -b.last.W {
		return true
	}

	// Vertical continuation: same column, next character one line below
	// or above. Rotated text streams render like this.
	dx := math.Abs(t.X - b.last.X)
	if dx <= fs*0.5 && dy > rowTolerance && dy <= fs*1.5 {
		return true
	}

	return false
}

func (b *spanBuilder) add(t pdf.Text) {
	b.text.WriteString(t.S)
	b.minX = math.Min(b.minX, t.X)
	b.minY = math.Min(b.minY, t.Y)
	b.maxX = math.Max(b.maxX, t.X+t.W)
	b.maxY = math.Max(b.maxY, t.Y+fontHeight(t))
	b.last = t
}

func (b *spanBuilder) build() Span {
	return Span{
		Text:   b.text.String(),
		X:      b.minX,
		Y:      b.minY,
		Width:  b.maxX - b.minX,
		Height: b.maxY - b.minY,
	}
}

func fontHeight(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize
	}
	return 10.0
}
