package quality

import (
	"image"
	"image/color"
	"testing"

	"github.com/PabloTorresOyarzun/sgdparser/internal/pdfdoc"
)

func TestIsScanned(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		imageCount int
		charCount  int
		coverage   float64
		want       bool
	}{
		{"no images", 0, 10, 0.9, false},
		{"long text", 1, 500, 0.9, false},
		{"low coverage", 1, 10, 0.3, false},
		{"scan", 1, 10, 0.85, true},
		{"coverage at threshold", 1, 10, 0.7, false},
		{"chars at threshold", 1, 200, 0.9, false},
		{"chars under threshold", 1, 199, 0.9, true},
	}

	for _, tc := range cases {
		if got := IsScanned(tc.imageCount, tc.charCount, tc.coverage); got != tc.want {
			t.Errorf("%s: IsScanned=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestClassifySpans(t *testing.T) {
	t.Parallel()

	hSpan := pdfdoc.Span{Text: "FACTURA", Width: 60, Height: 10}
	vSpan := pdfdoc.Span{Text: "TOTAL", Width: 8, Height: 50}

	if got := ClassifySpans(nil); got.Kind != OrientNoText {
		t.Fatalf("no spans: got %v, want OrientNoText", got.Kind)
	}

	if got := ClassifySpans([]pdfdoc.Span{hSpan, hSpan, hSpan}); got.Kind != OrientNormal {
		t.Fatalf("horizontal page: got %v, want OrientNormal", got.Kind)
	}

	if got := ClassifySpans([]pdfdoc.Span{vSpan, vSpan, vSpan, hSpan}); got.Kind != OrientRotated {
		t.Fatalf("mostly vertical page: got %v, want OrientRotated", got.Kind)
	}

	// 60% vertical is not above the 0.6 threshold
	spans := []pdfdoc.Span{vSpan, vSpan, vSpan, hSpan, hSpan}
	if got := ClassifySpans(spans); got.Kind != OrientNormal {
		t.Fatalf("60%% vertical: got %v, want OrientNormal", got.Kind)
	}

	// Square spans classify neither way
	square := pdfdoc.Span{Text: "X", Width: 10, Height: 10}
	if got := ClassifySpans([]pdfdoc.Span{square, square}); got.Kind != OrientNormal {
		t.Fatalf("unclassifiable spans: got %v, want OrientNormal", got.Kind)
	}
}

func TestBucketAngle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		angle float64
		want  OrientationKind
	}{
		{0.0, OrientNormal},
		{0.49, OrientNormal},
		{-0.3, OrientNormal},
		{0.5, OrientSlightTilt},
		{1.9, OrientSlightTilt},
		{-1.5, OrientSlightTilt},
		{2.0, OrientModerateTilt},
		{9.9, OrientModerateTilt},
		{10.0, OrientSevereTilt},
		{30.0, OrientSevereTilt},
	}

	for _, tc := range cases {
		if got := bucketAngle(tc.angle); got.Kind != tc.want {
			t.Errorf("bucketAngle(%v)=%v, want %v", tc.angle, got.Kind, tc.want)
		}
	}
}

func TestOrientationString(t *testing.T) {
	t.Parallel()

	if s := (Orientation{Kind: OrientNormal}).String(); s != "NORMAL" {
		t.Fatalf("normal: %q", s)
	}
	if s := (Orientation{Kind: OrientRotated}).String(); s != "ROTADA" {
		t.Fatalf("rotated: %q", s)
	}
	if s := (Orientation{Kind: OrientModerateTilt, Angle: 5.25}).String(); s != "INCLINADA (5.25°)" {
		t.Fatalf("moderate tilt: %q", s)
	}
	if s := (Orientation{Kind: OrientNoText}).String(); s != "SIN TEXTO" {
		t.Fatalf("no text: %q", s)
	}
}

func TestRotationPlan(t *testing.T) {
	t.Parallel()

	records := []PageRecord{
		{Page: 1, FormalRotation: 90},
		{Page: 2, FormalRotation: 0, Scanned: false, Orientation: Orientation{Kind: OrientRotated}},
		{Page: 3, FormalRotation: 0, Scanned: true, Orientation: Orientation{Kind: OrientModerateTilt, Angle: 5}},
		{Page: 4, FormalRotation: 0, Orientation: Orientation{Kind: OrientNormal}},
		{Page: 5, FormalRotation: 180},
	}

	plan := RotationPlan(records, 270)

	if len(plan) != 3 {
		t.Fatalf("expected 3 corrections, got %d: %v", len(plan), plan)
	}
	if plan[1] != 270 {
		t.Fatalf("page 1 with formal 90 must rotate back by 270, got %d", plan[1])
	}
	if plan[2] != 270 {
		t.Fatalf("page 2 vertical text must rotate by 270, got %d", plan[2])
	}
	if plan[5] != 180 {
		t.Fatalf("page 5 with formal 180 must rotate back by 180, got %d", plan[5])
	}
	if _, ok := plan[3]; ok {
		t.Fatal("scanned tilted page must never be auto-corrected")
	}
}

func TestContentCoverage(t *testing.T) {
	t.Parallel()

	// Fully white page: no coverage.
	white := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			white.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	if c := contentCoverage(white); c != 0 {
		t.Fatalf("white page coverage: got %v, want 0", c)
	}

	// Large dark block covering 80% of the width and height.
	page := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			page.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := 10; y < 90; y++ {
		for x := 10; x < 90; x++ {
			page.SetGray(x, y, color.Gray{Y: 0})
		}
	}
	c := contentCoverage(page)
	if c < 0.6 || c > 0.7 {
		t.Fatalf("block coverage: got %v, want about 0.64", c)
	}
}

func TestScannedOrientationStraightLines(t *testing.T) {
	t.Parallel()

	// A page with long horizontal dark bars produces near-zero skew.
	page := image.NewGray(image.Rect(0, 0, 400, 400))
	for y := 0; y < 400; y++ {
		for x := 0; x < 400; x++ {
			page.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for _, row := range []int{100, 200, 300} {
		for y := row; y < row+4; y++ {
			for x := 20; x < 380; x++ {
				page.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}

	a := NewAnalyzer()
	o := a.scannedOrientation(page, 1)
	if o.Kind != OrientNormal {
		t.Fatalf("straight bars: got %v (%s), want OrientNormal", o.Kind, o)
	}
}

func TestScannedOrientationBlankPage(t *testing.T) {
	t.Parallel()

	blank := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			blank.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	a := NewAnalyzer()
	if o := a.scannedOrientation(blank, 1); o.Kind != OrientNoLines {
		t.Fatalf("blank page: got %v, want OrientNoLines", o.Kind)
	}
	if o := a.scannedOrientation(blank, 0); o.Kind != OrientNoImage {
		t.Fatalf("no images: got %v, want OrientNoImage", o.Kind)
	}
}
