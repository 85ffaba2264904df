package filetype

import (
	"strings"
	"testing"
)

func TestDetectPDF(t *testing.T) {
	t.Parallel()

	d := New()
	info, err := d.Detect("factura.pdf", []byte("%PDF-1.7\n%âãÏÓ\n"))
	if err != nil {
		t.Fatalf("Detect returned error: %v", err)
	}
	if info.Kind != KindPDF {
		t.Fatalf("expected KindPDF, got %v", info.Kind)
	}
}

func TestDetectPDFBadHeader(t *testing.T) {
	t.Parallel()

	d := New()
	if _, err := d.Detect("factura.pdf", []byte("not a pdf at all")); err == nil {
		t.Fatal("expected error for bad PDF header")
	}
}

func TestDetectSpreadsheet(t *testing.T) {
	t.Parallel()

	d := New()

	// xlsx is a ZIP container
	xlsx := append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 64)...)
	info, err := d.Detect("planilla.xlsx", xlsx)
	if err != nil {
		t.Fatalf("xlsx detect error: %v", err)
	}
	if info.Kind != KindSpreadsheet {
		t.Fatalf("expected KindSpreadsheet, got %v", info.Kind)
	}

	// legacy xls is OLE compound
	xls := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
	info, err = d.Detect("planilla.xls", xls)
	if err != nil {
		t.Fatalf("xls detect error: %v", err)
	}
	if info.Kind != KindSpreadsheet {
		t.Fatalf("expected KindSpreadsheet, got %v", info.Kind)
	}

	// xlsx bytes that are not a ZIP must be rejected
	if _, err := d.Detect("planilla.xlsx", []byte("plain text")); err == nil {
		t.Fatal("expected error for xlsx without ZIP magic")
	}
}

func TestDetectImage(t *testing.T) {
	t.Parallel()

	d := New()
	png := append([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, make([]byte, 32)...)
	info, err := d.Detect("foto.png", png)
	if err != nil {
		t.Fatalf("png detect error: %v", err)
	}
	if info.Kind != KindImage {
		t.Fatalf("expected KindImage, got %v", info.Kind)
	}

	if _, err := d.Detect("foto.png", []byte("definitely text")); err == nil {
		t.Fatal("expected error for png extension over text content")
	}
}

func TestDetectUnsupported(t *testing.T) {
	t.Parallel()

	d := New()
	info, err := d.Detect("nota.docx", []byte{0x50, 0x4B, 0x03, 0x04})
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if info == nil || info.Kind != KindUnsupported {
		t.Fatal("expected KindUnsupported info alongside the error")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestCheckSize(t *testing.T) {
	t.Parallel()

	d := New()
	if err := d.CheckSize(make([]byte, 1024), 1); err != nil {
		t.Fatalf("1KB under 1MB limit should pass: %v", err)
	}
	if err := d.CheckSize(make([]byte, 2<<20), 1); err == nil {
		t.Fatal("2MB over 1MB limit should fail")
	}
	if err := d.CheckSize(make([]byte, 2<<20), 0); err != nil {
		t.Fatalf("zero limit disables the check: %v", err)
	}
}
