package classify

import "testing"

func TestClassifyBasic(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"invoice header", "COMMERCIAL INVOICE No. 12345", "FACTURA_COMERCIAL"},
		{"lowercase input", "commercial invoice no. 12345", "FACTURA_COMERCIAL"},
		{"spanish transport", "CONOCIMIENTO DE EMBARQUE MAERSK", "DOCUMENTO_TRANSPORTE"},
		{"packing list", "Shipment ref 9\nPACKING LIST\nitems follow", "LISTA_EMBALAJE"},
		{"no match", "random page with nothing relevant", DefaultType},
		{"empty page", "", DefaultType},
		{"accented pattern", "documento: CERTIFICAT DE SANTÉ", "CERTIFICADO_SANITARIO"},
	}

	for _, tc := range cases {
		if got := Classify(tc.text); got != tc.want {
			t.Errorf("%s: Classify=%q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClassifyWholeWordsOnly(t *testing.T) {
	t.Parallel()

	if got := Classify("BILLOFLADINGX"); got != DefaultType {
		t.Fatalf("embedded text must not match: got %q", got)
	}
	if got := Classify("PREFACTURA"); got != DefaultType {
		t.Fatalf("suffix match must not count: got %q", got)
	}
	if got := Classify("FACTURAS"); got != DefaultType {
		t.Fatalf("plural must not match the singular pattern: got %q", got)
	}
	if got := Classify("X BILL OF LADING X"); got != "DOCUMENTO_TRANSPORTE" {
		t.Fatalf("delimited match must count: got %q", got)
	}
}

func TestClassifyEarliestMatchWins(t *testing.T) {
	t.Parallel()

	// The origin certificate appears before the invoice marker, so it
	// wins even though the invoice type comes first in the table.
	text := "anexo: CERTIFICADO DE ORIGEN emitido junto a la FACTURA original"
	if got := Classify(text); got != "CERTIFICADO_ORIGEN" {
		t.Fatalf("earliest match must win: got %q", got)
	}

	// Reversed order flips the outcome.
	text = "FACTURA adjunta al CERTIFICADO DE ORIGEN"
	if got := Classify(text); got != "FACTURA_COMERCIAL" {
		t.Fatalf("earliest match must win: got %q", got)
	}
}

func TestClassifyTableOrderBreaksTies(t *testing.T) {
	t.Parallel()

	// "CERTIFICADO SANITARIO" and "CERTIFICADO SANITARIO ANIMAL" both
	// match at offset zero; the sanitary certificate is listed earlier.
	if got := Classify("CERTIFICADO SANITARIO ANIMAL"); got != "CERTIFICADO_SANITARIO" {
		t.Fatalf("tie at offset 0 must go to the earlier table entry: got %q", got)
	}
}

func TestClassifyDeterministic(t *testing.T) {
	t.Parallel()

	text := "PACKING LIST and COMMERCIAL INVOICE on one page"
	first := Classify(text)
	for i := 0; i < 50; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("classification not deterministic: %q vs %q", first, got)
		}
	}
}

func TestClassifyPages(t *testing.T) {
	t.Parallel()

	pages := []string{
		"COMMERCIAL INVOICE",
		"continuation page",
		"PACKING LIST",
	}
	got := ClassifyPages(pages)
	want := []string{"FACTURA_COMERCIAL", DefaultType, "LISTA_EMBALAJE"}
	if len(got) != len(want) {
		t.Fatalf("length mismatch: %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("page %d: got %q, want %q", i+1, got[i], want[i])
		}
	}
}

func TestTypesOrderStable(t *testing.T) {
	t.Parallel()

	types := Types()
	if len(types) != 14 {
		t.Fatalf("expected 14 document types, got %d", len(types))
	}
	if types[0] != "FACTURA_COMERCIAL" {
		t.Fatalf("first type must be FACTURA_COMERCIAL, got %q", types[0])
	}
	if types[len(types)-1] != "AVISO_RETENCION" {
		t.Fatalf("last type must be AVISO_RETENCION, got %q", types[len(types)-1])
	}
}
