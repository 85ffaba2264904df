package cache

import (
	"testing"

	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
)

func TestFileHash(t *testing.T) {
	t.Parallel()

	a := FileHash([]byte("%PDF-1.4 hello"))
	b := FileHash([]byte("%PDF-1.4 hello"))
	c := FileHash([]byte("%PDF-1.4 other"))

	if len(a) != 64 {
		t.Fatalf("hash length: %d", len(a))
	}
	if a != b {
		t.Fatal("identical content must hash identically")
	}
	if a == c {
		t.Fatal("different content must hash differently")
	}
}

func TestDocumentSetHashOrderIndependent(t *testing.T) {
	t.Parallel()

	docs := []sgd.Document{
		{Name: "factura.pdf", ExternalID: "10"},
		{Name: "bl.pdf", ExternalID: "11"},
	}
	reversed := []sgd.Document{docs[1], docs[0]}

	if DocumentSetHash(docs) != DocumentSetHash(reversed) {
		t.Fatal("hash must not depend on document order")
	}
}

func TestDocumentSetHashDetectsChanges(t *testing.T) {
	t.Parallel()

	base := []sgd.Document{
		{Name: "factura.pdf", ExternalID: "10"},
	}
	renamed := []sgd.Document{
		{Name: "factura_v2.pdf", ExternalID: "10"},
	}
	added := []sgd.Document{
		{Name: "factura.pdf", ExternalID: "10"},
		{Name: "bl.pdf", ExternalID: "11"},
	}

	h := DocumentSetHash(base)
	if h == DocumentSetHash(renamed) {
		t.Fatal("renaming a document must change the hash")
	}
	if h == DocumentSetHash(added) {
		t.Fatal("adding a document must change the hash")
	}

	// Contents never enter the hash; only name and id do.
	sameIdentity := []sgd.Document{
		{Name: "factura.pdf", ExternalID: "10", Data: "QUJD"},
	}
	if h != DocumentSetHash(sameIdentity) {
		t.Fatal("payload changes with identical identity must not change the hash")
	}
}

func TestDocumentSetHashEmpty(t *testing.T) {
	t.Parallel()

	if DocumentSetHash(nil) != DocumentSetHash([]sgd.Document{}) {
		t.Fatal("nil and empty sets must hash identically")
	}
}
