package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
)

// FileHash returns the hex SHA-256 of the file contents. It identifies a
// standalone upload across repeated submissions.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DocumentSetHash derives a change-detection hash for a dispatch from
// the identity of its documents, not their contents: each document
// contributes "name:id", the entries are sorted and joined with "|".
// Adding, removing or renaming a document changes the hash; re-uploading
// identical metadata does not.
func DocumentSetHash(docs []sgd.Document) string {
	entries := make([]string, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fmt.Sprintf("%s:%s", doc.Name, doc.ExternalID))
	}
	sort.Strings(entries)

	sum := sha256.Sum256([]byte(strings.Join(entries, "|")))
	return hex.EncodeToString(sum[:])
}
