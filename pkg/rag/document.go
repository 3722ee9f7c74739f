package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ikikae/inaka/pkg/model"
)

// Document is one searchable unit derived from a spot record. Content is the
// flattened text that gets embedded; Metadata carries enough to map a search
// hit back to its source record.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Vector   []float32         `json:"vector,omitempty"`
}

// BuildDocuments flattens spot records into embeddable documents. It is pure
// and deterministic: the same records always produce the same documents.
// Missing optional fields degrade to empty values rather than failing.
func BuildDocuments(spots []*model.Spot) []Document {
	docs := make([]Document, 0, len(spots))
	for _, spot := range spots {
		content := fmt.Sprintf("Spot Name: %s. Category: %s. Description: %s. Highlights: %s",
			spot.Name, spot.Category, spot.ShortDescription, strings.Join(spot.Highlights, ", "))

		docs = append(docs, Document{
			Content: content,
			Metadata: map[string]string{
				"id":   string(spot.ID),
				"name": spot.Name,
			},
		})
	}
	return docs
}

// Fingerprint hashes the document set so a persisted index can be detected
// as stale when the underlying records change.
func Fingerprint(docs []Document) string {
	h := sha256.New()
	for _, doc := range docs {
		h.Write([]byte(doc.Metadata["id"]))
		h.Write([]byte{0})
		h.Write([]byte(doc.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
