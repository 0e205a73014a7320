// Package document loads source files and splits them into chunks, the
// atomic unit of storage and retrieval.
package document

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"time"
)

// Metadata travels with every chunk into the vector index and back out with
// search results.
type Metadata struct {
	DocumentID string
	ChunkIndex int
	SourceFile string
	ChunkSize  int
	CreatedAt  time.Time
}

// Chunk is immutable once stored; it is deleted either per document or when
// the whole collection is cleared.
type Chunk struct {
	ID       string
	Text     string
	Metadata Metadata
}

// Info describes one distinct document found in the index.
type Info struct {
	DocumentID string
	SourceFile string
	CreatedAt  time.Time
}

// GenerateDocumentID derives a stable id from the resolved absolute source
// path, so re-processing the same file always maps to the same document.
func GenerateDocumentID(sourceFile string) string {
	resolved, err := filepath.Abs(sourceFile)
	if err != nil {
		resolved = sourceFile
	}
	sum := sha256.Sum256([]byte(resolved))
	return "doc_" + hex.EncodeToString(sum[:])[:12]
}

// GenerateChunkID formats the deterministic per-document chunk id.
func GenerateChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}
