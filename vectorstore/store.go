// Package vectorstore persists chunks with their embeddings and answers
// nearest-neighbor queries by distance.
package vectorstore

import (
	"context"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
)

// SearchResult pairs a stored chunk with its raw distance to the query
// vector. Smaller distance means more similar.
type SearchResult struct {
	Chunk    document.Chunk
	Distance float64
}

// Filter narrows a search to a subset of the index.
type Filter struct {
	DocumentID string
}

// Store is the vector index collaborator contract. Implementations embed
// query and chunk text internally, so callers only ever deal in text.
type Store interface {
	Add(ctx context.Context, chunks []document.Chunk) error
	Search(ctx context.Context, query string, k int, filter *Filter) ([]SearchResult, error)
	GetByIDs(ctx context.Context, ids []string) ([]document.Chunk, error)
	DeleteByDocumentID(ctx context.Context, documentID string) (int64, error)
	ListDocuments(ctx context.Context) ([]document.Info, error)
	Count(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) error
}
