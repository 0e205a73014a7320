// Package ingestion orchestrates loading, chunking, and persisting
// documents into the vector index and the graph mirror.
package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/graph"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/vectorstore"
)

var supportedExtensions = []string{".pdf", ".txt", ".md"}

type Service struct {
	processor *document.Processor
	store     vectorstore.Store
	graph     *graph.Store
	logger    *log.Logger
}

// NewService wires the ingest pipeline. graphStore may be nil when no
// primary backend is configured; the vector index is then the only target.
func NewService(processor *document.Processor, store vectorstore.Store, graphStore *graph.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}

	return &Service{
		processor: processor,
		store:     store,
		graph:     graphStore,
		logger:    logger,
	}
}

// IngestFile processes one document end to end. Validation failures happen
// before any write; after the vector store accepts the chunks, the graph
// mirror is synced.
func (s *Service) IngestFile(ctx context.Context, path string) (int, error) {
	chunks, err := s.processor.Process(path)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		s.logger.Printf("skip empty document %s", path)
		return 0, nil
	}

	if err := s.store.Add(ctx, chunks); err != nil {
		return 0, fmt.Errorf("store chunks: %w", err)
	}

	if s.graph != nil {
		meta := chunks[0].Metadata
		if err := s.graph.SyncDocument(ctx, meta.DocumentID, meta.SourceFile, chunks); err != nil {
			return 0, fmt.Errorf("sync graph: %w", err)
		}
	}

	s.logger.Printf("ingested %s (%d chunks)", path, len(chunks))
	return len(chunks), nil
}

// IngestDirectory walks dir for supported documents, logging and continuing
// past per-file failures.
func (s *Service) IngestDirectory(ctx context.Context, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("data directory: %w", err)
	}

	entries := make([]string, 0)
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		for _, supported := range supportedExtensions {
			if ext == supported {
				entries = append(entries, path)
				break
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk data directory: %w", err)
	}

	if len(entries) == 0 {
		s.logger.Printf("no supported documents found in %s", dir)
		return nil
	}

	for _, path := range entries {
		if _, err := s.IngestFile(ctx, path); err != nil {
			s.logger.Printf("ingest failed for %s: %v", path, err)
		}
	}

	return nil
}

// DeleteDocument removes a document's chunks from both stores.
func (s *Service) DeleteDocument(ctx context.Context, documentID string) (int64, error) {
	deleted, err := s.store.DeleteByDocumentID(ctx, documentID)
	if err != nil {
		return 0, err
	}

	if s.graph != nil {
		if err := s.graph.DeleteDocument(ctx, documentID); err != nil {
			return deleted, fmt.Errorf("delete document graph: %w", err)
		}
	}

	return deleted, nil
}

// Clear wipes the whole collection from both stores.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}

	if s.graph != nil {
		if err := s.graph.Clear(ctx); err != nil {
			return fmt.Errorf("clear graph: %w", err)
		}
	}

	return nil
}
