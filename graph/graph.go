// Package graph mirrors documents and chunks into Neo4j and serves as the
// primary retrieval backend through a fulltext index over chunk text.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/retrieval"
)

const fulltextIndexName = "chunk_fulltext"

// Store wraps a Neo4j driver with the document/chunk graph operations.
type Store struct {
	driver neo4j.DriverWithContext
}

func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{driver: driver}
}

// EnsureIndexes creates the fulltext index the Search path depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if s.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, fmt.Sprintf(
		"CREATE FULLTEXT INDEX %s IF NOT EXISTS FOR (c:Chunk) ON EACH [c.text]",
		fulltextIndexName,
	), nil)
	if err != nil {
		return fmt.Errorf("create fulltext index: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("create fulltext index: %w", err)
	}
	return nil
}

// SyncDocument replaces the graph's view of one document with the given
// chunk set.
func (s *Store) SyncDocument(ctx context.Context, documentID, sourceFile string, chunks []document.Chunk) error {
	if s.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MERGE (d:Document {id: $id})
			SET d.source_file = $source_file,
			    d.updated_at = datetime()
		`, map[string]any{"id": documentID, "source_file": sourceFile}); err != nil {
			return nil, fmt.Errorf("upsert document node: %w", err)
		}

		if _, err := tx.Run(ctx, `
			MATCH (d:Document {id: $id})-[:HAS_CHUNK]->(c:Chunk)
			DETACH DELETE c
		`, map[string]any{"id": documentID}); err != nil {
			return nil, fmt.Errorf("clear existing chunk nodes: %w", err)
		}

		for _, chunk := range chunks {
			if _, err := tx.Run(ctx, `
				MATCH (d:Document {id: $doc_id})
				MERGE (c:Chunk {id: $chunk_id})
				SET c.index = $chunk_index,
				    c.text = $chunk_text,
				    c.size = $chunk_size
				MERGE (d)-[:HAS_CHUNK {order: $chunk_index}]->(c)
			`, map[string]any{
				"doc_id":      documentID,
				"chunk_id":    chunk.ID,
				"chunk_index": chunk.Metadata.ChunkIndex,
				"chunk_text":  chunk.Text,
				"chunk_size":  chunk.Metadata.ChunkSize,
			}); err != nil {
				return nil, fmt.Errorf("upsert chunk node: %w", err)
			}
		}

		return nil, nil
	})

	return err
}

// DeleteDocument removes a document and its chunks from the graph.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) error {
	if s.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (d:Document {id: $id})
		OPTIONAL MATCH (d)-[:HAS_CHUNK]->(c:Chunk)
		DETACH DELETE d, c
	`, map[string]any{"id": documentID})
	if err != nil {
		return fmt.Errorf("delete document graph: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("delete document graph: %w", err)
	}
	return nil
}

// Clear removes every document and chunk node.
func (s *Store) Clear(ctx context.Context) error {
	if s.driver == nil {
		return fmt.Errorf("neo4j driver is nil")
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, query := range []string{
		"MATCH (c:Chunk) DETACH DELETE c",
		"MATCH (d:Document) DETACH DELETE d",
	} {
		result, err := session.Run(ctx, query, nil)
		if err != nil {
			return fmt.Errorf("clear graph: %w", err)
		}
		if _, err := result.Consume(ctx); err != nil {
			return fmt.Errorf("clear graph: %w", err)
		}
	}
	return nil
}

// Search queries the fulltext index and converts Lucene scores into
// distances so downstream relevance scoring treats both backends alike.
// Lucene scores are unbounded and higher-is-better; 1/(1+score) inverts them
// into a bounded, lower-is-better distance.
func (s *Store) Search(ctx context.Context, query string, k int) ([]retrieval.Result, error) {
	if s.driver == nil {
		return nil, fmt.Errorf("neo4j driver is nil")
	}
	if k <= 0 {
		k = 5
	}

	sanitized := sanitizeFulltextQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, fmt.Sprintf(`
		CALL db.index.fulltext.queryNodes('%s', $query) YIELD node, score
		MATCH (d:Document)-[:HAS_CHUNK]->(node)
		RETURN node.id AS id,
		       node.index AS chunk_index,
		       node.text AS text,
		       node.size AS chunk_size,
		       d.id AS document_id,
		       d.source_file AS source_file,
		       score
		LIMIT $k
	`, fulltextIndexName), map[string]any{"query": sanitized, "k": k})
	if err != nil {
		return nil, fmt.Errorf("run fulltext query: %w", err)
	}

	results := make([]retrieval.Result, 0, k)
	for result.Next(ctx) {
		record := result.Record()
		item := retrieval.Result{}
		if id, ok := record.Get("id"); ok {
			item.Chunk.ID, _ = id.(string)
		}
		if text, ok := record.Get("text"); ok {
			item.Chunk.Text, _ = text.(string)
		}
		if docID, ok := record.Get("document_id"); ok {
			item.Chunk.Metadata.DocumentID, _ = docID.(string)
		}
		if source, ok := record.Get("source_file"); ok {
			item.Chunk.Metadata.SourceFile, _ = source.(string)
		}
		if idx, ok := record.Get("chunk_index"); ok {
			item.Chunk.Metadata.ChunkIndex = toInt(idx)
		}
		if size, ok := record.Get("chunk_size"); ok {
			item.Chunk.Metadata.ChunkSize = toInt(size)
		}
		if score, ok := record.Get("score"); ok {
			if value, isFloat := score.(float64); isFloat {
				item.Distance = 1.0 / (1.0 + value)
			}
		}
		results = append(results, item)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("fulltext result error: %w", err)
	}

	return results, nil
}

var _ retrieval.Searcher = (*Store)(nil)

// sanitizeFulltextQuery strips Lucene operator characters that would make
// the index query parser fail on free-form question text.
func sanitizeFulltextQuery(query string) string {
	replacer := strings.NewReplacer(
		"+", " ", "-", " ", "&", " ", "|", " ", "!", " ",
		"(", " ", ")", " ", "{", " ", "}", " ", "[", " ", "]", " ",
		"^", " ", "\"", " ", "~", " ", "*", " ", "?", " ",
		":", " ", "\\", " ", "/", " ",
	)
	return strings.TrimSpace(replacer.Replace(query))
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
