package vectorstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/document"
	"github.com/ayushbaunthiyal/AIAgent-Chat-With-Doc/embeddings"
)

const defaultSearchLimit = 5

// PostgresStore keeps chunks in a pgvector-backed table, ranked by L2
// distance.
type PostgresStore struct {
	pool     *pgxpool.Pool
	embedder embeddings.Embedder
}

func NewPostgresStore(pool *pgxpool.Pool, embedder embeddings.Embedder) *PostgresStore {
	return &PostgresStore{pool: pool, embedder: embedder}
}

func (s *PostgresStore) Add(ctx context.Context, chunks []document.Chunk) error {
	if s.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if s.embedder == nil {
		return fmt.Errorf("embedder is not configured")
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: have %d chunks, %d embeddings", len(chunks), len(vectors))
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for i := range chunks {
		chunk := chunks[i]
		if _, err = tx.Exec(ctx, `
			INSERT INTO rag_chunks (id, document_id, chunk_index, source_file, chunk_size, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET content = EXCLUDED.content,
			    chunk_size = EXCLUDED.chunk_size,
			    embedding = EXCLUDED.embedding,
			    created_at = EXCLUDED.created_at
		`, chunk.ID, chunk.Metadata.DocumentID, chunk.Metadata.ChunkIndex, chunk.Metadata.SourceFile,
			chunk.Metadata.ChunkSize, chunk.Text, pgvector.NewVector(vectors[i]), chunk.Metadata.CreatedAt); err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (s *PostgresStore) Search(ctx context.Context, query string, k int, filter *Filter) ([]SearchResult, error) {
	if s.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("embedder is not configured")
	}
	if k <= 0 {
		k = defaultSearchLimit
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors")
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	probes := k * 10
	if probes < 10 {
		probes = 10
	}
	if _, err := conn.Exec(ctx, fmt.Sprintf("SET ivfflat.probes = %d", probes)); err != nil {
		return nil, fmt.Errorf("set ivfflat probes: %w", err)
	}

	sql := `
		SELECT id, document_id, chunk_index, source_file, chunk_size, content, created_at,
		       (embedding <-> $1::vector) AS distance
		FROM rag_chunks
	`
	args := []any{pgvector.NewVector(vectors[0])}
	if filter != nil && filter.DocumentID != "" {
		sql += " WHERE document_id = $2"
		args = append(args, filter.DocumentID)
	}
	sql += fmt.Sprintf(" ORDER BY embedding <-> $1::vector LIMIT %d", k)

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query similar chunks: %w", err)
	}
	defer rows.Close()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var item SearchResult
		if err := rows.Scan(
			&item.Chunk.ID,
			&item.Chunk.Metadata.DocumentID,
			&item.Chunk.Metadata.ChunkIndex,
			&item.Chunk.Metadata.SourceFile,
			&item.Chunk.Metadata.ChunkSize,
			&item.Chunk.Text,
			&item.Chunk.Metadata.CreatedAt,
			&item.Distance,
		); err != nil {
			return nil, fmt.Errorf("scan similar chunk: %w", err)
		}
		results = append(results, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return results, nil
}

func (s *PostgresStore) GetByIDs(ctx context.Context, ids []string) ([]document.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, document_id, chunk_index, source_file, chunk_size, content, created_at
		FROM rag_chunks
		WHERE id = ANY($1)
		ORDER BY document_id, chunk_index
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query chunks by ids: %w", err)
	}
	defer rows.Close()

	chunks := make([]document.Chunk, 0, len(ids))
	for rows.Next() {
		var chunk document.Chunk
		if err := rows.Scan(
			&chunk.ID,
			&chunk.Metadata.DocumentID,
			&chunk.Metadata.ChunkIndex,
			&chunk.Metadata.SourceFile,
			&chunk.Metadata.ChunkSize,
			&chunk.Text,
			&chunk.Metadata.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return chunks, nil
}

func (s *PostgresStore) DeleteByDocumentID(ctx context.Context, documentID string) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM rag_chunks WHERE document_id = $1", documentID)
	if err != nil {
		return 0, fmt.Errorf("delete document chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListDocuments de-duplicates chunk metadata into one entry per document.
func (s *PostgresStore) ListDocuments(ctx context.Context) ([]document.Info, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT document_id, MIN(source_file), MIN(created_at)
		FROM rag_chunks
		GROUP BY document_id
		ORDER BY MIN(created_at)
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	infos := make([]document.Info, 0)
	for rows.Next() {
		var info document.Info
		if err := rows.Scan(&info.DocumentID, &info.SourceFile, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document info: %w", err)
		}
		infos = append(infos, info)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return infos, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rag_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ClearAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE rag_chunks"); err != nil {
		return fmt.Errorf("truncate chunks: %w", err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
