// Package postgres provides a Postgres/pgvector-backed SegmentStore.
// Unlike the SQLite store it ranks segments server-side through the
// vector index, so retrieval skips the full scan path.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.SegmentStore       = (*Store)(nil)
	_ driven.SimilaritySearcher = (*Store)(nil)
)

// DefaultDimensions is the embedding column width when none is given.
const DefaultDimensions = 768

// segmentColumns is the column list shared by every segment query.
const segmentColumns = `id, document_id, content, position, total_segments,
	start_offset, end_offset, word_count, section_title, has_header,
	overlap_previous, overlap_next, embedding, metadata`

// Config holds Postgres store configuration.
type Config struct {
	// ConnString is the pgx connection string (required).
	ConnString string

	// Dimensions is the embedding vector width (default: 768).
	// Must match the embedding model in use.
	Dimensions int
}

// Store is a Postgres SegmentStore with pgvector similarity search.
type Store struct {
	pool       *pgxpool.Pool
	dimensions int
}

// NewStore connects to Postgres and ensures the schema exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnString == "" {
		return nil, fmt.Errorf("postgres: connection string is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	pool, err := pgxpool.New(ctx, cfg.ConnString)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	s := &Store{
		pool:       pool,
		dimensions: cfg.Dimensions,
	}

	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// ensureSchema creates tables and the vector index if missing.
func (s *Store) ensureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		uri TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		page_count INTEGER NOT NULL DEFAULT 0,
		metadata JSONB,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_uri ON documents(uri);

	CREATE TABLE IF NOT EXISTS segments (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		position INTEGER NOT NULL,
		total_segments INTEGER NOT NULL DEFAULT 0,
		start_offset INTEGER NOT NULL DEFAULT 0,
		end_offset INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		section_title TEXT NOT NULL DEFAULT '',
		has_header BOOLEAN NOT NULL DEFAULT FALSE,
		overlap_previous TEXT NOT NULL DEFAULT '',
		overlap_next TEXT NOT NULL DEFAULT '',
		embedding vector(%d),
		metadata JSONB
	);

	CREATE INDEX IF NOT EXISTS idx_segments_document_id ON segments(document_id);

	CREATE INDEX IF NOT EXISTS idx_segments_embedding ON segments
		USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);
	`, s.dimensions)

	_, err := s.pool.Exec(ctx, query)
	return err
}

// SaveDocument stores or updates a document.
func (s *Store) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil {
		return domain.ErrInvalidInput
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO documents (id, uri, title, content, page_count, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			uri = EXCLUDED.uri,
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			page_count = EXCLUDED.page_count,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`, doc.ID, doc.URI, doc.Title, doc.Content, doc.PageCount,
		metadataJSON, doc.CreatedAt, doc.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ReplaceSegments atomically replaces the full segment set for a
// document inside a single transaction.
func (s *Store) ReplaceSegments(ctx context.Context, documentID string, segments []domain.Segment) error {
	var exists int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM documents WHERE id = $1", documentID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, "DELETE FROM segments WHERE document_id = $1", documentID); err != nil {
		return fmt.Errorf("clearing segments: %w", err)
	}

	for _, seg := range segments {
		metadataJSON, err := json.Marshal(seg.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling segment metadata: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO segments (`+segmentColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		`, seg.ID, documentID, seg.Content, seg.Index, seg.TotalSegments,
			seg.StartOffset, seg.EndOffset, seg.WordCount, seg.SectionTitle,
			seg.HasHeader, seg.OverlapWithPrevious, seg.OverlapWithNext,
			embeddingValue(seg.Embedding), metadataJSON)
		if err != nil {
			return fmt.Errorf("saving segment: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, uri, title, content, page_count, metadata, created_at, updated_at
		FROM documents WHERE id = $1
	`, id)

	return scanDocument(row.Scan)
}

// GetSegments retrieves all segments for a document, ordered by index.
func (s *Store) GetSegments(ctx context.Context, documentID string) ([]domain.Segment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+segmentColumns+`
		FROM segments WHERE document_id = $1
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	var segments []domain.Segment
	for rows.Next() {
		seg, err := scanSegment(rows.Scan)
		if err != nil {
			return nil, err
		}
		segments = append(segments, *seg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating segments: %w", err)
	}

	return segments, nil
}

// GetSegment retrieves a specific segment by ID.
func (s *Store) GetSegment(ctx context.Context, id string) (*domain.Segment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+segmentColumns+`
		FROM segments WHERE id = $1
	`, id)

	seg, err := scanSegment(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return seg, nil
}

// ScanSegments streams every stored segment to fn.
func (s *Store) ScanSegments(ctx context.Context, fn func(domain.Segment) error) error {
	rows, err := s.pool.Query(ctx, `
		SELECT `+segmentColumns+`
		FROM segments
		ORDER BY document_id, position
	`)
	if err != nil {
		return fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		seg, err := scanSegment(rows.Scan)
		if err != nil {
			return err
		}
		if err := fn(*seg); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating segments: %w", err)
	}
	return nil
}

// DeleteDocument removes a document; segments cascade.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM documents WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDocuments returns all stored documents ordered by creation time.
func (s *Store) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, uri, title, content, page_count, metadata, created_at, updated_at
		FROM documents
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// SearchSimilar ranks segments against the query vector server-side
// through the pgvector cosine index.
func (s *Store) SearchSimilar(ctx context.Context, embedding []float32, k int) ([]driven.ScoredSegment, error) {
	if len(embedding) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("query vector has %d dimensions, store has %d: %w",
			len(embedding), s.dimensions, domain.ErrDimensionMismatch)
	}

	vector := pgvector.NewVector(embedding)

	rows, err := s.pool.Query(ctx, `
		SELECT `+segmentColumns+`,
		       1 - (embedding <=> $1) AS score
		FROM segments
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> $1
		LIMIT $2
	`, vector, k)
	if err != nil {
		return nil, fmt.Errorf("querying similar segments: %w", err)
	}
	defer rows.Close()

	var results []driven.ScoredSegment
	for rows.Next() {
		var seg domain.Segment
		var vec *pgvector.Vector
		var metadataJSON []byte
		var score float64

		if err := rows.Scan(&seg.ID, &seg.DocumentID, &seg.Content, &seg.Index,
			&seg.TotalSegments, &seg.StartOffset, &seg.EndOffset, &seg.WordCount,
			&seg.SectionTitle, &seg.HasHeader, &seg.OverlapWithPrevious,
			&seg.OverlapWithNext, &vec, &metadataJSON, &score); err != nil {
			return nil, fmt.Errorf("scanning similar segment: %w", err)
		}

		if vec != nil {
			seg.Embedding = vec.Slice()
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &seg.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling segment metadata: %w", err)
			}
		}

		// Cosine distance spans [0,2]; clamp the derived score to [0,1].
		if score < 0 {
			score = 0
		}

		results = append(results, driven.ScoredSegment{Segment: seg, Score: score})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating similar segments: %w", err)
	}

	return results, nil
}

// embeddingValue returns a pgvector value or nil for empty embeddings.
func embeddingValue(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	return pgvector.NewVector(v)
}

// scanDocument scans a document row via the given scan func.
func scanDocument(scan func(...any) error) (*domain.Document, error) {
	var doc domain.Document
	var metadataJSON []byte

	if err := scan(&doc.ID, &doc.URI, &doc.Title, &doc.Content,
		&doc.PageCount, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// scanSegment scans a segment row via the given scan func.
func scanSegment(scan func(...any) error) (*domain.Segment, error) {
	var seg domain.Segment
	var vec *pgvector.Vector
	var metadataJSON []byte

	if err := scan(&seg.ID, &seg.DocumentID, &seg.Content, &seg.Index,
		&seg.TotalSegments, &seg.StartOffset, &seg.EndOffset, &seg.WordCount,
		&seg.SectionTitle, &seg.HasHeader, &seg.OverlapWithPrevious,
		&seg.OverlapWithNext, &vec, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning segment: %w", err)
	}

	if vec != nil {
		seg.Embedding = vec.Slice()
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &seg.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling segment metadata: %w", err)
		}
	}

	return &seg, nil
}
