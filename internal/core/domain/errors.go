package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown or corrupt file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmptyQuery indicates a query with no content after trimming.
	// Rejected immediately; no partial work is performed.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmptyDocument indicates a document with no text content.
	ErrEmptyDocument = errors.New("empty document")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Similarity search is disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankUnavailable indicates the external rerank provider is
	// down, rate-limited, or out of quota. Recovered via the fallback
	// chain; never surfaced to callers on its own.
	ErrRerankUnavailable = errors.New("rerank service unavailable")

	// ErrRetrievalUnavailable indicates every retrieval tier failed.
	// This is the only hard failure the retrieval pipeline produces.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrDimensionMismatch indicates an embedding vector whose length
	// does not match the configured dimensionality. The offending item
	// is logged and skipped rather than aborting the batch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
