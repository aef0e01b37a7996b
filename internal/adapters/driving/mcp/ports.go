package mcp

import (
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval assembles context for queries.
	Retrieval driving.RetrievalService

	// Document manages ingested documents.
	Document driving.DocumentService

	// Ingest adds new documents to the corpus.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Document and Ingest are optional
	return nil
}
