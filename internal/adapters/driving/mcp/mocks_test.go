package mcp

import (
	"context"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
)

// Compile-time interface checks for the mocks.
var (
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.DocumentService  = (*mockDocumentService)(nil)
	_ driving.IngestService    = (*mockIngestService)(nil)
)

// mockRetrievalService is a canned-response retrieval service.
type mockRetrievalService struct {
	result *domain.RetrievalResult
	err    error

	lastQuery string
	lastOpts  domain.RetrievalOptions
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &domain.RetrievalResult{}, nil
	}
	return m.result, nil
}

// mockDocumentService is a canned-response document service.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	segments  []domain.Segment
	err       error
}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.documents, nil
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.document, nil
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.content, nil
}

func (m *mockDocumentService) Segments(_ context.Context, _ string) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.segments, nil
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

// mockIngestService is a canned-response ingest service.
type mockIngestService struct {
	doc *domain.Document
	err error

	lastURI     string
	lastContent string
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}

func (m *mockIngestService) IngestText(_ context.Context, uri, _, content string) (*domain.Document, error) {
	m.lastURI = uri
	m.lastContent = content
	if m.err != nil {
		return nil, m.err
	}
	return m.doc, nil
}
