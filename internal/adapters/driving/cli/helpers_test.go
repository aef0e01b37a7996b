package cli

import (
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
	"github.com/custodia-labs/retriva-cli/internal/core/ports/driving"
)

// Compile-time interface checks for the mocks.
var (
	_ driving.RetrievalService  = (*mockRetrievalService)(nil)
	_ driving.IngestService     = (*mockIngestService)(nil)
	_ driving.DocumentService   = (*mockDocumentService)(nil)
	_ driving.SettingsService   = (*mockSettingsService)(nil)
	_ driving.ValidationService = (*mockValidationService)(nil)
)

// setupTestServices swaps the package-level services for mocks with
// canned data and returns a cleanup restoring the originals.
func setupTestServices() func() {
	oldRetrieval := retrievalService
	oldIngest := ingestService
	oldDocument := documentService
	oldSettings := settingsService
	oldValidation := validationService

	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	retrievalService = &mockRetrievalService{
		result: &domain.RetrievalResult{
			Context: domain.AssembledContext{
				Candidates: []domain.RetrievalCandidate{
					{
						SegmentID:     "seg-1",
						DocumentID:    "doc-1",
						DocumentName:  "Test Document 1",
						Content:       "This is the content of the test document.",
						SegmentIndex:  0,
						Score:         0.8,
						RerankedScore: 0.92,
					},
				},
				TotalCount: 1,
			},
			Confidence: 85,
		},
	}
	ingestService = &mockIngestService{
		doc: &domain.Document{ID: "doc-1", Title: "Test Document 1"},
	}
	documentService = &mockDocumentService{
		documents: []domain.Document{
			{
				ID:        "doc-1",
				Title:     "Test Document 1",
				URI:       "file:///docs/test.md",
				CreatedAt: created,
				UpdatedAt: created,
				Metadata:  map[string]any{"format": "markdown"},
			},
		},
		content: "This is the content of the test document.",
		segments: []domain.Segment{
			{ID: "seg-1", DocumentID: "doc-1", Index: 0, Content: "This is the content", WordCount: 4, SectionTitle: "Intro"},
			{ID: "seg-2", DocumentID: "doc-1", Index: 1, Content: "of the test document.", WordCount: 4},
		},
	}
	settingsService = &mockSettingsService{}
	validationService = &mockValidationService{
		result: domain.ValidationResult{Confidence: 80, CitationsValid: true},
	}

	return func() {
		retrievalService = oldRetrieval
		ingestService = oldIngest
		documentService = oldDocument
		settingsService = oldSettings
		validationService = oldValidation
	}
}

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

type mockIngestService struct {
	doc *domain.Document
	err error

	ingested []string
}

func (m *mockIngestService) IngestFile(_ context.Context, path string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, path)
	return m.doc, nil
}

func (m *mockIngestService) IngestText(_ context.Context, uri, _, _ string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.ingested = append(m.ingested, uri)
	return m.doc, nil
}

type mockDocumentService struct {
	documents []domain.Document
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

func (m *mockDocumentService) Get(_ context.Context, docID string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.documents {
		if m.documents[i].ID == docID {
			return &m.documents[i], nil
		}
	}
	return nil, errors.New("document not found")
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

// mockSettingsService holds settings in memory.
type mockSettingsService struct {
	cfg *domain.RetrievalConfig
	err error

	saved *domain.RetrievalConfig
}

func (m *mockSettingsService) Get() (*domain.RetrievalConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.cfg == nil {
		defaults := domain.DefaultRetrievalConfig()
		return &defaults, nil
	}
	return m.cfg, nil
}

func (m *mockSettingsService) Save(cfg *domain.RetrievalConfig) error {
	if m.err != nil {
		return m.err
	}
	m.saved = cfg
	m.cfg = cfg
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.RetrievalConfig {
	return domain.DefaultRetrievalConfig()
}

func (m *mockSettingsService) Validate() error {
	return m.err
}

type mockValidationService struct {
	result domain.ValidationResult

	lastAnswer string
}

func (m *mockValidationService) Validate(answer string, _ domain.AssembledContext) domain.ValidationResult {
	m.lastAnswer = answer
	return m.result
}
