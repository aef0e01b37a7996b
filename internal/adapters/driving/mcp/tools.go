package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/retriva-cli/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query         string   `json:"query" jsonschema:"the query to assemble context for"`
	MaxSources    int      `json:"max_sources,omitempty" jsonschema:"maximum number of context candidates to return (default 10)"`
	MinScore      *float64 `json:"min_score,omitempty" jsonschema:"minimum similarity score for a candidate to count as relevant (default 0.3)"`
	Rerank        *bool    `json:"rerank,omitempty" jsonschema:"whether to rerank candidates for relevance (default true)"`
	QueryVariants []string `json:"query_variants,omitempty" jsonschema:"optional reformulations of the query searched alongside it"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Candidates []CandidateOutput `json:"candidates"`
	Count      int               `json:"count"`
	Confidence int               `json:"confidence"`
	Issues     []string          `json:"issues,omitempty"`
}

// CandidateOutput represents a single retrieved context candidate.
type CandidateOutput struct {
	SegmentID     string  `json:"segment_id"`
	DocumentID    string  `json:"document_id"`
	DocumentName  string  `json:"document_name"`
	Content       string  `json:"content"`
	SegmentIndex  int     `json:"segment_index"`
	Score         float64 `json:"score"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// IngestTextInput is the input schema for the ingest_text tool.
type IngestTextInput struct {
	URI     string `json:"uri" jsonschema:"unique identifier for the document, replaces any prior ingest of the same URI"`
	Title   string `json:"title,omitempty" jsonschema:"display title for the document"`
	Content string `json:"content" jsonschema:"the plain text content to ingest"`
}

// IngestTextOutput is the output schema for the ingest_text tool.
type IngestTextOutput struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve relevant context from the local corpus for a query",
	}, s.handleRetrieve)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_text",
			Description: "Ingest plain text into the local corpus",
		}, s.handleIngestText)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.DefaultRetrievalConfig().Options()
	if input.MaxSources > 0 {
		opts.MaxSources = input.MaxSources
	}
	if input.MinScore != nil {
		opts.MinScore = *input.MinScore
	}
	if input.Rerank != nil {
		opts.EnableReranking = *input.Rerank
	}
	opts.QueryVariants = input.QueryVariants

	result, err := s.ports.Retrieval.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Candidates: make([]CandidateOutput, len(result.Context.Candidates)),
		Count:      result.Context.TotalCount,
		Confidence: result.Confidence,
		Issues:     result.Issues,
	}

	for i := range result.Context.Candidates {
		c := &result.Context.Candidates[i]
		score := c.RerankedScore
		if score == 0 {
			score = c.Score
		}
		output.Candidates[i] = CandidateOutput{
			SegmentID:     c.SegmentID,
			DocumentID:    c.DocumentID,
			DocumentName:  c.DocumentName,
			Content:       c.Content,
			SegmentIndex:  c.SegmentIndex,
			Score:         score,
			LowConfidence: c.LowConfidence,
		}
	}

	return nil, output, nil
}

// handleIngestText handles the ingest_text tool invocation.
func (s *Server) handleIngestText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestTextInput,
) (*mcp.CallToolResult, IngestTextOutput, error) {
	if input.URI == "" || input.Content == "" {
		return nil, IngestTextOutput{}, errors.New("uri and content are required")
	}

	doc, err := s.ports.Ingest.IngestText(ctx, input.URI, input.Title, input.Content)
	if err != nil {
		return nil, IngestTextOutput{}, err
	}

	return nil, IngestTextOutput{
		DocumentID: doc.ID,
		Title:      doc.Title,
	}, nil
}
