// Package mcp provides an MCP (Model Context Protocol) server adapter for Retriva.
// It lets AI assistants retrieve grounded context from the local corpus.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
