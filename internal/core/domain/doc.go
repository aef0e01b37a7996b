// Package domain defines the core business entities for Retriva.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested document with metadata
//   - Segment: A bounded, overlap-tracked span of a document's text
//   - Landmark: A structural feature detected during segmentation
//   - RetrievalCandidate: A segment paired with a query-relevance score
//   - AssembledContext: The bounded, ordered context handed to generation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
