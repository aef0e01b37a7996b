// Package rank implements the retrieval-quality pipeline stages that
// run between the similarity scan and the generation step: scoring,
// deduplication, reranking with term boost, context assembly, the
// confidence estimate and the low-signal fallback policy.
//
// Every function here operates on request-scoped data only. No stage
// keeps state between queries, so concurrent retrievals cannot corrupt
// each other's dedup or cap bookkeeping.
package rank
