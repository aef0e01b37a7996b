package domain

// ValidationResult reports answer validation against an assembled
// context. It is derived purely from the answer string and the context,
// recomputed per answer, and never persisted.
type ValidationResult struct {
	// Confidence is the bounded confidence value (0-99).
	Confidence int

	// Issues lists human-readable validation problems.
	Issues []string

	// CitationsValid reports whether every citation in the answer
	// references a candidate present in the context.
	CitationsValid bool

	// InvalidCitations lists citation numbers with no matching
	// candidate.
	InvalidCitations []int
}
