// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// The retrieval core depends on these interfaces only; concrete
// implementations live under internal/adapters/driven and are injected
// at startup. Several collaborators are optional: when an optional
// service is nil the pipeline degrades along its documented fallback
// chain instead of failing.
package driven
