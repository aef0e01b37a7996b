// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// Normalisers are registered with the Registry at startup; the registry
// dispatches raw content to the highest-priority normaliser claiming its
// MIME type, falling back to the plain text normaliser for anything
// unclaimed.
package normalisers
