// Package cache implements the content-addressed embedding cache shared
// across tenants.
//
// Entries are keyed by (content hash, chunk size, chunk overlap); chunking
// parameters are part of the key because a different chunking scheme yields
// semantically different embeddings. The Store guarantees that identical
// content submitted under identical chunking parameters is embedded at most
// once, however many tenants submit it and however concurrently they do so.
//
// A per-key lock is held across the whole check-compute-store sequence in
// GetOrCompute; losers of a Put race discard their artifact and fall back
// to the existing entry. Rows whose backing artifact has disappeared are
// purged on read and reported as misses (self-heal).
package cache
