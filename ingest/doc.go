// Package ingest wires content intake to the embedding cache and the index
// staleness machinery.
//
// The pipeline is deliberately thin: hashing and chunk validation happen up
// front, the cache.Store does the heavy lifting of dedup and artifact
// persistence, and everything downstream of a successful commit is a
// best-effort reindex intent consumed asynchronously.
package ingest
