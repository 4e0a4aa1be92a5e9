// Package index tracks whether each project's derived vector index still
// reflects its source items, and drives rebuilds when it does not.
//
// Staleness is defined by comparison against the stored IndexStatus: a
// project is stale when no status exists, when the live embeddable item
// count differs from the tracked count, or when the fingerprint over the
// ordered per-item digests differs from the stored one. MarkFresh runs only
// after a rebuild succeeds, so a failed rebuild leaves the previous index
// authoritative.
//
// Rebuilds go through a staging directory that replaces the live index
// atomically on success; concurrent rebuild requests for one project are
// coalesced through singleflight.
package index
