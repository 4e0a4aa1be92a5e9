// Package crawl implements a bounded, cancellable breadth-first crawler
// over a site's internal link graph.
//
// Traversal is BFS over (url, depth) pairs in a FIFO frontier; a seen set
// guarantees each URL is fetched at most once, and cross-domain links are
// never followed. The loop stops when the frontier drains, when the page
// budget is spent, or when cancellation is observed at an iteration
// boundary (cooperative: in-flight fetches finish).
//
// Successfully processed pages become CrawledDocuments and feed the same
// ingestion path as uploaded files. Pages with too little extracted text
// are skipped entirely: neither processed nor failed, and their links are
// not explored. Per-page fetch errors are counted and never abort the job.
package crawl
