package crawl

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tessara/corpusd/core"
)

// Job is the mutable state of one crawl. It is created at crawl start,
// mutated only by the traversal loop, and finalized into snapshots that
// remain queryable after the job reaches a terminal state.
type Job struct {
	ID   string
	Spec core.CrawlSpec

	cancelled atomic.Bool

	mu         sync.Mutex
	status     core.CrawlStatus
	processed  int
	failed     int
	discovered []string
	startedAt  time.Time
	finishedAt time.Time
}

// NewJob creates a job in the running state.
func NewJob(id string, spec core.CrawlSpec) (*Job, error) {
	if err := core.ValidateCrawlSpec(&spec); err != nil {
		return nil, err
	}
	return &Job{
		ID:        id,
		Spec:      spec,
		status:    core.CrawlStatusRunning,
		startedAt: time.Now().UTC(),
	}, nil
}

// Cancel requests cooperative cancellation. The traversal loop observes the
// flag once per iteration; an in-progress fetch is allowed to finish.
func (j *Job) Cancel() {
	j.cancelled.Store(true)
}

// Snapshot returns a copy of the job's current state.
func (j *Job) Snapshot() *core.CrawlSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	urls := make([]string, len(j.discovered))
	copy(urls, j.discovered)
	return &core.CrawlSnapshot{
		JobID:          j.ID,
		SeedURL:        j.Spec.SeedURL,
		Status:         j.status,
		Processed:      j.processed,
		Failed:         j.failed,
		DiscoveredURLs: urls,
		StartedAt:      j.startedAt,
		FinishedAt:     j.finishedAt,
	}
}

func (j *Job) processedCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.processed
}

func (j *Job) markProcessed() {
	j.mu.Lock()
	j.processed++
	j.mu.Unlock()
}

func (j *Job) markFailed() {
	j.mu.Lock()
	j.failed++
	j.mu.Unlock()
}

func (j *Job) markDiscovered(url string) {
	j.mu.Lock()
	j.discovered = append(j.discovered, url)
	j.mu.Unlock()
}

// finish transitions to a terminal status. Terminal states are absorbing:
// a second transition is ignored.
func (j *Job) finish(status core.CrawlStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return
	}
	j.status = status
	j.finishedAt = time.Now().UTC()
}

// DocumentSink receives each successfully processed page. Crawled documents
// feed the same ingestion path as uploads.
type DocumentSink func(ctx context.Context, doc *core.CrawledDocument) error

// frontierEntry is one pending fetch in the BFS frontier.
type frontierEntry struct {
	url   string
	depth int
}

// Crawler runs bounded breadth-first traversals of a site's internal link
// graph.
type Crawler struct {
	renderer Renderer
	logger   *slog.Logger
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithCrawlerLogger sets a custom logger.
func WithCrawlerLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCrawler creates a crawler over a renderer.
func NewCrawler(renderer Renderer, opts ...CrawlerOption) (*Crawler, error) {
	if renderer == nil {
		return nil, ErrRendererRequired
	}
	c := &Crawler{
		renderer: renderer,
		logger:   slog.Default().With("component", "crawler"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run executes the job's traversal until the frontier drains, the page
// budget is spent, or cancellation is observed. Pages are fetched in BFS
// order by depth. Each URL is fetched at most once. Per-page errors are
// counted and never abort the job; only a seed fetch failure marks the job
// failed.
func (c *Crawler) Run(ctx context.Context, job *Job, sink DocumentSink) {
	logger := c.logger.With("job", job.ID, "seed", job.Spec.SeedURL)

	filter, err := NewFilter(job.Spec.SeedURL, job.Spec.IncludePatterns, job.Spec.ExcludePatterns)
	if err != nil {
		logger.Error("invalid seed url", "err", err)
		job.finish(core.CrawlStatusFailed)
		return
	}

	seed := normalizeURL(job.Spec.SeedURL)
	frontier := []frontierEntry{{url: seed, depth: 0}}
	// seen is marked at enqueue time, so no URL enters the frontier twice
	// and therefore none is fetched twice.
	seen := map[string]struct{}{seed: {}}

	for len(frontier) > 0 {
		// Cooperative cancellation, checked once per iteration.
		if ctx.Err() != nil || job.cancelled.Load() {
			logger.Info("crawl cancelled", "processed", job.processedCount())
			job.finish(core.CrawlStatusCancelled)
			return
		}
		if job.processedCount() >= job.Spec.MaxPages {
			break
		}

		entry := frontier[0]
		frontier = frontier[1:]

		if admitted, reason := filter.Admit(entry.url); !admitted {
			logger.Debug("url rejected", "url", entry.url, "reason", reason)
			continue
		}

		page, err := c.renderer.Render(ctx, entry.url)
		if err != nil {
			logger.Warn("page fetch failed", "url", entry.url, "err", err)
			job.markFailed()
			if entry.url == seed && entry.depth == 0 {
				job.finish(core.CrawlStatusFailed)
				return
			}
			continue
		}

		extraction, err := ExtractContent(page.HTML)
		if err != nil {
			logger.Warn("content extraction failed", "url", entry.url, "err", err)
			job.markFailed()
			continue
		}

		// Too little text: the page is skipped outright. It counts neither
		// as processed nor failed, and its links are not explored.
		if len(extraction.Text) < job.Spec.MinTextLength {
			logger.Debug("page below min text length, skipping",
				"url", entry.url, "length", len(extraction.Text))
			continue
		}

		job.markProcessed()

		if sink != nil {
			doc := &core.CrawledDocument{
				URL:    entry.url,
				Title:  extraction.Title,
				Depth:  entry.depth,
				Domain: hostOf(entry.url),
				Text:   extraction.Text,
				Links:  page.Links,
			}
			if err := sink(ctx, doc); err != nil {
				logger.Error("document sink failed", "url", entry.url, "err", err)
			}
		}

		if entry.depth < job.Spec.MaxDepth {
			for _, link := range page.Links {
				normalized := normalizeURL(link)
				if _, visited := seen[normalized]; visited {
					continue
				}
				if admitted, _ := filter.Admit(normalized); !admitted {
					continue
				}
				seen[normalized] = struct{}{}
				job.markDiscovered(normalized)
				frontier = append(frontier, frontierEntry{url: normalized, depth: entry.depth + 1})
			}
		}
	}

	logger.Info("crawl completed", "processed", job.processedCount())
	job.finish(core.CrawlStatusCompleted)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
