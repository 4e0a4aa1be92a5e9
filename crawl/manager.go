// Copyright 2025 Tessara Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package crawl

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/tessara/corpusd/core"
)

// Manager runs crawl jobs as independent background tasks off the caller's
// request path. Callers get a job ID back immediately and poll Status for
// progress; snapshots survive job completion.
type Manager struct {
	crawler *Crawler
	pool    *ants.Pool
	logger  *slog.Logger

	mu     sync.Mutex
	jobs   map[string]*Job
	closed bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager) error

// WithPoolSize sets the number of concurrently running crawl jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) ManagerOption {
	return func(m *Manager) error {
		if size < 1 {
			size = 1
		}
		if m.pool != nil {
			m.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithManagerLogger sets a custom logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) error {
		if logger != nil {
			m.logger = logger
		}
		return nil
	}
}

// NewManager creates a crawl manager.
func NewManager(crawler *Crawler, opts ...ManagerOption) (*Manager, error) {
	if crawler == nil {
		return nil, ErrRendererRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		crawler: crawler,
		pool:    pool,
		logger:  slog.Default().With("component", "crawl-manager"),
		jobs:    make(map[string]*Job),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.pool.Release()
			return nil, err
		}
	}
	return m, nil
}

// Start validates the spec, registers a job, and submits it to the pool.
// Returns the job ID for later status queries. The crawl itself runs in the
// background; pages flow into sink as they are processed.
func (m *Manager) Start(ctx context.Context, spec core.CrawlSpec, sink DocumentSink) (string, error) {
	job, err := NewJob(uuid.New().String(), spec)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return "", ErrManagerClosed
	}
	m.jobs[job.ID] = job
	m.mu.Unlock()

	err = m.pool.Submit(func() {
		m.crawler.Run(ctx, job, sink)
	})
	if err != nil {
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
		return "", err
	}

	m.logger.Info("crawl started", "job", job.ID, "seed", spec.SeedURL,
		"maxDepth", spec.MaxDepth, "maxPages", spec.MaxPages)
	return job.ID, nil
}

// Status returns the current snapshot for a job.
func (m *Manager) Status(jobID string) (*core.CrawlSnapshot, error) {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return nil, ErrJobNotFound
	}
	return job.Snapshot(), nil
}

// Cancel requests cancellation of a running job. Takes effect at the next
// iteration boundary; already-collected results are retained.
func (m *Manager) Cancel(jobID string) error {
	m.mu.Lock()
	job, ok := m.jobs[jobID]
	m.mu.Unlock()
	if !ok {
		return ErrJobNotFound
	}
	job.Cancel()
	return nil
}

// Release cancels all jobs and shuts the pool down.
func (m *Manager) Release() {
	m.mu.Lock()
	m.closed = true
	for _, job := range m.jobs {
		job.Cancel()
	}
	m.mu.Unlock()
	m.pool.Release()
}
