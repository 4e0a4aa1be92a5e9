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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tessara/corpusd/core"
)

const (
	liveIndexDir    = "index"
	stagingIndexDir = "index.staging"
	retiredIndexDir = "index.old"
)

// Engine is the external vector index engine. It builds similarity indexes;
// this pipeline only decides when to build and where the result lives.
type Engine interface {
	// Rebuild writes a complete index for the project's items into dir.
	// dir exists and is empty when called.
	Rebuild(ctx context.Context, projectID, dir string, items []*core.SourceItem) error
}

// Rebuilder drives index rebuilds. Concurrent rebuild requests for the same
// project are coalesced into a single in-flight rebuild, and a failed
// rebuild never destroys the previous index: the engine builds into a
// staging directory that is swapped over the live one only on success.
type Rebuilder struct {
	tracker     *Tracker
	engine      Engine
	projectRoot string
	group       singleflight.Group
	logger      *slog.Logger
	maxRetries  int
	retryDelay  time.Duration
}

// RebuilderOption configures a Rebuilder.
type RebuilderOption func(*Rebuilder)

// WithRetry sets retry behaviour for engine failures.
// Defaults: 3 attempts, 1s base delay.
func WithRetry(maxRetries int, baseDelay time.Duration) RebuilderOption {
	return func(r *Rebuilder) {
		if maxRetries > 0 {
			r.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			r.retryDelay = baseDelay
		}
	}
}

// WithRebuilderLogger sets a custom logger.
func WithRebuilderLogger(logger *slog.Logger) RebuilderOption {
	return func(r *Rebuilder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRebuilder creates a rebuilder. projectRoot is the directory holding
// per-project derived indexes, separate from the cache root.
func NewRebuilder(tracker *Tracker, engine Engine, projectRoot string, opts ...RebuilderOption) (*Rebuilder, error) {
	if tracker == nil {
		return nil, ErrStatusRepositoryRequired
	}
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if projectRoot == "" {
		return nil, fmt.Errorf("project root required")
	}
	r := &Rebuilder{
		tracker:     tracker,
		engine:      engine,
		projectRoot: projectRoot,
		logger:      slog.Default().With("component", "index-rebuilder"),
		maxRetries:  3,
		retryDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// IndexDir returns the live index location for a project.
func (r *Rebuilder) IndexDir(projectID string) string {
	return filepath.Join(r.projectRoot, projectID, liveIndexDir)
}

// RebuildIfStale checks staleness and rebuilds only when needed.
// Returns whether a rebuild ran.
func (r *Rebuilder) RebuildIfStale(ctx context.Context, projectID string) (bool, error) {
	stale, reasons, snap, err := r.tracker.IsStale(ctx, projectID)
	if err != nil {
		return false, err
	}
	if !stale {
		return false, nil
	}
	r.logger.Info("index is stale, rebuilding", "project", projectID, "reasons", reasons)
	return true, r.rebuild(ctx, projectID, snap)
}

// Rebuild unconditionally rebuilds the project's index from its current
// embeddable item set.
func (r *Rebuilder) Rebuild(ctx context.Context, projectID string) error {
	snap, err := r.tracker.Gather(ctx, projectID)
	if err != nil {
		return err
	}
	return r.rebuild(ctx, projectID, snap)
}

// rebuild coalesces concurrent requests per project and performs the
// staging-then-swap sequence. IndexStatus is only touched after the swap,
// so a failure at any step leaves the previous index authoritative.
func (r *Rebuilder) rebuild(ctx context.Context, projectID string, snap *Snapshot) error {
	_, err, _ := r.group.Do(projectID, func() (any, error) {
		projectDir := filepath.Join(r.projectRoot, projectID)
		staging := filepath.Join(projectDir, stagingIndexDir)
		live := filepath.Join(projectDir, liveIndexDir)
		retired := filepath.Join(projectDir, retiredIndexDir)

		if err := os.RemoveAll(staging); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(staging, 0755); err != nil {
			return nil, err
		}

		err := RetryWithBackoff(ctx, func() error {
			return r.engine.Rebuild(ctx, projectID, staging, snap.Items)
		}, r.maxRetries, r.retryDelay)
		if err != nil {
			os.RemoveAll(staging)
			return nil, fmt.Errorf("%w: %w", ErrRebuildFailed, err)
		}

		// Swap: retire the live index, promote staging, drop the retired
		// copy. A crash between the renames leaves either the old or the
		// new index in place, never neither.
		if err := os.RemoveAll(retired); err != nil {
			return nil, err
		}
		if _, statErr := os.Stat(live); statErr == nil {
			if err := os.Rename(live, retired); err != nil {
				os.RemoveAll(staging)
				return nil, err
			}
		}
		if err := os.Rename(staging, live); err != nil {
			// Try to restore the previous index before giving up.
			if _, statErr := os.Stat(retired); statErr == nil {
				os.Rename(retired, live)
			}
			return nil, fmt.Errorf("%w: promoting staged index: %w", ErrRebuildFailed, err)
		}
		os.RemoveAll(retired)

		if err := r.tracker.MarkFresh(ctx, projectID, snap); err != nil {
			return nil, err
		}
		r.logger.Info("index rebuilt", "project", projectID, "items", snap.Count)
		return nil, nil
	})
	return err
}
