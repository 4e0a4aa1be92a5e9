package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tessara/corpusd/core"
	"github.com/tessara/corpusd/storage"
)

// Snapshot is the live embeddable state of a project, gathered in one pass:
// the inputs a rebuild would index and the fingerprints a freshness check
// compares against.
type Snapshot struct {
	Items              []*core.SourceItem
	Count              int
	ContentFingerprint core.Digest
	NotesFingerprint   core.Digest
}

// Tracker decides whether a project's derived vector index still reflects
// the current set and content of its source items.
type Tracker struct {
	items  storage.ItemRepository
	status storage.StatusRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewTracker creates a staleness tracker.
func NewTracker(items storage.ItemRepository, status storage.StatusRepository) (*Tracker, error) {
	if items == nil {
		return nil, ErrItemRepositoryRequired
	}
	if status == nil {
		return nil, ErrStatusRepositoryRequired
	}
	return &Tracker{
		items:  items,
		status: status,
		logger: slog.Default().With("component", "staleness-tracker"),
		now:    time.Now,
	}, nil
}

// Gather collects the project's embeddable items and computes the live
// fingerprints. Items come back from the repository ordered by ID, so the
// fingerprint over their concatenated per-item digests is deterministic.
func (t *Tracker) Gather(ctx context.Context, projectID string) (*Snapshot, error) {
	if projectID == "" {
		return nil, core.ErrEmptyProjectID
	}
	all, err := t.items.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	var contentParts, noteParts []byte
	for _, item := range all {
		if !item.Embeddable() {
			continue
		}
		snap.Items = append(snap.Items, item)
		fp := item.Fingerprint()
		contentParts = append(contentParts, fp[:]...)
		if item.Kind == core.SourceKindNote {
			noteParts = append(noteParts, fp[:]...)
		}
	}
	snap.Count = len(snap.Items)
	snap.ContentFingerprint = core.DigestOf(contentParts)
	snap.NotesFingerprint = core.DigestOf(noteParts)
	return snap, nil
}

// IsStale compares the stored IndexStatus against the live item set.
// Returns stale=true with the reasons when no status exists, when the
// tracked item count no longer matches, or when the content fingerprint
// differs. The returned snapshot is the live state the comparison used.
func (t *Tracker) IsStale(ctx context.Context, projectID string) (bool, []string, *Snapshot, error) {
	snap, err := t.Gather(ctx, projectID)
	if err != nil {
		return false, nil, nil, err
	}

	status, err := t.status.Get(ctx, projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return true, []string{"index has never been built"}, snap, nil
		}
		return false, nil, nil, err
	}
	if !status.Exists {
		return true, []string{"index does not exist"}, snap, nil
	}

	var reasons []string
	if status.TrackedItemCount != snap.Count {
		reasons = append(reasons, fmt.Sprintf("item count changed: indexed %d, live %d",
			status.TrackedItemCount, snap.Count))
	}
	if status.ContentFingerprint != snap.ContentFingerprint {
		reasons = append(reasons, "content fingerprint changed")
	}
	return len(reasons) > 0, reasons, snap, nil
}

// MarkFresh idempotently upserts the project's IndexStatus from a snapshot.
// Call only after a rebuild has actually succeeded; a failed rebuild must
// leave the status untouched so the next check still reports staleness.
func (t *Tracker) MarkFresh(ctx context.Context, projectID string, snap *Snapshot) error {
	status := &core.IndexStatus{
		ProjectID:          projectID,
		Exists:             true,
		LastUpdated:        t.now().UTC(),
		TrackedItemCount:   snap.Count,
		ContentFingerprint: snap.ContentFingerprint,
		NotesFingerprint:   snap.NotesFingerprint,
	}
	if err := t.status.Upsert(ctx, status); err != nil {
		return err
	}
	t.logger.Info("index marked fresh", "project", projectID, "items", snap.Count)
	return nil
}
