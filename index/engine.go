package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tessara/corpusd/core"
)

// ManifestEngine is the built-in Engine: it materializes the project's
// embeddable item set as a manifest file in the index directory. External
// vector engines replace it in deployments that serve similarity queries;
// the rebuild and swap machinery is identical either way.
type ManifestEngine struct{}

var _ Engine = (*ManifestEngine)(nil)

// NewManifestEngine creates the built-in manifest engine.
func NewManifestEngine() *ManifestEngine {
	return &ManifestEngine{}
}

// Rebuild writes one line per item: id, kind, content hash.
func (e *ManifestEngine) Rebuild(_ context.Context, projectID, dir string, items []*core.SourceItem) error {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "%s\t%s\t%s\n", item.ID, item.Kind.String(), item.ContentHash.String())
	}
	path := filepath.Join(dir, "manifest")
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("writing index manifest for %s: %w", projectID, err)
	}
	return nil
}
