package ai

import "context"

// Embedder generates vector embeddings from text chunks. Invoked only on a
// cache miss; everything else in the pipeline reuses cached artifacts.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as
	// the input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the embedding model in use. Recorded
	// on cache entries so artifacts are never reused across models.
	Model() string
}
