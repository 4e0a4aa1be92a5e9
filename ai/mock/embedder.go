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


package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tessara/corpusd/ai"
)

// Embedder is a test double for ai.Embedder. It returns deterministic
// vectors derived from text length and counts how many embedding
// computations were requested, which lets tests assert the dedup guarantee.
type Embedder struct {
	mu             sync.Mutex
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
	callCount      atomic.Int64
	textCount      atomic.Int64
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates a mock embedder. Returns the concrete type so tests
// can stub behaviour and read counters.
func NewEmbedder() *Embedder {
	return &Embedder{}
}

// WithEmbedTextsFunc overrides batch embedding behaviour.
func (e *Embedder) WithEmbedTextsFunc(fn func(ctx context.Context, texts []string) ([][]float32, error)) *Embedder {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedTextsFunc = fn
	return e
}

// CallCount returns how many embed calls were made.
func (e *Embedder) CallCount() int {
	return int(e.callCount.Load())
}

// TextCount returns the total number of texts embedded.
func (e *Embedder) TextCount() int {
	return int(e.textCount.Load())
}

// Reset clears the counters.
func (e *Embedder) Reset() {
	e.callCount.Store(0)
	e.textCount.Store(0)
}

// EmbedText implements ai.Embedder.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts implements ai.Embedder.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.callCount.Add(1)
	e.textCount.Add(int64(len(texts)))

	e.mu.Lock()
	fn := e.embedTextsFunc
	e.mu.Unlock()
	if fn != nil {
		return fn(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 0.5, 1.0}
	}
	return vectors, nil
}

// Model implements ai.Embedder.
func (e *Embedder) Model() string {
	return "mock-embedder"
}
