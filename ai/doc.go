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


// Package ai abstracts the external embedding service.
//
// The pipeline treats embedding computation as a collaborator: it is
// invoked only on a cache miss, and the Embedder interface is the entire
// contract. Two implementations ship with the repository:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: a counting test double for unit tests
//
// Public constructors (openai.NewEmbedder) return the ai.Embedder interface
// to prevent coupling to a concrete client; mock.NewEmbedder returns the
// concrete type so tests can stub behaviour and read call counters.
package ai
