// Copyright 2025 Castkeep Authors
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


// Package ai provides abstractions for the AI collaborators used in castkeep.
//
// This package defines interfaces for the external services the ingestion
// pipeline and query planner delegate to: text embedding, speech-to-text
// transcription, and structured insight extraction. It follows the
// dependency inversion principle, allowing the core domain and business
// logic to depend on abstractions rather than concrete implementations.
//
// # Design Principles
//
// The package is designed around four key interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Transcriber: Converts audio artifacts into transcript text
//   - InsightExtractor: Derives summary, topics, speakers, action items, and tags
//   - AIProvider: Aggregates the services for convenient initialization
//
// Concrete implementations live in subpackages:
//
//   - openai: OpenAI-compatible API implementations (works with Ollama,
//     LocalAI, vLLM, faster-whisper-server, and the hosted OpenAI API)
//   - mock: Deterministic test doubles with call counting
//
// None of the services define their own timeout or retry policy; callers own
// cancellation through the context they pass in.
package ai
