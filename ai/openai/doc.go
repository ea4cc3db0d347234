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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library for embeddings and insight extraction, plus a direct multipart
// client for audio transcription (langchaingo does not cover the audio
// endpoints). It works with OpenAI or OpenAI-compatible services such as
// Ollama, LocalAI, vLLM, and faster-whisper-server.
//
// Insight extraction asks the chat model for JSON, strips markdown fences,
// repairs common formatting mistakes, and retries up to three times before
// surfacing a parse error. A response that parses but misses required fields
// is rejected the same way; callers never see partial insights.
package openai
