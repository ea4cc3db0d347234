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


// Package search provides hybrid retrieval over ingested items.
//
// The Searcher type runs a two-stage algorithm:
//   - A metadata filter (speakers, topics, tags, summary phrase, creation
//     window) resolves to a set of candidate item ids
//   - Vector search ranks transcript segments restricted to those items
//
// A filter that matches nothing returns empty results without running the
// vector stage. A request with a filter but no query is a metadata browse
// and returns whole items instead of ranked segments.
package search
