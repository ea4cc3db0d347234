// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Transcriber,
// ai.InsightExtractor, and ai.AIProvider for use in unit tests. The mocks
// allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// All mocks count their calls, so tests can assert that a code path issued
// (or did not issue) an external call. Behavior can be overridden per test
// through the exported function fields.
package mock
