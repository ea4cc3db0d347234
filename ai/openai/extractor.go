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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/castkeep/castkeep/ai"
	"github.com/castkeep/castkeep/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// InsightExtractor implements ai.InsightExtractor using OpenAI-compatible chat APIs.
type InsightExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// insightsPayload is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type insightsPayload struct {
	Summary     string   `json:"summary"`
	KeyTopics   []string `json:"key_topics"`
	Speakers    []string `json:"speakers"`
	ActionItems []string `json:"action_items"`
	Tags        []string `json:"tags"`
}

// newInsightExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newInsightExtractor(config *ai.Config) (*InsightExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/extraction
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &InsightExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewInsightExtractor creates a new insight extractor using the provided configuration.
//
// Returns ai.InsightExtractor interface to enforce abstraction.
func NewInsightExtractor(config *ai.Config) (ai.InsightExtractor, error) {
	return newInsightExtractor(config)
}

// ExtractInsights derives structured insights from a transcript using an LLM.
// The result is schema-checked; a response missing the required fields is an
// error, never a partially-populated insight object.
func (e *InsightExtractor) ExtractInsights(ctx context.Context, transcript string) (*core.Insights, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(transcript),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var payload insightsPayload
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			lastErr = ErrNoChoices
			e.logger.Warn("no choices returned from model", "attempt", attempt+1)
			continue
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		payload = insightsPayload{}
		if err := json.Unmarshal([]byte(responseText), &payload); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		if err := validatePayload(&payload); err != nil {
			lastErr = err
			e.logger.Warn("extractor response violates schema",
				"attempt", attempt+1,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to obtain valid insights after retries", "err", lastErr)
		return nil, lastErr
	}

	insights := &core.Insights{
		Summary:     strings.TrimSpace(payload.Summary),
		KeyTopics:   scrubList(payload.KeyTopics),
		Speakers:    scrubList(payload.Speakers),
		ActionItems: scrubList(payload.ActionItems),
		Tags:        normalizeTags(payload.Tags),
	}

	e.logger.Debug("extracted insights",
		"topics", len(insights.KeyTopics),
		"speakers", len(insights.Speakers),
		"tags", len(insights.Tags))

	return insights, nil
}

// validatePayload enforces the required fields of the response schema.
func validatePayload(p *insightsPayload) error {
	if strings.TrimSpace(p.Summary) == "" {
		return fmt.Errorf("%w: empty summary", ErrSchemaViolation)
	}
	if len(normalizeTags(p.Tags)) == 0 {
		return fmt.Errorf("%w: no tags", ErrSchemaViolation)
	}
	return nil
}
