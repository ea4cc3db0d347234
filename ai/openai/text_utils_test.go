package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrubList(t *testing.T) {
	assert.Nil(t, scrubList(nil))
	assert.Nil(t, scrubList([]string{"", "  "}))
	assert.Equal(t, []string{"a", "b"}, scrubList([]string{" a ", "", "b"}))
}

func TestNormalizeTags(t *testing.T) {
	assert.Nil(t, normalizeTags(nil))
	assert.Equal(t,
		[]string{"battery-recycling", "go"},
		normalizeTags([]string{"Battery Recycling", "GO", "go", " "}))
}

func TestRepairJSON(t *testing.T) {
	t.Run("fixes missing opening quote on key", func(t *testing.T) {
		broken := `{"summary": "s", tags": ["a"]}`
		repaired := repairJSON(broken)

		var parsed map[string]any
		require.NoError(t, json.Unmarshal([]byte(repaired), &parsed))
		assert.Contains(t, parsed, "tags")
	})

	t.Run("leaves valid JSON unchanged", func(t *testing.T) {
		valid := `{"summary": "s", "tags": ["a"]}`
		assert.JSONEq(t, valid, repairJSON(valid))
	})
}

func TestValidatePayload(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p := &insightsPayload{Summary: "s", Tags: []string{"a"}}
		assert.NoError(t, validatePayload(p))
	})

	t.Run("empty summary", func(t *testing.T) {
		p := &insightsPayload{Tags: []string{"a"}}
		assert.ErrorIs(t, validatePayload(p), ErrSchemaViolation)
	})

	t.Run("no tags", func(t *testing.T) {
		p := &insightsPayload{Summary: "s"}
		assert.ErrorIs(t, validatePayload(p), ErrSchemaViolation)
	})
}
