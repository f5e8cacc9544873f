package pattern

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/reactcoder/framework"
)

func TestExtractJSONFromProseWithFence(t *testing.T) {
	response := "Sure! ```json\n{\"done\": true}\n``` hope that helps"
	assert.Equal(t, `{"done": true}`, ExtractJSON(response, DefaultExtractThreshold))
}

func TestExtractJSONPlainObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, ExtractJSON(`  {"a": 1}  `, DefaultExtractThreshold))
}

func TestExtractJSONPrefersLongestCandidate(t *testing.T) {
	response := "```json\n{\"x\": 1}\n```\nthen\n```json\n{\"tool_calls\": [{\"tool\": \"list_files\"}]}\n```"
	assert.Equal(t, `{"tool_calls": [{"tool": "list_files"}]}`, ExtractJSON(response, DefaultExtractThreshold))
}

func TestExtractJSONBalancedBraces(t *testing.T) {
	response := `I will call {"tool_calls": [{"tool": "grep_code", "parameters": {"pattern": "x"}}]} and then stop.`
	assert.Equal(t, `{"tool_calls": [{"tool": "grep_code", "parameters": {"pattern": "x"}}]}`, ExtractJSON(response, DefaultExtractThreshold))
}

func TestExtractJSONSmallBlockBelowThreshold(t *testing.T) {
	response := "This is a long explanation that mentions {} in passing but carries no real payload at all."
	assert.Equal(t, response, ExtractJSON(response, DefaultExtractThreshold))
}

func TestExtractJSONNoJSON(t *testing.T) {
	assert.Equal(t, "no json here", ExtractJSON("  no json here \n", DefaultExtractThreshold))
	assert.Equal(t, "", ExtractJSON("   ", DefaultExtractThreshold))
}

func TestExtractJSONUnclosedFenceFallsBack(t *testing.T) {
	assert.Equal(t, "", ExtractJSON("```json", DefaultExtractThreshold))
}

func TestExtractJSONIsIdempotent(t *testing.T) {
	inputs := []string{
		"Sure! ```json\n{\"done\": true}\n``` hope that helps",
		`{"a": {"b": 2}}`,
		"plain text",
		"```\n[1, 2, 3]\n```",
	}
	for _, in := range inputs {
		once := ExtractJSON(in, DefaultExtractThreshold)
		assert.Equal(t, once, ExtractJSON(once, DefaultExtractThreshold), in)
	}
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `["src/App.jsx"]`, StripCodeFence("```json\n[\"src/App.jsx\"]\n```"))
	assert.Equal(t, `{"workflow": "x"}`, StripCodeFence("```\n{\"workflow\": \"x\"}```"))
	assert.Equal(t, `[1]`, StripCodeFence("  [1] "))
	assert.Equal(t, "", StripCodeFence("```"))
}

func TestDecodeJSONParseError(t *testing.T) {
	raw := "{" + strings.Repeat("x", 900)
	var out map[string]any
	err := DecodeJSON(raw, &out, "model response")
	require.Error(t, err)

	var pe *framework.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Len(t, pe.Raw, framework.MaxRawResponse)
	assert.Contains(t, pe.Error(), "invalid JSON in model response")
}
