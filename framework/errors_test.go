package framework

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorTruncatesRaw(t *testing.T) {
	raw := strings.Repeat("x", 1200)
	err := NewParseError("invalid JSON", raw, nil)
	assert.Len(t, err.Raw, MaxRawResponse)
	assert.Equal(t, "invalid JSON", err.Error())
}

func TestParseErrorUnwrap(t *testing.T) {
	var target any
	jsonErr := json.Unmarshal([]byte("{oops"), &target)
	require.Error(t, jsonErr)

	wrapped := fmt.Errorf("identify files: %w", NewParseError("invalid JSON", "{oops", jsonErr))
	var pe *ParseError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, "{oops", pe.Raw)

	var syntaxErr *json.SyntaxError
	assert.True(t, errors.As(wrapped, &syntaxErr))
}

func TestTruncateCountsCharacters(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo wörld", 5))
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestDescriptorValidate(t *testing.T) {
	ok := Descriptor{WorkflowName: "w", WorkflowDescription: "d", Tier: TierSimple}
	assert.NoError(t, ok.Validate())

	cases := map[string]Descriptor{
		"name":        {WorkflowDescription: "d", Tier: TierSimple},
		"description": {WorkflowName: "w", Tier: TierSimple},
		"complexity":  {WorkflowName: "w", WorkflowDescription: "d", Tier: "extreme"},
	}
	for field, d := range cases {
		err := d.Validate()
		var de *DescriptorError
		if assert.True(t, errors.As(err, &de), field) {
			assert.Equal(t, field, de.Field)
		}
	}
}
