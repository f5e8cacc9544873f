package pattern

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"":                       ".",
		".":                      ".",
		"src":                    ".",
		"src/":                   ".",
		"/src/":                  ".",
		"src/App.jsx":            "App.jsx",
		`src\components\Nav.jsx`: "components/Nav.jsx",
		"components/Header.jsx":  "components/Header.jsx",
		"/components/":           "/components/",
		"srcfoo/App.jsx":         "srcfoo/App.jsx",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePath(in), in)
	}
}

func TestNormalizeFilePattern(t *testing.T) {
	cases := map[string]string{
		"":                     "*",
		"*":                    "*",
		"*.jsx":                "*.jsx",
		"src/*.css":            "*.css",
		"src/components/*.tsx": "*.tsx",
		`src\styles\*.scss`:    "*.scss",
		"src/":                 "src",
		"/":                    "*",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeFilePattern(in), in)
	}
}

func TestPreviousInstructionsBlock(t *testing.T) {
	assert.Equal(t, "", PreviousInstructionsBlock(nil))
	assert.Equal(t,
		"PREVIOUS USER COMMANDS (for context; current task is below):\n- make header blue\n- add footer",
		PreviousInstructionsBlock([]string{"make header blue", "add footer"}))
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	full, ok := Within(root, "components/Button.jsx")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "components", "Button.jsx"), full)

	_, ok = Within(root, "../escape.js")
	assert.False(t, ok)
	_, ok = Within(root, "components/../../escape.js")
	assert.False(t, ok)
	_, ok = Within(root, "components/../App.jsx")
	assert.True(t, ok)
}
