package tools

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGrep(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("grep"); err != nil {
		t.Skip("grep not available")
	}
}

func TestGrepCodeStripsSandboxPrefix(t *testing.T) {
	requireGrep(t)
	root := sandbox(t)
	tool := &GrepCodeTool{Root: root}

	out, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "Header", "file_pattern": "src/*.jsx"})
	require.NoError(t, err)
	assert.Contains(t, out, "App.jsx:5:  return <Header />;")
	assert.Contains(t, out, "components/Header.jsx:1:export const Header")
	assert.NotContains(t, out, root)
}

func TestGrepCodeNoMatches(t *testing.T) {
	requireGrep(t)
	tool := &GrepCodeTool{Root: sandbox(t)}
	out, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "doesNotExist"})
	require.NoError(t, err)
	assert.Equal(t, "No matches found for pattern: doesNotExist", out)
}

func TestGrepCodeMatchesParenthesesLiterally(t *testing.T) {
	requireGrep(t)
	root := t.TempDir()
	writeFile(t, root, "App.jsx", "function App() {\n  const [n, setN] = useState(0)\n  return n\n}\n")
	tool := &GrepCodeTool{Root: root}

	for pattern, want := range map[string]string{
		"App(":      "App.jsx:1:function App() {",
		"useState(": "App.jsx:2:  const [n, setN] = useState(0)",
		"App() {":   "App.jsx:1:function App() {",
	} {
		out, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": pattern})
		require.NoError(t, err, pattern)
		assert.Contains(t, out, want, pattern)
	}
}

func TestGrepCodeReportsInvalidPattern(t *testing.T) {
	requireGrep(t)
	root := t.TempDir()
	writeFile(t, root, "App.jsx", "function App() {}\n")
	tool := &GrepCodeTool{Root: root}

	out, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": `App\(`})
	require.Error(t, err)
	assert.Empty(t, out)
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Contains(t, err.Error(), "Invalid search pattern:")
	assert.NotContains(t, err.Error(), "No matches found")
}

func TestGrepCodeTruncatesLargeOutput(t *testing.T) {
	requireGrep(t)
	root := t.TempDir()
	writeFile(t, root, "big.js", strings.Repeat("const needle = 'xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx';\n", 400))
	tool := &GrepCodeTool{Root: root}
	out, err := tool.Execute(context.Background(), map[string]interface{}{"pattern": "needle"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "\n... (truncated, too many results)"))
	assert.Len(t, []rune(strings.TrimSuffix(out, "\n... (truncated, too many results)")), maxGrepOutput)
}

func TestSearchSymbolDefinition(t *testing.T) {
	requireGrep(t)
	root := sandbox(t)
	writeFile(t, root, "styles.css", "function Header() {}\n")
	tool := &SearchSymbolTool{Root: root}

	out, err := tool.Execute(context.Background(), map[string]interface{}{"symbol": "Header", "search_type": "definition"})
	require.NoError(t, err)
	assert.Contains(t, out, "components/Header.jsx:1:export const Header")
	assert.NotContains(t, out, "styles.css")
}

func TestSymbolPattern(t *testing.T) {
	assert.Equal(t, `function\s+App|const\s+App\s*=|class\s+App|export.*function\s+App|export.*const\s+App`, SymbolPattern("App", "definition"))
	assert.Equal(t, `\$store`, SymbolPattern("$store", "usage"))
}

func TestExpandBraces(t *testing.T) {
	assert.Equal(t, []string{"*.js", "*.jsx", "*.ts", "*.tsx"}, expandBraces("*.{js,jsx,ts,tsx}"))
	assert.Equal(t, []string{"*.css"}, expandBraces("*.css"))
	assert.Equal(t, []string{"a.x1", "a.x2", "b.x1", "b.x2"}, expandBraces("{a,b}.{x1,x2}"))
}
