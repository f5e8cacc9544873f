package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lexcodex/reactcoder/agents/pattern"
	"github.com/lexcodex/reactcoder/framework"
)

const (
	// DefaultGrepTimeout bounds a single grep invocation.
	DefaultGrepTimeout = 5 * time.Second
	// maxGrepOutput caps the characters of grep output returned to the model.
	maxGrepOutput = 5000
	scriptFiles   = "*.{js,jsx,ts,tsx}"
)

// GrepCodeTool runs a recursive basic-regex grep over the sandbox, so
// characters such as ( and { match literally.
type GrepCodeTool struct {
	Root    string
	Timeout time.Duration
}

func (t *GrepCodeTool) Name() string        { return "grep_code" }
func (t *GrepCodeTool) Description() string { return "Search for text patterns in files" }
func (t *GrepCodeTool) Category() string    { return "explore" }
func (t *GrepCodeTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "pattern", Type: "string", Required: true, Example: `"search text or regex"`},
		{Name: "file_pattern", Type: "string", Example: `"*.jsx"`},
		{Name: "context_lines", Type: "int", Example: "2"},
	}
}

func (t *GrepCodeTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	expr := stringArg(args, "pattern", "")
	if expr == "" {
		return "", failf("pattern is required")
	}
	contextLines, err := intArg(args, "context_lines", 0)
	if err != nil {
		return "", err
	}
	return grep(ctx, grepRequest{
		Root:         t.Root,
		Pattern:      expr,
		FilePattern:  pattern.NormalizeFilePattern(stringArg(args, "file_pattern", "*")),
		ContextLines: contextLines,
		Timeout:      t.Timeout,
	})
}

// SearchSymbolTool finds where a symbol is defined or used in script files.
type SearchSymbolTool struct {
	Root    string
	Timeout time.Duration
}

func (t *SearchSymbolTool) Name() string { return "search_symbol" }
func (t *SearchSymbolTool) Description() string {
	return "Find where a function/variable is defined or used"
}
func (t *SearchSymbolTool) Category() string { return "explore" }
func (t *SearchSymbolTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "symbol", Type: "string", Required: true, Example: `"functionName"`},
		{Name: "search_type", Type: "string", Example: `"definition" or "usage"`},
	}
}

func (t *SearchSymbolTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	symbol := stringArg(args, "symbol", "")
	if symbol == "" {
		return "", failf("symbol is required")
	}
	return grep(ctx, grepRequest{
		Root:         t.Root,
		Pattern:      SymbolPattern(symbol, stringArg(args, "search_type", "definition")),
		FilePattern:  scriptFiles,
		ContextLines: 2,
		Extended:     true,
		Timeout:      t.Timeout,
	})
}

// SymbolPattern builds the extended regex used by search_symbol. Definition
// searches match function, const, class and exported declarations; any other
// search type matches the literal symbol.
func SymbolPattern(symbol, searchType string) string {
	quoted := regexp.QuoteMeta(symbol)
	if searchType != "definition" {
		return quoted
	}
	return strings.Join([]string{
		`function\s+` + quoted,
		`const\s+` + quoted + `\s*=`,
		`class\s+` + quoted,
		`export.*function\s+` + quoted,
		`export.*const\s+` + quoted,
	}, "|")
}

type grepRequest struct {
	Root         string
	Pattern      string
	FilePattern  string
	ContextLines int
	Extended     bool
	Timeout      time.Duration
}

func grep(ctx context.Context, req grepRequest) (string, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultGrepTimeout
	}
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return "", err
	}
	args := []string{"-r", "-n"}
	if req.Extended {
		args = append(args, "-E")
	}
	if req.ContextLines > 0 {
		n := strconv.Itoa(req.ContextLines)
		args = append(args, "-A", n, "-B", n)
	}
	for _, include := range expandBraces(req.FilePattern) {
		args = append(args, "--include", include)
	}
	args = append(args, "-e", req.Pattern, root)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	cmd := exec.CommandContext(runCtx, "grep", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", failf("Search timed out")
	}
	var exitErr *exec.ExitError
	if runErr != nil && !errors.As(runErr, &exitErr) {
		return "", failf("%v", runErr)
	}
	output := stdout.String()
	// Exit status 1 means no match; 2 is a bad pattern or unreadable input.
	if exitErr != nil && exitErr.ExitCode() == 2 && output == "" {
		return "", failf("Invalid search pattern: %s", strings.TrimSpace(stderr.String()))
	}

	if output == "" {
		return fmt.Sprintf("No matches found for pattern: %s", req.Pattern), nil
	}
	prefix := root + string(filepath.Separator)
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	output = strings.Join(lines, "\n")
	if utf8.RuneCountInString(output) > maxGrepOutput {
		output = framework.Truncate(output, maxGrepOutput) + "\n... (truncated, too many results)"
	}
	return output, nil
}

// expandBraces expands shell-style alternatives such as "*.{js,jsx}" into
// separate globs, since grep's --include does not understand braces.
func expandBraces(glob string) []string {
	open := strings.IndexByte(glob, '{')
	if open < 0 {
		return []string{glob}
	}
	closeIdx := strings.IndexByte(glob[open:], '}')
	if closeIdx < 0 {
		return []string{glob}
	}
	closeIdx += open
	prefix, body, suffix := glob[:open], glob[open+1:closeIdx], glob[closeIdx+1:]
	var out []string
	for _, alt := range strings.Split(body, ",") {
		for _, rest := range expandBraces(suffix) {
			out = append(out, prefix+alt+rest)
		}
	}
	return out
}
