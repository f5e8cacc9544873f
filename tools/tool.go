// Package tools implements the exploration and editing tools the explorative
// workflow exposes to the model. Tools operate on a sandbox root and report
// results as plain text.
package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lexcodex/reactcoder/agents/pattern"
)

// ToolParameter describes one argument accepted by a tool. Example is a JSON
// literal shown to the model in the tool catalogue.
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Example     string
}

// Tool is a single capability the model can invoke by name.
type Tool interface {
	Name() string
	Description() string
	Category() string
	Parameters() []ToolParameter
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// Failure is an expected tool error. Its message is shown to the model
// verbatim after an "ERROR: " prefix.
type Failure struct {
	msg string
}

func (f *Failure) Error() string { return f.msg }

func failf(format string, args ...interface{}) error {
	return &Failure{msg: fmt.Sprintf(format, args...)}
}

// resolve joins a workflow-relative path onto root, refusing paths that
// would leave the sandbox.
func resolve(root, rel string) (string, error) {
	full, ok := pattern.Within(root, rel)
	if !ok {
		return "", failf("Path escapes sandbox: %s", rel)
	}
	return full, nil
}

func stringArg(args map[string]interface{}, key, def string) string {
	v, ok := args[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func intArg(args map[string]interface{}, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, failf("Invalid %s: %q", key, n)
		}
		return parsed, nil
	default:
		return 0, failf("Invalid %s: %v", key, v)
	}
}
