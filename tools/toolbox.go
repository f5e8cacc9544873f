package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lexcodex/reactcoder/framework"
)

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/tools")

// ExecutionRecord captures one tool call for the run summary. Category is
// empty for unknown tools.
type ExecutionRecord struct {
	Tool     string        `json:"tool"`
	Category string        `json:"category,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Toolbox binds the six workflow tools to one sandbox root and records every
// call made through it. A Toolbox serves a single workflow invocation.
type Toolbox struct {
	root        string
	registry    *ToolRegistry
	logger      *slog.Logger
	telemetry   framework.Telemetry
	sessionID   string
	grepTimeout time.Duration

	mu         sync.Mutex
	executions []ExecutionRecord
	edits      []EditRecord
}

// Option configures a Toolbox.
type Option func(*Toolbox)

// WithLogger sets the logger used for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Toolbox) { b.logger = logger }
}

// WithTelemetry emits tool_call/tool_result events.
func WithTelemetry(t framework.Telemetry, sessionID string) Option {
	return func(b *Toolbox) {
		b.telemetry = t
		b.sessionID = sessionID
	}
}

// WithGrepTimeout overrides DefaultGrepTimeout for grep-backed tools.
func WithGrepTimeout(d time.Duration) Option {
	return func(b *Toolbox) { b.grepTimeout = d }
}

// NewToolbox registers the workflow tools against root.
func NewToolbox(root string, opts ...Option) *Toolbox {
	b := &Toolbox{root: root, registry: NewToolRegistry(), grepTimeout: DefaultGrepTimeout}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	for _, tool := range []Tool{
		&ListFilesTool{Root: root},
		&GrepCodeTool{Root: root, Timeout: b.grepTimeout},
		&SearchSymbolTool{Root: root, Timeout: b.grepTimeout},
		&ReadFileLinesTool{Root: root},
		&FileStructureTool{Root: root},
		&ApplyEditTool{Root: root, OnEdit: b.recordEdit},
	} {
		b.registry.MustRegister(tool)
	}
	return b
}

// Tools returns the registered tools in catalogue order.
func (b *Toolbox) Tools() []Tool { return b.registry.All() }

// Execute runs a tool by name and returns its textual result. Failures never
// escape: unknown tools, tool errors and panics are rendered as "ERROR: ..."
// strings. Every call is timed and recorded.
func (b *Toolbox) Execute(ctx context.Context, name string, params map[string]interface{}) string {
	category := ""
	tool, known := b.registry.Get(name)
	if known {
		category = tool.Category()
	}
	ctx, span := tracer.Start(ctx, "tools.Execute", trace.WithAttributes(
		attribute.String("tool.name", name),
		attribute.String("tool.category", category),
	))
	defer span.End()

	framework.EmitTo(b.telemetry, framework.Event{
		Type:      framework.EventToolCall,
		SessionID: b.sessionID,
		Message:   name,
		Metadata:  map[string]interface{}{"parameters": params, "category": category},
	})
	start := time.Now()
	output := b.dispatch(ctx, name, params)
	elapsed := time.Since(start)

	b.mu.Lock()
	b.executions = append(b.executions, ExecutionRecord{Tool: name, Category: category, Duration: elapsed})
	b.mu.Unlock()

	metricName := name
	if !known {
		metricName = "unknown"
	}
	RecordToolCall(metricName, elapsed)
	failed := strings.HasPrefix(output, "ERROR:")
	if failed {
		span.SetStatus(codes.Error, output)
	}
	span.SetAttributes(attribute.Bool("tool.failed", failed), attribute.Int("tool.output_chars", len(output)))
	framework.EmitTo(b.telemetry, framework.Event{
		Type:      framework.EventToolResult,
		SessionID: b.sessionID,
		Message:   name,
		Metadata:  map[string]interface{}{"duration_ms": elapsed.Milliseconds(), "failed": failed},
	})
	return output
}

func (b *Toolbox) dispatch(ctx context.Context, name string, params map[string]interface{}) (output string) {
	tool, ok := b.registry.Get(name)
	if !ok {
		return fmt.Sprintf("ERROR: Unknown tool '%s'", name)
	}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("tool panicked", "tool", name, "panic", r)
			output = fmt.Sprintf("ERROR: Tool execution failed: %v", r)
		}
	}()
	if params == nil {
		params = map[string]interface{}{}
	}
	b.logger.Debug("executing tool", "tool", name, "parameters", params)
	result, err := tool.Execute(ctx, params)
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) {
			return "ERROR: " + failure.Error()
		}
		b.logger.Error("tool failed", "tool", name, "error", err)
		return fmt.Sprintf("ERROR: Tool execution failed: %v", err)
	}
	return result
}

func (b *Toolbox) recordEdit(edit EditRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.edits = append(b.edits, edit)
	b.logger.Info("applied edit", "file", edit.FilePath)
}

// Executions returns the calls made so far, in order.
func (b *Toolbox) Executions() []ExecutionRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ExecutionRecord(nil), b.executions...)
}

// Edits returns the successful edits made so far, in order.
func (b *Toolbox) Edits() []EditRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]EditRecord(nil), b.edits...)
}

// Catalogue renders the numbered tool list included in the exploration
// prompt.
func (b *Toolbox) Catalogue() string {
	var sb strings.Builder
	for i, tool := range b.registry.All() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   Parameters: %s", i+1, tool.Name(), tool.Description(), formatParameters(tool.Parameters()))
	}
	return sb.String()
}

func formatParameters(params []ToolParameter) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		part := fmt.Sprintf("%q: %s", p.Name, p.Example)
		if !p.Required {
			part += " (optional)"
		}
		parts = append(parts, part)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
