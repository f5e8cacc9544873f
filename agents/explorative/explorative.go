// Package explorative implements the tool-driven modification workflow. The
// model explores the sandbox with search and read tools and edits files with
// exact-match replacements, one JSON response per iteration.
package explorative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lexcodex/reactcoder/agents/pattern"
	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/framework/codebase"
	"github.com/lexcodex/reactcoder/tools"
)

// Name is the registry key of the workflow.
const Name = "explorative_modification"

// DefaultMaxIterations bounds the number of model calls per instruction.
const DefaultMaxIterations = 25

const initialTreeDepth = 3

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/agents/explorative")

// Descriptor is the static metadata advertised to the router.
var Descriptor = framework.Descriptor{
	WorkflowName:        Name,
	WorkflowDescription: "Advanced workflow using tool-based exploration. LLM explores codebase with grep/search tools and makes targeted edits. Best for complex multi-file changes.",
	Tier:                framework.TierAdvanced,
}

// TranscriptWriter persists the flattened transcript of a run, replacing any
// earlier transcript of the same session.
type TranscriptWriter interface {
	WriteTranscript(sessionID, content string) error
}

// Workflow runs the bounded exploration loop. An instance keeps the record of
// its most recent run for inspection.
type Workflow struct {
	framework.Descriptor
	Model         framework.ModelInvoker
	Transcripts   TranscriptWriter
	Logger        *slog.Logger
	Telemetry     framework.Telemetry
	MaxIterations int
	GrepTimeout   time.Duration

	mu         sync.Mutex
	transcript Transcript
	executions []tools.ExecutionRecord
	edits      []tools.EditRecord
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithLogger sets the logger. The run summary is logged at Info.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) { w.Logger = logger }
}

// WithTranscriptWriter persists the transcript after every run.
func WithTranscriptWriter(tw TranscriptWriter) Option {
	return func(w *Workflow) { w.Transcripts = tw }
}

// WithTelemetry forwards tool events.
func WithTelemetry(t framework.Telemetry) Option {
	return func(w *Workflow) { w.Telemetry = t }
}

// WithMaxIterations overrides DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(w *Workflow) { w.MaxIterations = n }
}

// WithGrepTimeout overrides the search tools' timeout.
func WithGrepTimeout(d time.Duration) Option {
	return func(w *Workflow) { w.GrepTimeout = d }
}

// New builds the workflow around a model invoker.
func New(model framework.ModelInvoker, opts ...Option) *Workflow {
	w := &Workflow{Descriptor: Descriptor, Model: model, MaxIterations: DefaultMaxIterations}
	for _, opt := range opts {
		opt(w)
	}
	if w.Logger == nil {
		w.Logger = slog.Default()
	}
	if w.MaxIterations <= 0 {
		w.MaxIterations = DefaultMaxIterations
	}
	return w
}

type toolCall struct {
	Tool       string                 `json:"tool"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ApplyChanges implements framework.Workflow. Malformed model responses and
// an exhausted iteration budget end the run without an error; edits already
// applied stay on disk. Model failures and cancellation are returned after
// the summary and transcript have been written.
func (w *Workflow) ApplyChanges(ctx context.Context, session *framework.Session, instruction string) (err error) {
	ctx, span := tracer.Start(ctx, "explorative.ApplyChanges")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", session.ID))

	root := session.SourceRoot()
	opts := []tools.Option{tools.WithLogger(w.Logger), tools.WithTelemetry(w.Telemetry, session.ID)}
	if w.GrepTimeout > 0 {
		opts = append(opts, tools.WithGrepTimeout(w.GrepTimeout))
	}
	toolbox := tools.NewToolbox(root, opts...)

	transcript := Transcript{{Role: RoleUser, Content: InitialPrompt(session, instruction, toolbox)}}
	iterations := 0
	err = w.loop(ctx, session, toolbox, &transcript, &iterations)

	w.mu.Lock()
	w.transcript = transcript
	w.executions = toolbox.Executions()
	w.edits = toolbox.Edits()
	w.mu.Unlock()

	span.SetAttributes(
		attribute.Int("explorative.iterations", iterations),
		attribute.Int("explorative.tool_calls", len(toolbox.Executions())),
		attribute.Int("explorative.edits", len(toolbox.Edits())),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	w.Logger.Info(Summary(toolbox.Executions()), "session_id", session.ID)
	if w.Transcripts != nil {
		if werr := w.Transcripts.WriteTranscript(session.ID, transcript.Render()); werr != nil {
			w.Logger.Warn("write workflow transcript failed", "session_id", session.ID, "error", werr)
		}
	}
	return err
}

func (w *Workflow) loop(ctx context.Context, session *framework.Session, toolbox *tools.Toolbox, transcript *Transcript, iterations *int) error {
	for i := 0; i < w.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		*iterations = i + 1
		w.Logger.Debug("exploration iteration", "session_id", session.ID, "iteration", i+1, "max", w.MaxIterations)

		response, err := w.Model.Invoke(ctx, transcript.Render(), session)
		if err != nil {
			return err
		}
		var parsed map[string]json.RawMessage
		if err := pattern.DecodeJSON(pattern.ExtractJSON(response, pattern.DefaultExtractThreshold), &parsed, "exploration response"); err != nil {
			w.Logger.Error("failed to parse model response", "session_id", session.ID, "error", err)
			return nil
		}

		if truthy(parsed["done"]) {
			var message string
			_ = json.Unmarshal(parsed["message"], &message)
			w.Logger.Info("exploration finished", "session_id", session.ID, "iterations", i+1, "message", message)
			*transcript = append(*transcript, Turn{Role: RoleAssistant, Content: response})
			return nil
		}

		var calls []toolCall
		if rawCalls, ok := parsed["tool_calls"]; ok {
			if err := json.Unmarshal(rawCalls, &calls); err != nil {
				w.Logger.Warn("malformed tool_calls", "session_id", session.ID, "error", err)
				return nil
			}
		}
		if len(calls) == 0 {
			w.Logger.Warn("model neither called tools nor marked done", "session_id", session.ID)
			return nil
		}

		results := make([]ToolResult, 0, len(calls))
		for _, call := range calls {
			results = append(results, ToolResult{Tool: call.Tool, Result: toolbox.Execute(ctx, call.Tool, call.Parameters)})
		}
		*transcript = append(*transcript,
			Turn{Role: RoleAssistant, Content: response},
			Turn{Role: RoleUser, Content: FormatToolResults(results)},
		)
	}
	w.Logger.Warn("reached max iterations", "session_id", session.ID, "max", w.MaxIterations)
	return nil
}

// Transcript returns the conversation of the most recent run.
func (w *Workflow) Transcript() Transcript {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append(Transcript(nil), w.transcript...)
}

// ToolExecutions returns the tool calls of the most recent run.
func (w *Workflow) ToolExecutions() []tools.ExecutionRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]tools.ExecutionRecord(nil), w.executions...)
}

// Edits returns the successful edits of the most recent run.
func (w *Workflow) Edits() []tools.EditRecord {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]tools.EditRecord(nil), w.edits...)
}

// truthy treats a JSON value the way a loosely typed reader would: false,
// null, zero, "" and empty containers are false.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	}
	return false
}

// InitialPrompt builds the first user turn: task, prior instructions, a
// shallow tree of the source root and the tool catalogue.
func InitialPrompt(session *framework.Session, instruction string, toolbox *tools.Toolbox) string {
	tree := codebase.RenderSimple(codebase.Tree(session.SourceRoot(), codebase.TreeOptions{MaxDepth: initialTreeDepth}))
	previous := ""
	if block := pattern.PreviousInstructionsBlock(session.PreviousInstructions()); block != "" {
		previous = "\n\n" + block + "\n"
	}
	return fmt.Sprintf(promptTemplate, previous, instruction, tree, toolbox.Catalogue())
}

const promptTemplate = `You are an expert code modification agent working on a React codebase.
%s
TASK: %s

Use relative paths from the project root in all tools (e.g. src/App.jsx, components/Header.jsx).

INITIAL FILE TREE:
%s

AVAILABLE TOOLS:
You can use the following tools to explore and modify the codebase. Return your response as JSON.

%s

RESPONSE FORMAT:
You must respond with valid JSON in one of two formats:

Format 1 - Using tools:
{
  "thought": "explanation of what you're doing",
  "tool_calls": [
    {"tool": "tool_name", "parameters": {...} },
    {"tool": "another_tool", "parameters": {...} }
  ]
}

Format 2 - When finished:
{
  "done": true,
  "message": "summary of changes made"
}

WORKFLOW SUGGESTIONS:
1. Start by exploring the codebase with list_files, grep_code, or get_file_structure
2. Read specific file sections with read_file_lines when you need to see implementation
3. Use search_symbol to find function definitions and usages
4. Once you understand the code, use apply_edit to make targeted changes
5. When all changes are complete, return {"done": true}

IMPORTANT:
- Be thorough but efficient - explore only what you need
- Use apply_edit for all modifications (don't suggest changes, make them)
- apply_edit uses exact string matching - make sure old_str matches exactly
- You can make multiple edits in one response
- When done, summarize what you changed

Begin by exploring the codebase to understand what needs to change.`
