package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lexcodex/reactcoder/agents/pattern"
	"github.com/lexcodex/reactcoder/framework"
)

// DefaultWorkflow is chosen whenever routing cannot produce a valid name.
const DefaultWorkflow = "simple_modification"

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/agents")

// Router asks the model to classify an instruction onto a registered
// workflow. It never fails: every problem falls back to the default name.
type Router struct {
	Registry  *Registry
	Model     framework.ModelInvoker
	Default   string
	Logger    *slog.Logger
	Telemetry framework.Telemetry
}

// NewRouter builds a router over registry. model is typically a
// temperature-zero invoker.
func NewRouter(registry *Registry, model framework.ModelInvoker, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{Registry: registry, Model: model, Default: DefaultWorkflow, Logger: logger}
}

// SelectWorkflow returns the name of the workflow that should handle
// instruction.
func (r *Router) SelectWorkflow(ctx context.Context, instruction string, session *framework.Session) (name string) {
	ctx, span := tracer.Start(ctx, "router.SelectWorkflow")
	defer span.End()
	outcome := "selected"
	defer func() {
		if rec := recover(); rec != nil {
			r.Logger.Warn("router failed; using default", "error", rec)
			name, outcome = r.fallback(), "error"
		}
		span.SetAttributes(attribute.String("router.workflow", name), attribute.String("router.outcome", outcome))
		RecordRouterSelection(name, outcome)
		event := framework.Event{Type: framework.EventRouterDecision, Workflow: name, Message: outcome}
		if session != nil {
			event.SessionID = session.ID
		}
		framework.EmitTo(r.Telemetry, event)
	}()

	var options []WorkflowOption
	if r.Registry != nil {
		options = r.Registry.Options()
	}
	if len(options) == 0 || r.Model == nil {
		r.Logger.Warn("no workflows registered; using default")
		outcome = "no_workflows"
		return r.fallback()
	}

	response, err := r.Model.Invoke(ctx, RouterPrompt(instruction, options), session)
	if err != nil {
		r.Logger.Warn("router failed; using default", "error", err)
		outcome = "error"
		return r.fallback()
	}
	var parsed map[string]interface{}
	if err := pattern.DecodeJSON(pattern.StripCodeFence(response), &parsed, "router response"); err != nil {
		r.Logger.Warn("router response was not valid JSON; using default", "error", err)
		outcome = "parse_error"
		return r.fallback()
	}
	choice, _ := parsed["workflow"].(string)
	for _, opt := range options {
		if choice != "" && opt.Name == choice {
			reason, _ := parsed["reason"].(string)
			r.Logger.Info("router selected workflow", "workflow", choice, "reason", reason)
			return choice
		}
	}
	r.Logger.Warn("router returned unknown or missing workflow name; using default", "workflow", parsed["workflow"])
	outcome = "unknown_name"
	return r.fallback()
}

func (r *Router) fallback() string {
	if r.Default == "" {
		return DefaultWorkflow
	}
	return r.Default
}

// RouterPrompt renders the classification prompt for instruction.
func RouterPrompt(instruction string, options []WorkflowOption) string {
	lines := make([]string, len(options))
	names := make([]string, len(options))
	for i, opt := range options {
		lines[i] = fmt.Sprintf("- %s: %s (complexity: %s)", opt.Name, opt.Description, opt.Complexity)
		names[i] = opt.Name
	}
	return fmt.Sprintf(`You are a router for a code-editing system. Given the user's instruction, choose exactly one workflow.

User instruction: "%s"

Available workflows:
%s

Respond with a JSON object only, no other text:
{"workflow": "<name>", "reason": "<one short sentence>"}

Use exactly one of these workflow names: %s.`, instruction, strings.Join(lines, "\n"), strings.Join(names, ", "))
}
