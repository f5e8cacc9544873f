package agents

import (
	"log/slog"
	"time"

	"github.com/lexcodex/reactcoder/agents/explorative"
	"github.com/lexcodex/reactcoder/agents/simple"
	"github.com/lexcodex/reactcoder/framework"
)

// Dependencies are the collaborators shared by the built-in workflows.
type Dependencies struct {
	Model         framework.ModelInvoker
	Transcripts   explorative.TranscriptWriter
	Logger        *slog.Logger
	Telemetry     framework.Telemetry
	MaxIterations int
	GrepTimeout   time.Duration
}

// DefaultRegistry registers the built-in workflows: simple_modification and
// explorative_modification.
func DefaultRegistry(deps Dependencies) *Registry {
	registry := NewRegistry()
	registry.MustRegister(func() framework.Workflow {
		return simple.New(deps.Model, deps.Logger)
	})
	registry.MustRegister(func() framework.Workflow {
		return explorative.New(deps.Model,
			explorative.WithLogger(deps.Logger),
			explorative.WithTranscriptWriter(deps.Transcripts),
			explorative.WithTelemetry(deps.Telemetry),
			explorative.WithMaxIterations(deps.MaxIterations),
			explorative.WithGrepTimeout(deps.GrepTimeout),
		)
	})
	return registry
}
