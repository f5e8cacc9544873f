// Package service owns editing sessions: it provisions sandboxes, routes each
// instruction to a workflow, and reports the resulting file changes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/sandbox"
)

// ErrSessionNotFound is returned for unknown or cleaned-up session ids.
var ErrSessionNotFound = errors.New("invalid or expired session id")

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/service")

// Sandboxes provisions and inspects git-tracked working copies.
type Sandboxes interface {
	Provision(ctx context.Context, id, source string) (string, error)
	Diff(ctx context.Context, path string) ([]sandbox.FileChange, error)
	Commit(ctx context.Context, path, message string) error
	Remove(path string) error
}

// Workflows constructs workflows by name.
type Workflows interface {
	Get(name string) (framework.Workflow, error)
	Has(name string) bool
}

// Router picks a workflow name for an instruction. It must not fail.
type Router interface {
	SelectWorkflow(ctx context.Context, instruction string, session *framework.Session) string
}

// InstructionResult is what one processed instruction produced. Token
// counts are cumulative for the session.
type InstructionResult struct {
	Changes      []sandbox.FileChange `json:"changes"`
	InputTokens  int                  `json:"input_tokens"`
	OutputTokens int                  `json:"output_tokens"`
	Workflow     string               `json:"workflow"`
}

// Editor keeps the in-memory session table.
type Editor struct {
	sandboxes    Sandboxes
	workflows    Workflows
	router       Router
	projectsRoot string
	logger       *slog.Logger
	telemetry    framework.Telemetry

	mu       sync.RWMutex
	sessions map[string]*framework.Session
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) { e.logger = logger }
}

// WithTelemetry emits workflow_start and workflow_finish events.
func WithTelemetry(t framework.Telemetry) Option {
	return func(e *Editor) { e.telemetry = t }
}

// WithProjectsRoot resolves relative project names against root.
func WithProjectsRoot(root string) Option {
	return func(e *Editor) { e.projectsRoot = root }
}

// NewEditor builds an editor.
func NewEditor(sandboxes Sandboxes, workflows Workflows, router Router, opts ...Option) *Editor {
	e := &Editor{
		sandboxes: sandboxes,
		workflows: workflows,
		router:    router,
		sessions:  make(map[string]*framework.Session),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// InitSession provisions a sandbox for project and registers a session.
// workflow pins the session to a registered workflow; an empty or unknown
// name leaves the choice to the router.
func (e *Editor) InitSession(ctx context.Context, project, workflow string) (*framework.Session, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	path, err := e.sandboxes.Provision(ctx, id.String(), e.projectPath(project))
	if err != nil {
		return nil, err
	}
	session := framework.NewSession(id.String(), path)
	if workflow != "" {
		if e.workflows.Has(workflow) {
			session.SetWorkflow(workflow)
		} else {
			e.logger.Warn("ignoring unknown workflow override", "workflow", workflow)
		}
	}
	e.mu.Lock()
	e.sessions[session.ID] = session
	e.mu.Unlock()
	e.logger.Info("session initialised", "session_id", session.ID, "project", project, "path", path)
	return session, nil
}

// Session returns a live session.
func (e *Editor) Session(id string) (*framework.Session, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.sessions[id]
	return s, ok
}

// ProcessInstruction runs one instruction on a session. Instructions on the
// same session are serialised. The workflow is chosen once per session and
// reused afterwards. When files changed they are committed as
// "AI: <instruction>".
func (e *Editor) ProcessInstruction(ctx context.Context, id, instruction string) (result *InstructionResult, err error) {
	session, ok := e.Session(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	done := session.BeginTurn()
	defer done()

	ctx, span := tracer.Start(ctx, "service.ProcessInstruction")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	session.RecordInstruction(instruction)
	name := session.WorkflowName()
	if name == "" {
		name = e.router.SelectWorkflow(ctx, instruction, session)
		session.SetWorkflow(name)
	}
	span.SetAttributes(attribute.String("session.id", id), attribute.String("workflow", name))

	workflow, err := e.workflows.Get(name)
	if err != nil {
		return nil, err
	}
	framework.EmitTo(e.telemetry, framework.Event{Type: framework.EventWorkflowStart, SessionID: id, Workflow: name, Message: instruction})
	start := time.Now()
	err = workflow.ApplyChanges(ctx, session, instruction)
	finish := framework.Event{
		Type:      framework.EventWorkflowFinish,
		SessionID: id,
		Workflow:  name,
		Metadata:  map[string]interface{}{"duration_ms": time.Since(start).Milliseconds()},
	}
	if err != nil {
		finish.Message = err.Error()
	}
	framework.EmitTo(e.telemetry, finish)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", name, err)
	}

	changes, err := e.sandboxes.Diff(ctx, session.Path)
	if err != nil {
		return nil, fmt.Errorf("diff sandbox: %w", err)
	}
	if len(changes) > 0 {
		if err := e.sandboxes.Commit(ctx, session.Path, "AI: "+instruction); err != nil {
			return nil, fmt.Errorf("commit sandbox: %w", err)
		}
	}
	input, output := session.Usage()
	e.logger.Info("instruction processed", "session_id", id, "workflow", name, "files_changed", len(changes))
	return &InstructionResult{Changes: changes, InputTokens: input, OutputTokens: output, Workflow: name}, nil
}

// CleanupSession removes the sandbox and forgets the session.
func (e *Editor) CleanupSession(id string) error {
	e.mu.Lock()
	session, ok := e.sessions[id]
	delete(e.sessions, id)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	done := session.BeginTurn()
	defer done()
	e.logger.Info("cleaning up session", "session_id", id)
	return e.sandboxes.Remove(session.Path)
}

func (e *Editor) projectPath(project string) string {
	if filepath.IsAbs(project) || e.projectsRoot == "" {
		return project
	}
	return filepath.Join(e.projectsRoot, project)
}
