package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/sandbox"
)

type fakeSandboxes struct {
	mu        sync.Mutex
	sources   []string
	changes   []sandbox.FileChange
	commits   []string
	removed   []string
	provision error
}

func (f *fakeSandboxes) Provision(ctx context.Context, id, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.provision != nil {
		return "", f.provision
	}
	f.sources = append(f.sources, source)
	return "/sandboxes/" + id, nil
}

func (f *fakeSandboxes) Diff(ctx context.Context, path string) ([]sandbox.FileChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changes, nil
}

func (f *fakeSandboxes) Commit(ctx context.Context, path, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, message)
	return nil
}

func (f *fakeSandboxes) Remove(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, path)
	return nil
}

type countingWorkflow struct {
	framework.Descriptor
	mu     sync.Mutex
	calls  int
	active int
	peak   int
	err    error
}

func (w *countingWorkflow) ApplyChanges(ctx context.Context, session *framework.Session, instruction string) error {
	w.mu.Lock()
	w.calls++
	w.active++
	if w.active > w.peak {
		w.peak = w.active
	}
	w.mu.Unlock()
	time.Sleep(time.Millisecond)
	session.AddUsage(10, 5)
	w.mu.Lock()
	w.active--
	w.mu.Unlock()
	return w.err
}

type fakeWorkflows map[string]*countingWorkflow

func (f fakeWorkflows) Get(name string) (framework.Workflow, error) {
	w, ok := f[name]
	if !ok {
		return nil, framework.ErrWorkflowNotFound
	}
	return w, nil
}

func (f fakeWorkflows) Has(name string) bool {
	_, ok := f[name]
	return ok
}

type fixedRouter struct {
	mu    sync.Mutex
	name  string
	calls int
}

func (r *fixedRouter) SelectWorkflow(ctx context.Context, instruction string, session *framework.Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.name
}

func newEditor(t *testing.T) (*Editor, *fakeSandboxes, fakeWorkflows, *fixedRouter) {
	t.Helper()
	boxes := &fakeSandboxes{}
	workflows := fakeWorkflows{
		"simple_modification":      {Descriptor: framework.Descriptor{WorkflowName: "simple_modification"}},
		"explorative_modification": {Descriptor: framework.Descriptor{WorkflowName: "explorative_modification"}},
	}
	router := &fixedRouter{name: "explorative_modification"}
	return NewEditor(boxes, workflows, router, WithProjectsRoot("/projects")), boxes, workflows, router
}

func TestInitSession(t *testing.T) {
	editor, boxes, _, _ := newEditor(t)

	session, err := editor.InitSession(context.Background(), "landing-page", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/projects/landing-page"}, boxes.sources)
	assert.Equal(t, "/sandboxes/"+session.ID, session.Path)
	assert.Empty(t, session.WorkflowName())
	got, ok := editor.Session(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)

	pinned, err := editor.InitSession(context.Background(), "/abs/project", "simple_modification")
	require.NoError(t, err)
	assert.Equal(t, "/abs/project", boxes.sources[1])
	assert.Equal(t, "simple_modification", pinned.WorkflowName())
	assert.NotEqual(t, session.ID, pinned.ID)

	unknown, err := editor.InitSession(context.Background(), "p", "rewrite_everything")
	require.NoError(t, err)
	assert.Empty(t, unknown.WorkflowName())
}

func TestInitSessionProvisionFailure(t *testing.T) {
	editor, boxes, _, _ := newEditor(t)
	boxes.provision = errors.New("project not found")
	_, err := editor.InitSession(context.Background(), "missing", "")
	assert.ErrorContains(t, err, "project not found")
}

func TestProcessInstructionRoutesOnceAndCommits(t *testing.T) {
	editor, boxes, workflows, router := newEditor(t)
	session, err := editor.InitSession(context.Background(), "p", "")
	require.NoError(t, err)
	boxes.changes = []sandbox.FileChange{{Filename: "src/App.jsx", Diff: "...", Added: 1}}

	result, err := editor.ProcessInstruction(context.Background(), session.ID, "add a footer")
	require.NoError(t, err)
	assert.Equal(t, "explorative_modification", result.Workflow)
	assert.Equal(t, boxes.changes, result.Changes)
	assert.Equal(t, 10, result.InputTokens)
	assert.Equal(t, 5, result.OutputTokens)
	assert.Equal(t, []string{"AI: add a footer"}, boxes.commits)

	boxes.changes = nil
	result, err = editor.ProcessInstruction(context.Background(), session.ID, "make it blue")
	require.NoError(t, err)
	assert.Equal(t, 20, result.InputTokens)
	assert.Equal(t, 1, router.calls)
	assert.Equal(t, 2, workflows["explorative_modification"].calls)
	assert.Len(t, boxes.commits, 1)
	assert.Equal(t, []string{"add a footer", "make it blue"}, session.Instructions())
}

func TestProcessInstructionPinnedWorkflowSkipsRouter(t *testing.T) {
	editor, _, workflows, router := newEditor(t)
	session, err := editor.InitSession(context.Background(), "p", "simple_modification")
	require.NoError(t, err)

	result, err := editor.ProcessInstruction(context.Background(), session.ID, "x")
	require.NoError(t, err)
	assert.Equal(t, "simple_modification", result.Workflow)
	assert.Zero(t, router.calls)
	assert.Equal(t, 1, workflows["simple_modification"].calls)
}

func TestProcessInstructionErrors(t *testing.T) {
	editor, boxes, workflows, _ := newEditor(t)
	_, err := editor.ProcessInstruction(context.Background(), "nope", "x")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	session, err := editor.InitSession(context.Background(), "p", "")
	require.NoError(t, err)
	parseErr := framework.NewParseError("model response for file list is not a JSON array", "{}", nil)
	workflows["explorative_modification"].err = parseErr
	boxes.changes = []sandbox.FileChange{{Filename: "a"}}

	_, err = editor.ProcessInstruction(context.Background(), session.ID, "x")
	var target *framework.ParseError
	assert.ErrorAs(t, err, &target)
	assert.Empty(t, boxes.commits)
}

func TestProcessInstructionSerialisesPerSession(t *testing.T) {
	editor, _, workflows, _ := newEditor(t)
	session, err := editor.InitSession(context.Background(), "p", "simple_modification")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := editor.ProcessInstruction(context.Background(), session.ID, "x")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, workflows["simple_modification"].calls)
	assert.Equal(t, 1, workflows["simple_modification"].peak)
	input, _ := session.Usage()
	assert.Equal(t, 80, input)
}

func TestCleanupSession(t *testing.T) {
	editor, boxes, _, _ := newEditor(t)
	session, err := editor.InitSession(context.Background(), "p", "")
	require.NoError(t, err)

	require.NoError(t, editor.CleanupSession(session.ID))
	assert.Equal(t, []string{session.Path}, boxes.removed)
	_, ok := editor.Session(session.ID)
	assert.False(t, ok)
	assert.ErrorIs(t, editor.CleanupSession(session.ID), ErrSessionNotFound)
}
