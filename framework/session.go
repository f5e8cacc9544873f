package framework

import (
	"path/filepath"
	"sync"
)

// SourceDir is the directory inside a sandbox that workflows operate on.
const SourceDir = "src"

// Session is the per-user editing context. ID and Path never change after
// construction; the remaining state is guarded so the model invoker can update
// token counters while a workflow runs.
type Session struct {
	ID   string
	Path string

	mu           sync.RWMutex
	inputTokens  int
	outputTokens int
	workflow     string
	instructions []string

	turn sync.Mutex
}

// NewSession builds a session rooted at the sandbox path.
func NewSession(id, path string) *Session {
	return &Session{ID: id, Path: path}
}

// SourceRoot returns the src/ directory workflows read and edit.
func (s *Session) SourceRoot() string {
	return filepath.Join(s.Path, SourceDir)
}

// AddUsage accumulates token counts reported by the model.
func (s *Session) AddUsage(input, output int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputTokens += input
	s.outputTokens += output
}

// Usage returns cumulative input and output token counts.
func (s *Session) Usage() (input, output int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inputTokens, s.outputTokens
}

// WorkflowName returns the workflow bound to the session, or "" when none has
// been selected yet.
func (s *Session) WorkflowName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workflow
}

// SetWorkflow binds a workflow name to the session.
func (s *Session) SetWorkflow(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflow = name
}

// RecordInstruction appends an instruction. The most recent one is the
// instruction currently being processed.
func (s *Session) RecordInstruction(instruction string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instructions = append(s.instructions, instruction)
}

// Instructions returns a copy of every instruction issued in the session.
func (s *Session) Instructions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.instructions))
	copy(out, s.instructions)
	return out
}

// PreviousInstructions returns all instructions except the current one.
func (s *Session) PreviousInstructions() []string {
	all := s.Instructions()
	if len(all) <= 1 {
		return nil
	}
	return all[:len(all)-1]
}

// BeginTurn serialises instruction processing on the session. The returned
// function releases the turn.
func (s *Session) BeginTurn() func() {
	s.turn.Lock()
	return s.turn.Unlock
}
