package persistence

import (
	"errors"
	"os"
	"path/filepath"
)

// WorkflowLog stores the final transcript of an exploration run in
// <prefix>_workflow.txt, replacing any previous transcript of the session.
type WorkflowLog struct {
	root string
}

// NewWorkflowLog builds a log writer in root.
func NewWorkflowLog(root string) (*WorkflowLog, error) {
	if root == "" {
		return nil, errors.New("workflow log root required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &WorkflowLog{root: root}, nil
}

// PathFor returns the transcript path of a session.
func (w *WorkflowLog) PathFor(sessionID string) string {
	return filepath.Join(w.root, SessionLogPrefix(sessionID)+"_workflow.txt")
}

// WriteTranscript overwrites the session transcript.
func (w *WorkflowLog) WriteTranscript(sessionID, content string) error {
	return os.WriteFile(w.PathFor(sessionID), []byte(content), 0o644)
}
