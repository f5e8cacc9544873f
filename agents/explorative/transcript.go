package explorative

import (
	"fmt"
	"strings"
)

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the conversation re-sent to the model each iteration.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered conversation of one run.
type Transcript []Turn

// Render flattens the transcript into the single prompt sent to the model.
func (t Transcript) Render() string {
	parts := make([]string, 0, len(t))
	for _, turn := range t {
		label := "USER"
		if turn.Role == RoleAssistant {
			label = "ASSISTANT"
		}
		parts = append(parts, fmt.Sprintf("[%s]\n%s\n", label, turn.Content))
	}
	return strings.Join(parts, "\n")
}

// ToolResult pairs a tool name with the text it produced.
type ToolResult struct {
	Tool   string
	Result string
}

// FormatToolResults renders the user turn that answers one batch of tool
// calls.
func FormatToolResults(results []ToolResult) string {
	parts := []string{"TOOL RESULTS:\n"}
	for _, r := range results {
		parts = append(parts,
			"Tool: "+r.Tool,
			"Result:\n"+r.Result+"\n",
			strings.Repeat("-", 80),
		)
	}
	parts = append(parts, "\nContinue with your next action (use tools or mark as done).")
	return strings.Join(parts, "\n")
}
