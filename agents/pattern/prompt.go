package pattern

import "strings"

// PreviousInstructionsBlock lists earlier instructions of a session so the
// model sees the conversation so far. It returns "" when there are none.
func PreviousInstructionsBlock(previous []string) string {
	if len(previous) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("PREVIOUS USER COMMANDS (for context; current task is below):\n")
	for i, q := range previous {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(q)
	}
	return b.String()
}
