package explorative

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lexcodex/reactcoder/tools"
)

const summaryBarWidth = 24

// Summary renders tool usage counts and one duration bar per call, scaled to
// the slowest call.
func Summary(executions []tools.ExecutionRecord) string {
	if len(executions) == 0 {
		return "Workflow summary: no tools were used."
	}

	var total, slowest float64
	byTool := make(map[string][]float64)
	for _, e := range executions {
		d := e.Duration.Seconds()
		total += d
		slowest = math.Max(slowest, d)
		byTool[e.Tool] = append(byTool[e.Tool], d)
	}
	if slowest == 0 {
		slowest = 1
	}
	names := make([]string, 0, len(byTool))
	for name := range byTool {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := []string{
		"",
		"=== Workflow summary ===",
		fmt.Sprintf("Total tool calls: %d  |  Total tool time: %.2fs", len(executions), total),
		"",
		"Tool usage (count):",
	}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s: %d", name, len(byTool[name])))
	}
	lines = append(lines, "", "Tool duration (visual, each bar = one call):")
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("  %s:", name))
		for _, d := range byTool[name] {
			filled := int(math.Max(1, math.RoundToEven(d/slowest*summaryBarWidth)))
			bar := strings.Repeat("█", filled) + strings.Repeat("░", summaryBarWidth-filled)
			lines = append(lines, fmt.Sprintf("    [%s] %.2fs", bar, d))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
