package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lexcodex/reactcoder/agents"
	"github.com/lexcodex/reactcoder/service"
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderResult formats the outcome of one instruction. showDiff includes
// the colourised unified diff of every changed file.
func renderResult(instruction string, result *service.InstructionResult, showDiff bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("» "+instruction) + "\n")
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("workflow:"), result.Workflow)
	if len(result.Changes) == 0 {
		b.WriteString(dimStyle.Render("no files changed") + "\n")
	}
	for _, change := range result.Changes {
		fmt.Fprintf(&b, "  %s %s %s\n",
			change.Filename,
			addedStyle.Render(fmt.Sprintf("+%d", change.Added)),
			removedStyle.Render(fmt.Sprintf("-%d", change.Removed)))
		if showDiff {
			b.WriteString(colorizeDiff(change.Diff))
		}
	}
	fmt.Fprintf(&b, "%s in=%d out=%d\n", labelStyle.Render("tokens:"), result.InputTokens, result.OutputTokens)
	return b.String()
}

func colorizeDiff(diff string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = dimStyle.Render(line)
		case strings.HasPrefix(line, "+"):
			line = addedStyle.Render(line)
		case strings.HasPrefix(line, "-"):
			line = removedStyle.Render(line)
		case strings.HasPrefix(line, "@@"):
			line = hunkStyle.Render(line)
		}
		b.WriteString("    " + line + "\n")
	}
	return b.String()
}

func renderWorkflows(options []agents.WorkflowOption, defaultName string) string {
	width := 0
	for _, opt := range options {
		width = max(width, len(opt.Name))
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Workflows") + "\n")
	for _, opt := range options {
		marker := " "
		if opt.Name == defaultName {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s  %s\n    %s\n",
			marker,
			labelStyle.Render(fmt.Sprintf("%-*s", width, opt.Name)),
			dimStyle.Render(string(opt.Complexity)),
			opt.Description)
	}
	return b.String()
}
