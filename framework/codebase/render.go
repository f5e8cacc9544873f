package codebase

import (
	"fmt"
	"sort"
	"strings"
)

// Annotator returns a suffix appended to a file line in RenderAnnotated.
type Annotator func(n *Node) string

// RenderSimple draws the tree with one "├── name" line per entry, two spaces
// of indentation per level and a trailing slash on directories.
func RenderSimple(root *Node) string {
	var lines []string
	renderSimple(root, "", &lines)
	return strings.Join(lines, "\n")
}

func renderSimple(n *Node, prefix string, lines *[]string) {
	if n.IsDir() {
		*lines = append(*lines, prefix+"├── "+n.Name+"/")
		for _, child := range n.Children {
			renderSimple(child, prefix+"  ", lines)
		}
		return
	}
	*lines = append(*lines, prefix+"├── "+n.Name)
}

// RenderAnnotated draws the tree like RenderSimple but prints the root's
// children at the top level and adds file sizes plus an optional annotation.
// Size metadata must have been requested when the tree was built.
func RenderAnnotated(root *Node, annotate Annotator) string {
	var lines []string
	for _, child := range root.Children {
		renderAnnotated(child, "", annotate, &lines)
	}
	return strings.Join(lines, "\n")
}

func renderAnnotated(n *Node, prefix string, annotate Annotator, lines *[]string) {
	if n.IsDir() {
		*lines = append(*lines, prefix+"├── "+n.Name+"/")
		for _, child := range n.Children {
			renderAnnotated(child, prefix+"  ", annotate, lines)
		}
		return
	}
	line := fmt.Sprintf("%s├── %s (%.1fKB)", prefix, n.Name, float64(n.Size)/1024)
	if annotate != nil {
		line += annotate(n)
	}
	*lines = append(*lines, line)
}

// Summary renders the project overview shown to the model: file totals,
// per-extension counts and the annotated tree.
func Summary(stats Stats, tree string) string {
	var b strings.Builder
	b.WriteString("Project Structure:\n")
	fmt.Fprintf(&b, "Total files: %d\n", stats.TotalFiles)
	fmt.Fprintf(&b, "Files by type: %s\n\n", formatCounts(stats.FilesByType))
	b.WriteString("File Tree:\n")
	b.WriteString(tree)
	return b.String()
}

func formatCounts(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %d", k, counts[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
