// Package ast extracts a lightweight symbol outline from JavaScript and
// TypeScript sources. It is regex based and makes no syntactic guarantees.
package ast

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxTreeSymbols caps how many names are appended to a tree line.
const MaxTreeSymbols = 5

// maxListedImports caps the import lines shown by FormatStructure.
const maxListedImports = 10

var (
	importPattern         = regexp.MustCompile(`(?m)^import\s+.*$`)
	functionComponentExpr = regexp.MustCompile(`function\s+([A-Z][A-Za-z0-9]*)`)
	arrowComponentExpr    = regexp.MustCompile(`(?s)const\s+([A-Z][A-Za-z0-9]*)\s*=.*?=>`)
	declarationExpr       = regexp.MustCompile(`(?m)^(?:export\s+)?(?:const|function)\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

// Outline lists the imports, components and top-level functions of a file.
// Every list is deduplicated with first-seen order preserved.
type Outline struct {
	Imports    []string `json:"imports"`
	Components []string `json:"components"`
	Functions  []string `json:"functions"`
}

// Empty reports whether nothing was extracted.
func (o Outline) Empty() bool {
	return len(o.Imports) == 0 && len(o.Components) == 0 && len(o.Functions) == 0
}

// Parse extracts an outline from source text.
func Parse(content string) Outline {
	var components []string
	components = append(components, submatches(functionComponentExpr, content)...)
	components = append(components, submatches(arrowComponentExpr, content)...)
	return Outline{
		Imports:    dedupe(importPattern.FindAllString(content, -1)),
		Components: dedupe(components),
		Functions:  dedupe(submatches(declarationExpr, content)),
	}
}

// ParseFile reads root/rel and parses it. Non-script files and read failures
// yield an empty outline.
func ParseFile(root, rel string) Outline {
	if !Detect(rel).IsScript() {
		return Outline{}
	}
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return Outline{}
	}
	return Parse(string(data))
}

// Symbols returns components followed by functions, deduplicated, capped at
// limit entries.
func (o Outline) Symbols(limit int) []string {
	all := dedupe(append(append([]string{}, o.Components...), o.Functions...))
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}

// TreeSuffix renders the " - Functions: A, B" annotation used in annotated
// trees, or "" when the outline has no symbols.
func (o Outline) TreeSuffix() string {
	symbols := o.Symbols(MaxTreeSymbols)
	if len(symbols) == 0 {
		return ""
	}
	return " - Functions: " + strings.Join(symbols, ", ")
}

// FormatStructure renders the outline report returned by the
// get_file_structure tool.
func FormatStructure(path string, o Outline) string {
	parts := []string{fmt.Sprintf("File: %s\n", path)}
	if len(o.Imports) > 0 {
		parts = append(parts, "Imports:")
		shown := o.Imports
		if len(shown) > maxListedImports {
			shown = shown[:maxListedImports]
		}
		for _, imp := range shown {
			parts = append(parts, "  "+imp)
		}
		if extra := len(o.Imports) - len(shown); extra > 0 {
			parts = append(parts, fmt.Sprintf("  ... and %d more imports", extra))
		}
		parts = append(parts, "")
	}
	if len(o.Components) > 0 {
		parts = append(parts, "Components:")
		for _, c := range o.Components {
			parts = append(parts, "  - "+c)
		}
		parts = append(parts, "")
	}
	if len(o.Functions) > 0 {
		parts = append(parts, "Functions/Constants:")
		for _, f := range o.Functions {
			parts = append(parts, "  - "+f)
		}
	}
	return strings.Join(parts, "\n")
}

func submatches(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
