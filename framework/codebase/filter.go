// Package codebase inspects a sandboxed React project: directory trees, file
// listings, bulk loading and aggregate statistics. Every function is read-only
// and tolerant of unreadable entries.
package codebase

import (
	"path/filepath"
	"strings"
)

var ignoredNames = map[string]struct{}{
	"node_modules":      {},
	".git":              {},
	".next":             {},
	"dist":              {},
	"build":             {},
	"__pycache__":       {},
	".pytest_cache":     {},
	"coverage":          {},
	".vscode":           {},
	".idea":             {},
	"venv":              {},
	"env":               {},
	".env":              {},
	"package-lock.json": {},
	"yarn.lock":         {},
	"pnpm-lock.yaml":    {},
}

var relevantExtensions = map[string]struct{}{
	".js":   {},
	".jsx":  {},
	".ts":   {},
	".tsx":  {},
	".css":  {},
	".scss": {},
	".json": {},
	".html": {},
}

// IsIgnored reports whether a file or directory name is excluded from every
// listing.
func IsIgnored(name string) bool {
	_, ok := ignoredNames[name]
	return ok
}

// IsRelevant reports whether a file name carries one of the source
// extensions workflows care about.
func IsRelevant(name string) bool {
	_, ok := relevantExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// hasIgnoredPart reports whether any component of a slash-separated relative
// path is ignored.
func hasIgnoredPart(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if IsIgnored(part) {
			return true
		}
	}
	return false
}
