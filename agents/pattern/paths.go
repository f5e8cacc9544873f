package pattern

import (
	"path/filepath"
	"strings"
)

// NormalizePath maps model-supplied paths onto the src/ workflow root:
// "src" becomes "." and a leading "src/" is dropped. Any other path is
// returned unchanged.
func NormalizePath(path string) string {
	if path == "" || path == "." {
		return "."
	}
	normalized := strings.Trim(strings.ReplaceAll(path, `\`, "/"), "/")
	if normalized == "src" {
		return "."
	}
	if rest, ok := strings.CutPrefix(normalized, "src/"); ok {
		if rest == "" {
			return "."
		}
		return rest
	}
	return path
}

// NormalizeFilePattern reduces a file glob to the basename form grep's
// --include expects. Empty input and "*" yield "*".
func NormalizeFilePattern(pattern string) string {
	if pattern == "" || pattern == "*" {
		return "*"
	}
	p := strings.Trim(strings.ReplaceAll(pattern, `\`, "/"), "/")
	if rest, ok := strings.CutPrefix(p, "src/"); ok {
		p = rest
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	if p == "" {
		return "*"
	}
	return p
}

// Within joins a workflow-relative path onto root. It reports false when the
// result would lie outside root.
func Within(root, rel string) (string, bool) {
	full := filepath.Join(root, filepath.FromSlash(rel))
	back, err := filepath.Rel(root, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
