package codebase

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"
)

// Files returns every relevant file under root as sorted slash-separated
// relative paths. There is no depth limit.
func Files(root string) []string {
	var out []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return fs.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if IsIgnored(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if hasIgnoredPart(rel) || !IsRelevant(d.Name()) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	sort.Strings(out)
	return out
}

// Load reads the given relative paths. Missing, unreadable and non UTF-8
// files are skipped, so the result may hold fewer entries than requested.
func Load(root string, paths []string) map[string]string {
	out := make(map[string]string, len(paths))
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil || !utf8.Valid(data) {
			continue
		}
		out[rel] = string(data)
	}
	return out
}
