package codebase

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Stats aggregates size information about a project.
type Stats struct {
	TotalFiles      int            `json:"total_files"`
	TotalLines      int            `json:"total_lines"`
	FilesByType     map[string]int `json:"files_by_type"`
	EstimatedTokens int            `json:"estimated_tokens"`
}

// EstimateTokens approximates the token count of text at four characters per
// token.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// ProjectStats computes Stats over Files(root). Files that cannot be read
// still count toward TotalFiles and FilesByType.
func ProjectStats(root string) Stats {
	stats := Stats{FilesByType: map[string]int{}}
	for _, rel := range Files(root) {
		stats.TotalFiles++
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(rel)), ".")
		stats.FilesByType[ext]++
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil || !utf8.Valid(data) {
			continue
		}
		content := string(data)
		stats.TotalLines += strings.Count(content, "\n")
		stats.EstimatedTokens += EstimateTokens(content)
	}
	return stats
}
