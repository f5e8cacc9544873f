// Package sandbox provisions isolated, git-tracked working copies of a
// project and reports what a workflow changed in them.
package sandbox

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

const (
	authorName  = "React Coder"
	authorEmail = "react-coder@localhost"
)

// skipped lists directory and file names never copied into a sandbox.
var skipped = map[string]struct{}{
	"node_modules": {},
	".git":         {},
	"dist":         {},
	"build":        {},
}

// FileChange is the diff of one file against the last sandbox commit.
type FileChange struct {
	Filename string `json:"filename"`
	Diff     string `json:"diff"`
	Added    int    `json:"added"`
	Removed  int    `json:"removed"`
}

// Manager creates and removes sandboxes below Root.
type Manager struct {
	Root   string
	Logger *slog.Logger
}

// NewManager ensures root exists.
func NewManager(root string, logger *slog.Logger) (*Manager, error) {
	if root == "" {
		return nil, fmt.Errorf("sandbox root required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{Root: abs, Logger: logger}, nil
}

// Provision copies source into Root/id, links the project's node_modules
// when present, and commits the copy as "Initial state".
func (m *Manager) Provision(ctx context.Context, id, source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("project not found: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project %s is not a directory", source)
	}
	dest, err := m.pathFor(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("sandbox %s already exists", id)
	}
	if err := copyTree(source, dest); err != nil {
		_ = os.RemoveAll(dest)
		return "", fmt.Errorf("copy project: %w", err)
	}
	modules := filepath.Join(source, "node_modules")
	if _, err := os.Stat(modules); err == nil {
		absModules, _ := filepath.Abs(modules)
		if err := os.Symlink(absModules, filepath.Join(dest, "node_modules")); err != nil {
			m.Logger.Warn("link node_modules failed", "sandbox", dest, "error", err)
		}
	}
	for _, args := range [][]string{
		{"init"},
		{"config", "user.email", authorEmail},
		{"config", "user.name", authorName},
		{"add", "-A"},
		{"commit", "--no-gpg-sign", "--allow-empty", "-m", "Initial state"},
	} {
		if _, err := runGit(ctx, dest, args...); err != nil {
			_ = os.RemoveAll(dest)
			return "", err
		}
	}
	m.Logger.Info("sandbox provisioned", "sandbox", dest, "source", source)
	return dest, nil
}

// Diff stages the working tree and returns per-file changes against HEAD.
// New and deleted files are included.
func (m *Manager) Diff(ctx context.Context, path string) ([]FileChange, error) {
	if _, err := runGit(ctx, path, "add", "-A"); err != nil {
		return nil, err
	}
	out, err := runGit(ctx, path, "diff", "--no-color", "--cached", "HEAD")
	if err != nil {
		return nil, err
	}
	return ParseDiff(out)
}

// Commit records the staged and unstaged changes with message.
func (m *Manager) Commit(ctx context.Context, path, message string) error {
	if _, err := runGit(ctx, path, "add", "-A"); err != nil {
		return err
	}
	_, err := runGit(ctx, path, "commit", "--no-gpg-sign", "-m", message)
	return err
}

// Remove deletes a sandbox. Paths outside Root are refused.
func (m *Manager) Remove(path string) error {
	rel, err := filepath.Rel(m.Root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("refusing to remove %s outside sandbox root", path)
	}
	return os.RemoveAll(path)
}

func (m *Manager) pathFor(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid sandbox id %q", id)
	}
	return filepath.Join(m.Root, id), nil
}

// ParseDiff splits unified git diff output into per-file changes.
func ParseDiff(text string) ([]FileChange, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(text)).ReadAllFiles()
	if err != nil {
		return nil, fmt.Errorf("parse diff: %w", err)
	}
	changes := make([]FileChange, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		name := fileName(fd)
		if name == "" {
			continue
		}
		printed, err := diff.PrintFileDiff(fd)
		if err != nil {
			return nil, fmt.Errorf("render diff for %s: %w", name, err)
		}
		added, removed := lineCounts(fd)
		changes = append(changes, FileChange{
			Filename: name,
			Diff:     strings.TrimSpace(string(printed)),
			Added:    added,
			Removed:  removed,
		})
	}
	return changes, nil
}

func fileName(fd *diff.FileDiff) string {
	if name, ok := strings.CutPrefix(fd.NewName, "b/"); ok {
		return name
	}
	if name, ok := strings.CutPrefix(fd.OrigName, "a/"); ok {
		return name
	}
	// mode-only and binary changes carry no ---/+++ lines
	for _, line := range fd.Extended {
		if rest, ok := strings.CutPrefix(line, "diff --git a/"); ok {
			if i := strings.Index(rest, " b/"); i >= 0 {
				return rest[i+3:]
			}
		}
	}
	return ""
}

func lineCounts(fd *diff.FileDiff) (added, removed int) {
	for _, hunk := range fd.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				added++
			case strings.HasPrefix(line, "-"):
				removed++
			}
		}
	}
	return added, removed
}

func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." {
			if _, skip := skipped[d.Name()]; skip {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		target := filepath.Join(dest, rel)
		info, err := d.Info()
		if err != nil {
			return err
		}
		switch {
		case d.IsDir():
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target, info.Mode().Perm())
		}
		return nil
	})
}

func copyFile(src, dest string, mode fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
