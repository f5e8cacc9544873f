package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/lexcodex/reactcoder/agents/pattern"
	"github.com/lexcodex/reactcoder/framework/ast"
)

// ListFilesTool lists the immediate entries of a directory.
type ListFilesTool struct {
	Root string
}

func (t *ListFilesTool) Name() string        { return "list_files" }
func (t *ListFilesTool) Description() string { return "List files in a directory" }
func (t *ListFilesTool) Category() string    { return "explore" }
func (t *ListFilesTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "directory", Type: "string", Required: true, Example: `"relative/path"`},
		{Name: "pattern", Type: "string", Example: `"*.jsx"`},
	}
}

func (t *ListFilesTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	dir := pattern.NormalizePath(stringArg(args, "directory", "."))
	glob := stringArg(args, "pattern", "")
	full, err := resolve(t.Root, dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", failf("Directory not found: %s", dir)
		}
		return "", err
	}
	if !info.IsDir() {
		return "", failf("Not a directory: %s", dir)
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, entry := range entries {
		entryInfo, err := os.Stat(filepath.Join(full, entry.Name()))
		if err != nil {
			continue
		}
		if entryInfo.IsDir() {
			lines = append(lines, "  "+entry.Name()+"/")
			continue
		}
		if glob != "" {
			if ok, _ := filepath.Match(glob, entry.Name()); !ok {
				continue
			}
		}
		lines = append(lines, "  "+entry.Name())
	}
	if len(lines) == 0 {
		return fmt.Sprintf("No files found in %s", dir), nil
	}
	sort.Strings(lines)
	return fmt.Sprintf("Files in %s:\n", dir) + strings.Join(lines, "\n"), nil
}

// ReadFileLinesTool returns a numbered line range of a file.
type ReadFileLinesTool struct {
	Root string
}

func (t *ReadFileLinesTool) Name() string        { return "read_file_lines" }
func (t *ReadFileLinesTool) Description() string { return "Read specific lines from a file" }
func (t *ReadFileLinesTool) Category() string    { return "explore" }
func (t *ReadFileLinesTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "file_path", Type: "string", Required: true, Example: `"relative/path/to/file.jsx"`},
		{Name: "start_line", Type: "int", Example: "1"},
		{Name: "end_line", Type: "int", Example: "50"},
	}
}

func (t *ReadFileLinesTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	rel := pattern.NormalizePath(stringArg(args, "file_path", ""))
	start, err := intArg(args, "start_line", 1)
	if err != nil {
		return "", err
	}
	end, err := intArg(args, "end_line", -1)
	if err != nil {
		return "", err
	}
	data, err := readExisting(t.Root, rel)
	if err != nil {
		return "", err
	}
	lines := splitLines(string(data))
	if end == -1 {
		end = len(lines)
	}
	from, to := start, end
	if from < 1 {
		from = 1
	}
	if to > len(lines) {
		to = len(lines)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (lines %d-%d)\n", rel, start, end)
	for i := from; i <= to; i++ {
		if i > from {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%4d | %s", i, strings.TrimRightFunc(lines[i-1], unicode.IsSpace))
	}
	return b.String(), nil
}

// FileStructureTool reports the symbol outline of a file.
type FileStructureTool struct {
	Root string
}

func (t *FileStructureTool) Name() string { return "get_file_structure" }
func (t *FileStructureTool) Description() string {
	return "Get outline of a file (imports and function signatures only, no implementation)"
}
func (t *FileStructureTool) Category() string { return "explore" }
func (t *FileStructureTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "file_path", Type: "string", Required: true, Example: `"relative/path/to/file.jsx"`},
	}
}

func (t *FileStructureTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	rel := pattern.NormalizePath(stringArg(args, "file_path", ""))
	if _, err := readExisting(t.Root, rel); err != nil {
		return "", err
	}
	return ast.FormatStructure(rel, ast.ParseFile(t.Root, rel)), nil
}

// EditRecord describes one successful apply_edit call.
type EditRecord struct {
	FilePath string `json:"file_path"`
	OldStr   string `json:"old_str"`
	NewStr   string `json:"new_str"`
}

// ApplyEditTool performs an exact, unique string replacement inside a file.
type ApplyEditTool struct {
	Root   string
	OnEdit func(EditRecord)
}

func (t *ApplyEditTool) Name() string { return "apply_edit" }
func (t *ApplyEditTool) Description() string {
	return "Apply a targeted edit to a file (str_replace pattern - finds exact match and replaces)"
}
func (t *ApplyEditTool) Category() string { return "edit" }
func (t *ApplyEditTool) Parameters() []ToolParameter {
	return []ToolParameter{
		{Name: "file_path", Type: "string", Required: true, Example: `"path"`},
		{Name: "old_str", Type: "string", Required: true, Example: `"exact string to replace"`},
		{Name: "new_str", Type: "string", Required: true, Example: `"replacement"`},
	}
}

func (t *ApplyEditTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	rel := pattern.NormalizePath(stringArg(args, "file_path", ""))
	oldStr := stringArg(args, "old_str", "")
	newStr := stringArg(args, "new_str", "")
	data, err := readExisting(t.Root, rel)
	if err != nil {
		return "", err
	}
	content := string(data)
	switch count := strings.Count(content, oldStr); {
	case count == 0:
		return "", failf("Could not find exact match in %s. Make sure old_str matches exactly including whitespace.", rel)
	case count > 1:
		return "", failf("Found %d occurrences of old_str in %s. Pattern must be unique.", count, rel)
	}
	full, _ := resolve(t.Root, rel)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(full, []byte(strings.Replace(content, oldStr, newStr, 1)), mode); err != nil {
		return "", failf("Failed to apply edit: %v", err)
	}
	if t.OnEdit != nil {
		t.OnEdit(EditRecord{FilePath: rel, OldStr: oldStr, NewStr: newStr})
	}
	return fmt.Sprintf("SUCCESS: Applied edit to %s", rel), nil
}

// readExisting loads a file, mapping a missing path to the "File not found"
// failure.
func readExisting(root, rel string) ([]byte, error) {
	full, err := resolve(root, rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failf("File not found: %s", rel)
		}
		return nil, failf("Failed to read file: %v", err)
	}
	return data, nil
}

// splitLines splits text into lines, keeping a final line without a
// trailing newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
