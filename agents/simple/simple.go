// Package simple implements the two-pass modification workflow: the model
// first names the files to change, then returns their complete new contents.
package simple

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/lexcodex/reactcoder/agents/pattern"
	"github.com/lexcodex/reactcoder/framework"
	"github.com/lexcodex/reactcoder/framework/ast"
	"github.com/lexcodex/reactcoder/framework/codebase"
)

// Name is the registry key of the workflow.
const Name = "simple_modification"

var tracer = otel.Tracer("github.com/lexcodex/reactcoder/agents/simple")

// Descriptor is the static metadata advertised to the router.
var Descriptor = framework.Descriptor{
	WorkflowName:        Name,
	WorkflowDescription: "Basic file identification and single-pass modification. Best for simple styling, text changes, or single-component edits.",
	Tier:                framework.TierSimple,
}

const fileSeparatorWidth = 80

// Workflow asks the model which files to touch, loads them and writes back
// the rewritten versions. There is no retry: malformed responses surface as
// *framework.ParseError.
type Workflow struct {
	framework.Descriptor
	Model  framework.ModelInvoker
	Logger *slog.Logger
}

// New builds the workflow around a model invoker.
func New(model framework.ModelInvoker, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{Descriptor: Descriptor, Model: model, Logger: logger}
}

// ApplyChanges implements framework.Workflow.
func (w *Workflow) ApplyChanges(ctx context.Context, session *framework.Session, instruction string) (err error) {
	ctx, span := tracer.Start(ctx, "simple.ApplyChanges")
	defer span.End()
	span.SetAttributes(attribute.String("session.id", session.ID))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	root := session.SourceRoot()
	overview := ProjectOverview(root)

	identified, err := w.identifyFiles(ctx, session, instruction, overview)
	if err != nil {
		return err
	}
	if len(identified) == 0 {
		w.Logger.Info("no files identified for modification", "session_id", session.ID)
		return nil
	}
	paths := normalizeAll(identified)
	w.Logger.Info("identified files", "session_id", session.ID, "files", paths)

	contents := codebase.Load(root, paths)
	if len(contents) == 0 {
		w.Logger.Info("no file contents loaded", "session_id", session.ID)
		return nil
	}

	modifications, err := w.generateModifications(ctx, session, instruction, paths, contents)
	if err != nil {
		return err
	}
	if len(modifications) == 0 {
		w.Logger.Info("no modifications generated", "session_id", session.ID)
		return nil
	}
	span.SetAttributes(attribute.Int("simple.files_written", len(modifications)))
	return w.writeAll(root, modifications)
}

// ProjectOverview renders the stats header and size-annotated tree of root,
// with symbol names appended to script files.
func ProjectOverview(root string) string {
	tree := codebase.Tree(root, codebase.TreeOptions{MaxDepth: codebase.DefaultMaxDepth, IncludeMetadata: true})
	annotated := codebase.RenderAnnotated(tree, func(n *codebase.Node) string {
		if !ast.Detect(n.Path).IsScript() {
			return ""
		}
		return ast.ParseFile(root, n.Path).TreeSuffix()
	})
	return codebase.Summary(codebase.ProjectStats(root), annotated)
}

func (w *Workflow) identifyFiles(ctx context.Context, session *framework.Session, instruction, overview string) ([]string, error) {
	var b strings.Builder
	b.WriteString("You are analyzing a Vite/React/Tailwind CSS codebase to determine which files need to be modified.\n")
	writePrevious(&b, session)
	b.WriteString("\n")
	b.WriteString(overview)
	fmt.Fprintf(&b, "\n\nUser instruction: \"%s\"\n\n", instruction)
	b.WriteString(`Analyze the instruction and file structure. Identify which files need to be modified to fulfill this instruction.

Guidelines:
- Be selective - only include files that will actually change
- Consider component hierarchy and imports
- For styling changes, include relevant CSS files
- For component changes, include the component file and possibly parent files

Return ONLY a JSON array of file paths, like: ["src/App.jsx", "src/styles.css"]
No explanation, just the JSON array.
`)

	response, err := w.Model.Invoke(ctx, b.String(), session)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := pattern.DecodeJSON(pattern.StripCodeFence(response), &decoded, "file list response"); err != nil {
		return nil, err
	}
	entries, ok := decoded.([]any)
	if !ok {
		return nil, framework.NewParseError("model response for file list is not a JSON array", response, nil)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if s, ok := entry.(string); ok {
			files = append(files, s)
		}
	}
	return files, nil
}

func (w *Workflow) generateModifications(ctx context.Context, session *framework.Session, instruction string, order []string, contents map[string]string) (map[string]any, error) {
	separator := strings.Repeat("=", fileSeparatorWidth)
	var b strings.Builder
	b.WriteString("You are modifying a React codebase based on user instructions.\n")
	writePrevious(&b, session)
	fmt.Fprintf(&b, "\nUser instruction: \"%s\"\n\nCurrent files:\n", instruction)
	for _, path := range order {
		content, ok := contents[path]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "\nFILE: %s\n%s\n%s\n%s\n\n", path, separator, content, separator)
	}
	b.WriteString(`
Modify the files according to the instruction.

IMPORTANT:
- Return the COMPLETE modified content for EACH file
- Do NOT return partial files or just the changes
- Maintain proper syntax (React/JavaScript/CSS)
- Keep all existing code that isn't affected by the instruction
- Ensure imports and exports are correct

Return your response as a JSON object where keys are file paths and values are the complete new file contents:

{
  "src/App.jsx": "complete file content here...",
  "src/styles.css": "complete file content here..."
}

Return ONLY the JSON object. No explanation or markdown formatting.
`)

	response, err := w.Model.Invoke(ctx, b.String(), session)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := pattern.DecodeJSON(pattern.StripCodeFence(response), &decoded, "modifications response"); err != nil {
		return nil, err
	}
	modifications, ok := decoded.(map[string]any)
	if !ok {
		return nil, framework.NewParseError("model response for modifications is not a JSON object", response, nil)
	}
	return modifications, nil
}

func (w *Workflow) writeAll(root string, modifications map[string]any) error {
	paths := make([]string, 0, len(modifications))
	for p := range modifications {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, raw := range paths {
		content, ok := modifications[raw].(string)
		if !ok {
			w.Logger.Warn("skipping non-string file content", "path", raw)
			continue
		}
		rel := pattern.NormalizePath(raw)
		full, ok := pattern.Within(root, rel)
		if !ok || rel == "." {
			w.Logger.Warn("skipping path outside source root", "path", raw)
			continue
		}
		w.Logger.Info("writing modifications", "path", rel)
		if err := writeFile(full, content); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

func writeFile(full, content string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(full); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, []byte(content), mode)
}

func writePrevious(b *strings.Builder, session *framework.Session) {
	if block := pattern.PreviousInstructionsBlock(session.PreviousInstructions()); block != "" {
		b.WriteString("\n")
		b.WriteString(block)
		b.WriteString("\n\n")
	}
}

func normalizeAll(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		n := pattern.NormalizePath(p)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
