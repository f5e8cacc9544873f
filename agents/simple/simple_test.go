package simple

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/reactcoder/framework"
)

type scriptedModel struct {
	responses []string
	prompts   []string
}

func (m *scriptedModel) Invoke(ctx context.Context, prompt string, session *framework.Session) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if len(m.prompts) > len(m.responses) {
		return "", errors.New("unexpected model call")
	}
	return m.responses[len(m.prompts)-1], nil
}

func newSandbox(t *testing.T) *framework.Session {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, framework.SourceDir)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "components"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "App.jsx"), []byte("function App() {\n  return <Header />\n}\nexport default App\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "components", "Header.jsx"), []byte("const Header = () => <h1 className=\"text-blue-500\">Hi</h1>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.css"), []byte("body { margin: 0; }\n"), 0o644))
	return framework.NewSession("s1", dir)
}

func readSource(t *testing.T, session *framework.Session, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(session.SourceRoot(), rel))
	require.NoError(t, err)
	return string(data)
}

func TestApplyChangesRewritesIdentifiedFiles(t *testing.T) {
	session := newSandbox(t)
	session.RecordInstruction("make the header bigger")
	session.RecordInstruction("make the header red")
	model := &scriptedModel{responses: []string{
		"```json\n[\"src/components/Header.jsx\", 7, \"src/missing.jsx\"]\n```",
		`{"src/components/Header.jsx": "const Header = () => <h1 className=\"text-red-500\">Hi</h1>\n"}`,
	}}

	err := New(model, nil).ApplyChanges(context.Background(), session, "make the header red")
	require.NoError(t, err)

	assert.Equal(t, "const Header = () => <h1 className=\"text-red-500\">Hi</h1>\n", readSource(t, session, "components/Header.jsx"))
	require.Len(t, model.prompts, 2)
	assert.Contains(t, model.prompts[0], "Vite/React/Tailwind CSS")
	assert.Contains(t, model.prompts[0], "├── App.jsx")
	assert.Contains(t, model.prompts[0], "- Functions: App")
	assert.Contains(t, model.prompts[0], "- make the header bigger")
	assert.NotContains(t, model.prompts[0], "- make the header red")
	assert.Contains(t, model.prompts[1], "FILE: components/Header.jsx\n")
	assert.NotContains(t, model.prompts[1], "missing.jsx")
}

func TestApplyChangesEmptyIdentificationIsNoop(t *testing.T) {
	session := newSandbox(t)
	model := &scriptedModel{responses: []string{"[]"}}

	require.NoError(t, New(model, nil).ApplyChanges(context.Background(), session, "nothing"))
	assert.Len(t, model.prompts, 1)
	assert.Equal(t, "body { margin: 0; }\n", readSource(t, session, "index.css"))
}

func TestApplyChangesNothingLoadedIsNoop(t *testing.T) {
	session := newSandbox(t)
	model := &scriptedModel{responses: []string{`["src/Nope.jsx"]`}}

	require.NoError(t, New(model, nil).ApplyChanges(context.Background(), session, "edit nope"))
	assert.Len(t, model.prompts, 1)
}

func TestApplyChangesParseErrors(t *testing.T) {
	cases := map[string][]string{
		"invalid identification JSON": {"I think App.jsx"},
		"identification not an array": {`{"files": ["App.jsx"]}`},
		"invalid modification JSON":   {`["App.jsx"]`, "here you go: App.jsx"},
		"modification not an object":  {`["App.jsx"]`, `["App.jsx"]`},
	}
	for name, responses := range cases {
		t.Run(name, func(t *testing.T) {
			session := newSandbox(t)
			err := New(&scriptedModel{responses: responses}, nil).ApplyChanges(context.Background(), session, "x")
			var parseErr *framework.ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.LessOrEqual(t, len([]rune(parseErr.Raw)), framework.MaxRawResponse)
		})
	}
}

func TestApplyChangesModelErrorPropagates(t *testing.T) {
	session := newSandbox(t)
	err := New(&scriptedModel{}, nil).ApplyChanges(context.Background(), session, "x")
	assert.ErrorContains(t, err, "unexpected model call")
}

func TestApplyChangesWritesNewFilesAndSkipsUnsafeEntries(t *testing.T) {
	session := newSandbox(t)
	model := &scriptedModel{responses: []string{
		`["App.jsx"]`,
		`{"src/components/Footer.jsx": "export const Footer = () => null\n", "../escape.js": "x", "App.jsx": 42}`,
	}}

	require.NoError(t, New(model, nil).ApplyChanges(context.Background(), session, "add a footer"))
	assert.Equal(t, "export const Footer = () => null\n", readSource(t, session, "components/Footer.jsx"))
	assert.NoFileExists(t, filepath.Join(session.Path, "escape.js"))
	assert.Contains(t, readSource(t, session, "App.jsx"), "function App()")
}

func TestDescriptorIsValid(t *testing.T) {
	w := New(nil, nil)
	require.NoError(t, framework.DescriptorOf(w).Validate())
	assert.Equal(t, Name, w.Name())
	assert.Equal(t, framework.TierSimple, w.Complexity())
}
