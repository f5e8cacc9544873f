package sandbox

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "package.json", `{"name": "demo"}`)
	writeFile(t, dir, "src/App.jsx", "export default function App() {\n  return null\n}\n")
	writeFile(t, dir, "node_modules/react/index.js", "module.exports = {}\n")
	writeFile(t, dir, "dist/bundle.js", "built\n")
	writeFile(t, dir, "src/build/generated.js", "skip me\n")
	return dir
}

func TestProvisionCopiesAndCommits(t *testing.T) {
	requireGit(t)
	source := project(t)
	manager, err := NewManager(t.TempDir(), nil)
	require.NoError(t, err)

	path, err := manager.Provision(context.Background(), "abc", source)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, "src", "App.jsx"))
	assert.NoDirExists(t, filepath.Join(path, "dist"))
	assert.NoDirExists(t, filepath.Join(path, "src", "build"))

	link, err := os.Lstat(filepath.Join(path, "node_modules"))
	require.NoError(t, err)
	assert.NotZero(t, link.Mode()&os.ModeSymlink)

	log, err := runGit(context.Background(), path, "log", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "Initial state\n", log)

	changes, err := manager.Diff(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, changes)

	_, err = manager.Provision(context.Background(), "abc", source)
	assert.Error(t, err)
}

func TestDiffAndCommit(t *testing.T) {
	requireGit(t)
	manager, err := NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	path, err := manager.Provision(context.Background(), "s1", project(t))
	require.NoError(t, err)

	writeFile(t, path, "src/App.jsx", "export default function App() {\n  return <h1>Hi</h1>\n}\n")
	writeFile(t, path, "src/Footer.jsx", "export const Footer = () => null\n")

	changes, err := manager.Diff(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, "src/App.jsx", changes[0].Filename)
	assert.Equal(t, 1, changes[0].Added)
	assert.Equal(t, 1, changes[0].Removed)
	assert.Contains(t, changes[0].Diff, "+  return <h1>Hi</h1>")
	assert.Equal(t, "src/Footer.jsx", changes[1].Filename)
	assert.Equal(t, 1, changes[1].Added)
	assert.Zero(t, changes[1].Removed)

	require.NoError(t, manager.Commit(context.Background(), path, "AI: greet"))
	changes, err = manager.Diff(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, changes)
	log, err := runGit(context.Background(), path, "log", "-1", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "AI: greet\n", log)
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	manager, err := NewManager(root, nil)
	require.NoError(t, err)
	target := filepath.Join(manager.Root, "s1")
	require.NoError(t, os.MkdirAll(target, 0o755))

	assert.Error(t, manager.Remove(manager.Root))
	assert.Error(t, manager.Remove(filepath.Dir(manager.Root)))
	require.NoError(t, manager.Remove(target))
	assert.NoDirExists(t, target)
}

func TestProvisionRejectsBadInput(t *testing.T) {
	manager, err := NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = manager.Provision(context.Background(), "x", filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	_, err = manager.Provision(context.Background(), "../x", t.TempDir())
	assert.Error(t, err)
}

func TestParseDiff(t *testing.T) {
	changes, err := ParseDiff("")
	require.NoError(t, err)
	assert.Nil(t, changes)

	text := "diff --git a/src/old.css b/src/old.css\n" +
		"deleted file mode 100644\n" +
		"index 3b18e51..0000000\n" +
		"--- a/src/old.css\n" +
		"+++ /dev/null\n" +
		"@@ -1,2 +0,0 @@\n" +
		"-body {\n" +
		"-}\n"
	changes, err = ParseDiff(text)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "src/old.css", changes[0].Filename)
	assert.Equal(t, 2, changes[0].Removed)
	assert.Zero(t, changes[0].Added)
}
