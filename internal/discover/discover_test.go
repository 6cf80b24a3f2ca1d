package discover

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverPythonFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "lib/util.py", "def helper(): pass")
	// Non-Python file should be ignored
	writeFile(t, dir, "readme.txt", "hello")
	// Hidden file should be ignored
	writeFile(t, dir, ".hidden.py", "secret")
	// Generated artifacts should be ignored
	writeFile(t, dir, "main_docgen.py", "print('hello')")

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("lib", "util.py"), "main.py"}, files)
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.py", "pass")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, ".venv/lib/site.py", "pass")
	writeFile(t, dir, "pkg.egg-info/setup.py", "pass")

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py"}, files)
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\nscratch.py\n")
	writeFile(t, dir, "app.py", "pass")
	writeFile(t, dir, "scratch.py", "pass")
	writeFile(t, dir, "generated/models.py", "pass")

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py"}, files)
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")

	err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py"}, files)
}

func TestEligible(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want bool
	}{
		{"app.py", true},
		{"pkg/models.py", true},
		{"app_docgen.py", false},
		{"pkg/app_docgen.py", false},
		{"stubs.pyi", false},
		{".secret.py", false},
		{"README.md", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Eligible(tc.path))
		})
	}
}

func TestArtifactPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg/app_docgen.py", ArtifactPath("pkg/app.py"))
	assert.Equal(t, "script_docgen.py", ArtifactPath("script"))
}

func TestStaged(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	writeFile(t, dir, "a.py", "pass\n")
	writeFile(t, dir, "b.py", "pass\n")
	writeFile(t, dir, "notes.txt", "x\n")
	writeFile(t, dir, "a_docgen.py", "pass\n")
	gitCmd(t, dir, "add", "a.py", "notes.txt", "a_docgen.py")

	files, err := Staged(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.py"}, files)
}

func TestStagedOutsideRepo(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	if cmd.Run() == nil {
		t.Skip("temp dir is inside a git repository")
	}
	_, err := Staged(context.Background(), dir)
	assert.Error(t, err)
}

func gitCmd(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
