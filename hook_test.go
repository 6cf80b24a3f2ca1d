package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hookPath(repo string) string {
	return filepath.Join(repo, ".git", "hooks", "pre-commit")
}

func newTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func TestApplySectionCreate(t *testing.T) {
	t.Parallel()

	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("", section)
	assert.Equal(t, "#!/bin/sh\n\n"+section+"\n", got)
}

func TestApplySectionAppend(t *testing.T) {
	t.Parallel()

	section := sentinelStart + "\nbody\n" + sentinelEnd
	got := applySection("#!/bin/sh\nmake lint", section)
	assert.Equal(t, "#!/bin/sh\nmake lint\n\n"+section+"\n", got)
}

func TestApplySectionUpdate(t *testing.T) {
	t.Parallel()

	existing := "#!/bin/sh\nbefore\n" + sentinelStart + "\nold\n" + sentinelEnd + "\nafter\n"
	section := sentinelStart + "\nnew\n" + sentinelEnd
	got := applySection(existing, section)
	assert.Equal(t, "#!/bin/sh\nbefore\n"+section+"\nafter\n", got)
}

func TestGenerateSection(t *testing.T) {
	t.Parallel()

	got := generateSection(nil)
	assert.Contains(t, got, "\npydocgen check --staged || exit 1\n")

	minimum := 92.5
	got = generateSection(&minimum)
	assert.Contains(t, got, "\npydocgen check --staged --min-coverage 92.5 || exit 1\n")
}

func TestHookCreatesFile(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"hook", repo}, &stdout, &stderr))

	data, err := os.ReadFile(hookPath(repo))
	require.NoError(t, err)
	assert.Equal(t, applySection("", generateSection(nil)), string(data))
	assert.Contains(t, stderr.String(), "wrote pydocgen pre-commit hook")

	info, err := os.Stat(hookPath(repo))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "hook is executable")
}

func TestHookKeepsExistingContent(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	writeTestFile(t, repo, filepath.Join(".git", "hooks", "pre-commit"), "#!/bin/sh\nmake lint\n")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"hook", "--min-coverage", "90", repo}, &stdout, &stderr))

	data, err := os.ReadFile(hookPath(repo))
	require.NoError(t, err)
	assert.Contains(t, string(data), "#!/bin/sh\nmake lint\n\n"+sentinelStart)
	assert.Contains(t, string(data), "pydocgen check --staged --min-coverage 90 || exit 1")

	info, err := os.Stat(hookPath(repo))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0o100, "existing hook made executable")
}

func TestHookIdempotent(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"hook", repo}, &stdout, &stderr))
	first, err := os.ReadFile(hookPath(repo))
	require.NoError(t, err)

	require.NoError(t, run([]string{"hook", repo}, &stdout, &stderr))
	second, err := os.ReadFile(hookPath(repo))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestHookDryRun(t *testing.T) {
	t.Parallel()

	repo := newTestRepo(t)
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"hook", "--dry-run", repo}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), sentinelStart)
	assert.Contains(t, stdout.String(), "pydocgen check --staged")

	_, err := os.Stat(hookPath(repo))
	assert.True(t, errors.Is(err, os.ErrNotExist), "dry run must not write the hook")
}

func TestHookNotARepository(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	err := run([]string{"hook", dir}, &stdout, &stderr)
	assert.EqualError(t, err, dir+": not a git repository")
}
