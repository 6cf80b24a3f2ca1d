package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const (
	sentinelStart = "# >>> pydocgen >>>"
	sentinelEnd   = "# <<< pydocgen <<<"
	hookShebang   = "#!/bin/sh\n"
)

type hookOptions struct {
	dryRun bool
}

func newHookCmd(global *globalOptions) *cobra.Command {
	opts := hookOptions{}

	cmd := &cobra.Command{
		Use:   "hook [REPO]",
		Short: "Install a git pre-commit hook that checks staged files",
		Long: `hook writes a pydocgen block to REPO/.git/hooks/pre-commit (REPO defaults
to .). The block is wrapped in sentinel comments so it can be updated in
place on subsequent runs without touching the rest of the hook. Creates the
hook if it does not exist.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo := "."
			if len(args) > 0 {
				repo = args[0]
			}
			return runHook(cmd, global, opts, repo)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the hook that would be written without modifying it")
	return cmd
}

func runHook(cmd *cobra.Command, global *globalOptions, opts hookOptions, repo string) error {
	var minCoverage *float64
	if cmd.Flags().Changed("min-coverage") {
		minCoverage = &global.minCoverage
	}
	section := generateSection(minCoverage)

	gitDir := filepath.Join(repo, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: not a git repository", repo)
	}
	path := filepath.Join(gitDir, "hooks", "pre-commit")

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	updated := applySection(string(existing), section)

	if opts.dryRun {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), updated)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating hooks directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o755); err != nil {
		return fmt.Errorf("making %s executable: %w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote pydocgen pre-commit hook to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped hook block.
func generateSection(minCoverage *float64) string {
	command := "pydocgen check --staged"
	if minCoverage != nil {
		command += " --min-coverage " + strconv.FormatFloat(*minCoverage, 'f', -1, 64)
	}
	body := "# Managed by `pydocgen hook`; edits inside this block are overwritten.\n" +
		command + " || exit 1"
	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into a hook script, replacing an existing
// sentinel block if present or appending if not. Empty content gets a
// shebang.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	if content == "" {
		return hookShebang + "\n" + section + "\n"
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
