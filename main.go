// pydocgen generates, normalizes and checks Python docstrings, and repairs
// identifiers that look like misspellings of a nearby name.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/pydocgen/internal/config"
	"github.com/phobologic/pydocgen/internal/discover"
	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/pipeline"
	"github.com/phobologic/pydocgen/internal/report"
)

var version = "dev"

const defaultMaxFileSize = 1_000_000 // 1 MB

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

// globalOptions are the flags shared by every subcommand. Configuration
// flags override pyproject.toml only when given.
type globalOptions struct {
	configPath     string
	style          string
	minCoverage    float64
	noFix          bool
	noNormalize    bool
	includePrivate bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "pydocgen",
		Short: "Generate and check Python docstrings",
		Long: "pydocgen adds missing docstrings to Python files, rewrites existing ones\n" +
			"in a single style, repairs likely identifier typos and reports\n" +
			"documentation coverage.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "pyproject.toml to read instead of discovering one")
	pf.StringVar(&opts.style, "style", "", "docstring style: google, numpy or rest")
	pf.Float64Var(&opts.minCoverage, "min-coverage", 0, "minimum coverage percent for a file to pass")
	pf.BoolVar(&opts.noFix, "no-fix", false, "report identifier typos without repairing them")
	pf.BoolVar(&opts.noNormalize, "no-normalize", false, "leave existing docstrings as written")
	pf.BoolVar(&opts.includePrivate, "include-private", false, "count _private definitions toward coverage")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages")

	rootCmd.AddCommand(newFixCmd(opts))
	rootCmd.AddCommand(newCheckCmd(opts))
	rootCmd.AddCommand(newHookCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pydocgen %s\n", version)
		},
	}
}

func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// resolveConfig loads the configuration for sources under dir and applies
// the flags that were set on cmd.
func (o *globalOptions) resolveConfig(cmd *cobra.Command, dir string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.Load(o.configPath)
	} else {
		var cwd string
		if cwd, err = os.Getwd(); err != nil {
			return config.Config{}, fmt.Errorf("resolving working directory: %w", err)
		}
		cfg, _, err = config.Discover(cwd, dir)
	}
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("style") {
		cfg.Style = model.Style(strings.ToLower(o.style))
	}
	if flags.Changed("min-coverage") {
		cfg.MinCoverage = o.minCoverage
	}
	if o.noFix {
		cfg.FixCodeErrors = false
	}
	if o.noNormalize {
		cfg.NormalizeExistingDocstrings = false
	}
	if o.includePrivate {
		cfg.IncludePrivate = true
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

type fixOptions struct {
	diff   bool
	stdout bool
	format string
}

func newFixCmd(global *globalOptions) *cobra.Command {
	opts := fixOptions{format: string(report.Text)}

	cmd := &cobra.Command{
		Use:   "fix FILE.py",
		Short: "Write a documented copy of a Python file",
		Long: "fix runs the full pipeline on one file and writes the result next to it\n" +
			"as <name>" + discover.ArtifactSuffix + ". The input file is never modified.\n" +
			"It exits with status 1 when coverage stays below the minimum.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFix(cmd, global, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.diff, "diff", false, "print a unified diff of the changes")
	cmd.Flags().BoolVar(&opts.stdout, "stdout", false, "print the result instead of writing the artifact")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "summary format: text, json or yaml")
	return cmd
}

func runFix(cmd *cobra.Command, global *globalOptions, opts fixOptions, path string) error {
	format, err := report.ParseFormat(opts.format, report.Text, report.JSON, report.YAML)
	if err != nil {
		return err
	}
	cfg, err := global.resolveConfig(cmd, filepath.Dir(path))
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	log := global.logger(cmd)
	res, err := pipeline.Run(cmd.Context(), source, cfg, pipeline.WithLogger(log), pipeline.WithPath(path))
	if err != nil {
		return err
	}

	stdout := cmd.OutOrStdout()
	summaryOut := stdout
	artifact := discover.ArtifactPath(path)
	if opts.stdout {
		summaryOut = cmd.ErrOrStderr()
		if _, err := stdout.Write(res.Output); err != nil {
			return err
		}
	} else {
		if err := os.WriteFile(artifact, res.Output, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", artifact, err)
		}
		log.Info("wrote artifact", "file", path, "artifact", artifact)
	}

	if opts.diff {
		d, err := report.Diff(path, artifact, source, res.Output)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(summaryOut, d); err != nil {
			return err
		}
	}

	if err := report.WriteSummary(summaryOut, format, res.Summary); err != nil {
		return err
	}
	return res.Err()
}

type checkOptions struct {
	staged      bool
	workers     int
	format      string
	maxFileSize int
}

func newCheckCmd(global *globalOptions) *cobra.Command {
	opts := checkOptions{
		workers:     runtime.NumCPU(),
		format:      string(report.TOON),
		maxFileSize: defaultMaxFileSize,
	}

	cmd := &cobra.Command{
		Use:   "check [PATH]",
		Short: "Report docstring coverage without writing anything",
		Long: "check runs the pipeline over every Python file under PATH (default .)\n" +
			"and reports coverage before and after generation. It exits with status 1\n" +
			"when any file fails to parse or, as written, is below the minimum coverage.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			return runCheck(cmd, global, opts, path)
		},
	}

	cmd.Flags().BoolVar(&opts.staged, "staged", false, "check only files staged in git")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "number of files processed concurrently")
	cmd.Flags().StringVar(&opts.format, "format", opts.format, "report format: toon, json or yaml")
	cmd.Flags().IntVar(&opts.maxFileSize, "max-file-size", opts.maxFileSize, "fail files larger than this many bytes")
	return cmd
}

func runCheck(cmd *cobra.Command, global *globalOptions, opts checkOptions, path string) error {
	format, err := report.ParseFormat(opts.format, report.TOON, report.JSON, report.YAML)
	if err != nil {
		return err
	}
	if opts.workers <= 0 {
		return errors.New("workers must be greater than 0")
	}

	root, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}

	var files []string
	switch {
	case !info.IsDir():
		if opts.staged {
			return fmt.Errorf("%s: --staged needs a directory", path)
		}
		files = []string{filepath.Base(root)}
		root = filepath.Dir(root)
	case opts.staged:
		files, err = discover.Staged(cmd.Context(), root)
	default:
		files, err = discover.Files(root)
	}
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}

	cfg, err := global.resolveConfig(cmd, root)
	if err != nil {
		return err
	}

	read := func(rel string) ([]byte, error) {
		abs := filepath.Join(root, rel)
		fi, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if fi.Size() > int64(opts.maxFileSize) {
			return nil, fmt.Errorf("skipped (>%d bytes)", opts.maxFileSize)
		}
		return os.ReadFile(abs)
	}

	results, err := pipeline.RunBatch(cmd.Context(), files, read, cfg, opts.workers, pipeline.WithLogger(global.logger(cmd)))
	if err != nil {
		return err
	}

	rep := report.BuildBatch(filepath.Base(root), cfg.MinCoverage, results)
	if err := report.WriteBatch(cmd.OutOrStdout(), format, rep); err != nil {
		return err
	}
	if !rep.Passed() {
		failed := 0
		for _, f := range rep.Files {
			if !f.Pass {
				failed++
			}
		}
		return fmt.Errorf("%d of %d files failed the docstring check", failed, len(rep.Files))
	}
	return nil
}
