package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/phobologic/pydocgen/internal/config"
	"github.com/phobologic/pydocgen/internal/lang"
	"github.com/phobologic/pydocgen/internal/parse"
)

// ReadFunc loads the source of one file.
type ReadFunc func(path string) ([]byte, error)

// FileResult is the outcome for one file of a batch. Exactly one of Result
// and Err is set.
type FileResult struct {
	Path   string
	Source []byte
	Result *Result
	Err    error
}

// RunBatch runs every file through the pipeline with at most workers files
// in flight. Per-file failures, structure errors included, are recorded in
// that file's FileResult; the returned error is non-nil only when ctx ends
// the batch. Results are in the order of files.
func RunBatch(ctx context.Context, files []string, read ReadFunc, cfg config.Config, workers int, opts ...Option) ([]FileResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	// Each in-flight file borrows one analyzer; tree-sitter parsers are not
	// safe for concurrent use.
	analyzers := make(chan *parse.Analyzer, workers)
	for range workers {
		a, err := parse.NewAnalyzer(lang.Python)
		if err != nil {
			return nil, err
		}
		analyzers <- a
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := <-analyzers
			defer func() { analyzers <- a }()

			fr := FileResult{Path: path}
			src, err := read(path)
			if err != nil {
				fr.Err = fmt.Errorf("reading %s: %w", path, err)
				results[i] = fr
				return nil
			}
			fr.Source = src
			fileOpts := append(append([]Option{}, opts...), WithPath(path), WithAnalyzer(a))
			fr.Result, fr.Err = Run(gctx, src, cfg, fileOpts...)
			results[i] = fr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
