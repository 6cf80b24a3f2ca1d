// Package pipeline runs the full analysis of one Python file: parse,
// detect and repair defects, generate docstrings, validate them and measure
// coverage.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phobologic/pydocgen/internal/config"
	"github.com/phobologic/pydocgen/internal/coverage"
	"github.com/phobologic/pydocgen/internal/defect"
	"github.com/phobologic/pydocgen/internal/docblock"
	"github.com/phobologic/pydocgen/internal/extract"
	"github.com/phobologic/pydocgen/internal/infer"
	"github.com/phobologic/pydocgen/internal/lang"
	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/parse"
	"github.com/phobologic/pydocgen/internal/style"
)

// CoverageBelowThreshold is the soft failure of a run whose final coverage
// is under the configured minimum. The output is still produced.
type CoverageBelowThreshold struct {
	Path     string
	Coverage float64
	Minimum  float64
}

func (e *CoverageBelowThreshold) Error() string {
	path := e.Path
	if path == "" {
		path = "<source>"
	}
	return fmt.Sprintf("%s: coverage %.1f%% is below the minimum of %.1f%%", path, e.Coverage, e.Minimum)
}

// Result is the outcome of a successful run. A file with nothing eligible
// has 0% coverage and passes only a minimum of 0.
type Result struct {
	Path    string
	Output  []byte
	Summary model.FixSummary
	// Pass is the verdict on the output; PassBefore the same verdict on the
	// input as written.
	Pass       bool
	PassBefore bool
	Minimum    float64
}

// Err returns a *CoverageBelowThreshold when the run did not pass.
func (r *Result) Err() error {
	if r.Pass {
		return nil
	}
	return &CoverageBelowThreshold{Path: r.Path, Coverage: r.Summary.CoverageAfter, Minimum: r.Minimum}
}

// Changed reports whether the output differs from the input.
func (r *Result) Changed(input []byte) bool {
	return !bytes.Equal(r.Output, input)
}

type options struct {
	logger   *slog.Logger
	engine   *infer.Engine
	analyzer *parse.Analyzer
	path     string
}

// Option configures a run.
type Option func(*options)

// WithLogger sets the logger for stage and diagnostic messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithEngine replaces the default inference engine.
func WithEngine(e *infer.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithPath names the source in errors, logs and results.
func WithPath(path string) Option {
	return func(o *options) { o.path = path }
}

// WithAnalyzer reuses a parser across runs on the same goroutine.
func WithAnalyzer(a *parse.Analyzer) Option {
	return func(o *options) { o.analyzer = a }
}

// Run processes source under cfg. A *parse.StructureError, in the input or
// in any intermediate text, yields no result.
func Run(ctx context.Context, source []byte, cfg config.Config, opts ...Option) (*Result, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.engine == nil {
		o.engine = infer.New()
	}
	if o.analyzer == nil {
		a, err := parse.NewAnalyzer(lang.Python)
		if err != nil {
			return nil, err
		}
		o.analyzer = a
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &runner{ctx: ctx, cfg: cfg, opts: o, log: o.logger.With("file", o.path)}
	return r.run(source)
}

type runner struct {
	ctx  context.Context
	cfg  config.Config
	opts options
	log  *slog.Logger
}

func (r *runner) analyze(source []byte) (*model.SourceUnit, []*model.Definition, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, nil, err
	}
	unit, err := r.opts.analyzer.Analyze(r.ctx, source, r.opts.path)
	if err != nil {
		return nil, nil, err
	}
	return unit, extract.Definitions(unit), nil
}

func (r *runner) run(source []byte) (*Result, error) {
	eligible := r.cfg.Eligibility()

	unit, defs, err := r.analyze(source)
	if err != nil {
		return nil, err
	}
	before := coverage.Compute(defs, eligible)
	r.log.Debug("parsed", "definitions", len(defs), "coverage_before", before.Percent)

	summary := model.FixSummary{
		CodeErrorsFixed: make(map[model.DefectKind]int, len(model.DefectKinds)),
		CoverageBefore:  before.Percent,
	}
	for _, k := range model.DefectKinds {
		summary.CodeErrorsFixed[k] = 0
	}

	summary.Defects = defect.Detect(unit)
	r.log.Debug("detected", "defects", len(summary.Defects))

	if r.cfg.FixCodeErrors && len(summary.Defects) > 0 {
		repaired, repairedDefs, err := r.repair(unit, defs, &summary)
		if err != nil {
			unit.Close()
			return nil, err
		}
		unit, defs = repaired, repairedDefs
	}

	gen, err := docblock.NewGenerator(r.opts.engine).Apply(unit, defs, r.cfg)
	unit.Close()
	if err != nil {
		return nil, err
	}
	summary.DocstringsGenerated = gen.Count(docblock.Generated)
	summary.DocstringsNormalized = gen.Count(docblock.Normalized)
	r.log.Debug("generated", "generated", summary.DocstringsGenerated, "normalized", summary.DocstringsNormalized)

	final, finalDefs, err := r.analyze(gen.Output)
	if err != nil {
		return nil, fmt.Errorf("generated output does not parse: %w", err)
	}
	defer final.Close()

	summary.Violations = style.ValidateAll(finalDefs, gen.Touched())
	for _, v := range summary.Violations {
		r.log.Warn("style violation", "rule", v.Rule, "definition", v.Definition, "line", v.Line, "message", v.Message)
	}

	after := coverage.Compute(finalDefs, eligible)
	summary.CoverageAfter = after.Percent

	res := &Result{
		Path:       r.opts.path,
		Output:     gen.Output,
		Summary:    summary,
		Pass:       meets(after, r.cfg.MinCoverage),
		PassBefore: meets(before, r.cfg.MinCoverage),
		Minimum:    r.cfg.MinCoverage,
	}
	r.log.Debug("done",
		"coverage_before", summary.CoverageBefore,
		"coverage_after", summary.CoverageAfter,
		"pass", res.Pass)
	return res, nil
}

func meets(s model.CoverageSnapshot, minimum float64) bool {
	return s.Percent >= minimum
}

// repair applies defect fixes and re-parses the result. Repairs whose text
// no longer parses are dropped and the original unit is kept.
func (r *runner) repair(unit *model.SourceUnit, defs []*model.Definition, summary *model.FixSummary) (*model.SourceUnit, []*model.Definition, error) {
	text, applied, conflicts, err := defect.Repair(unit.Source, summary.Defects)
	if err != nil {
		return nil, nil, err
	}
	summary.Conflicts = conflicts
	for _, c := range conflicts {
		r.log.Warn("repair conflict", "token", c.Skipped.Token, "line", c.Skipped.Line, "conflicts_with", c.Conflict.Token)
	}
	if len(applied) == 0 {
		return unit, defs, nil
	}

	repaired, repairedDefs, err := r.analyze(text)
	var serr *parse.StructureError
	switch {
	case errors.As(err, &serr):
		r.log.Warn("discarding repairs that break the source", "error", serr)
		return unit, defs, nil
	case err != nil:
		return nil, nil, err
	}
	unit.Close()

	for _, d := range applied {
		summary.CodeErrorsFixed[d.Kind]++
	}
	summary.TyposFixed = summary.CodeErrorsFixed[model.NameTypo]
	r.log.Debug("repaired", "fixed", len(applied))
	return repaired, repairedDefs, nil
}
