// Package report renders fix summaries, batch check reports and diffs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/phobologic/pydocgen/internal/model"
	"github.com/phobologic/pydocgen/internal/pipeline"
	"github.com/phobologic/pydocgen/internal/toon"
)

// Format selects an output encoding.
type Format string

const (
	Text Format = "text"
	TOON Format = "toon"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates name against the formats allowed for a command.
func ParseFormat(name string, allowed ...Format) (Format, error) {
	for _, f := range allowed {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, len(allowed))
	for i, f := range allowed {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unsupported format %q (want one of %s)", name, strings.Join(names, ", "))
}

const rule = "--------------------------------------------------"

// Summary writes the plain-text fix summary block.
func Summary(w io.Writer, s model.FixSummary) error {
	_, err := fmt.Fprintf(w, "Fix Summary\n%s\n"+
		"Docstrings generated: %d\n"+
		"Existing docstrings normalized: %d\n"+
		"Code errors fixed (undefined reference): %d\n"+
		"Typos fixed (name typo): %d\n"+
		"Coverage: %.1f%% -> %.1f%%\n",
		rule,
		s.DocstringsGenerated,
		s.DocstringsNormalized,
		s.CodeErrorsFixed[model.UndefinedReference],
		s.TyposFixed,
		s.CoverageBefore, s.CoverageAfter)
	return err
}

// WriteSummary writes s in the given format. TOON is not defined for a
// single summary and falls back to text.
func WriteSummary(w io.Writer, format Format, s model.FixSummary) error {
	switch format {
	case JSON:
		return writeJSON(w, s)
	case YAML:
		return writeYAML(w, s)
	default:
		return Summary(w, s)
	}
}

// WriteBatch writes a batch report in the given format. Text is an alias
// for TOON.
func WriteBatch(w io.Writer, format Format, r *model.BatchReport) error {
	switch format {
	case JSON:
		return writeJSON(w, r)
	case YAML:
		return writeYAML(w, r)
	default:
		_, err := fmt.Fprintln(w, toon.Encode(r))
		return err
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

// Diff returns a unified diff from before to after, or "" when they are
// equal.
func Diff(fromName, toName string, before, after []byte) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("computing diff: %w", err)
	}
	return out, nil
}

// BuildBatch turns pipeline results into a read-only check report. A file
// fails when its run errored or its coverage as written is below the
// minimum.
func BuildBatch(root string, minCoverage float64, results []pipeline.FileResult) *model.BatchReport {
	r := &model.BatchReport{
		Root:        root,
		MinCoverage: minCoverage,
		Files:       make([]model.FileReport, 0, len(results)),
	}
	for _, fr := range results {
		rep := model.FileReport{Path: fr.Path}
		switch {
		case fr.Err != nil:
			rep.Error = fr.Err.Error()
		case fr.Result != nil:
			s := fr.Result.Summary
			rep.Summary = &s
			rep.Pass = fr.Result.PassBefore
			rep.Changed = fr.Result.Changed(fr.Source)
		}
		r.Files = append(r.Files, rep)
	}
	return r
}
