// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/pydocgen/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a batch check report into TOON format.
func Encode(r *model.BatchReport) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("root: %s", encodeValue(r.Root)))
	parts = append(parts, fmt.Sprintf("min_coverage: %s", formatPercent(r.MinCoverage)))

	var fileRows, defectRows, violationRows [][]string
	for i := range r.Files {
		f := &r.Files[i]
		status := "pass"
		if !f.Pass {
			status = "fail"
		}
		if f.Summary == nil {
			fileRows = append(fileRows, []string{f.Path, "", "", "", "", "", status, f.Error})
			continue
		}
		s := f.Summary
		fixed := 0
		for _, n := range s.CodeErrorsFixed {
			fixed += n
		}
		fileRows = append(fileRows, []string{
			f.Path,
			formatPercent(s.CoverageBefore),
			formatPercent(s.CoverageAfter),
			strconv.Itoa(s.DocstringsGenerated),
			strconv.Itoa(s.DocstringsNormalized),
			strconv.Itoa(fixed),
			status,
			f.Error,
		})
		for _, d := range s.Defects {
			defectRows = append(defectRows, []string{
				f.Path,
				strconv.Itoa(d.Line),
				string(d.Kind),
				d.Token,
				d.Suggestion,
			})
		}
		for _, v := range s.Violations {
			violationRows = append(violationRows, []string{
				f.Path,
				strconv.Itoa(v.Line),
				v.Rule,
				v.Definition,
			})
		}
	}
	parts = append(parts, formatTabular("files",
		[]string{"path", "coverage_before", "coverage_after", "generated", "normalized", "fixed", "status", "error"}, fileRows))
	parts = append(parts, formatTabular("defects", []string{"file", "line", "kind", "token", "suggestion"}, defectRows))
	if len(violationRows) > 0 {
		parts = append(parts, formatTabular("violations", []string{"file", "line", "rule", "definition"}, violationRows))
	}

	return strings.Join(parts, "\n")
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
